// Package otoengine plays synthesized narration through the system audio
// device. Audio comes from a speech.Synthesizer (the generative service
// client); word boundary events are scheduled across the clip duration in
// proportion to each word's character offset, which is the same
// approximation browsers use for engines without word timings.
package otoengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/anikutusu/anikutusu/segment"
	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/utils/audioutil"
	"github.com/anikutusu/anikutusu/utils/stream"
)

// prebuiltVoices is the voice catalog the synthesis endpoint offers.
var prebuiltVoices = []speech.Voice{
	{Name: "Yelda", Language: "tr-TR"},
	{Name: "Sulafat", Language: "tr-TR"},
	{Name: "Zephyr", Language: "en-US"},
	{Name: "Puck", Language: "en-US"},
}

// Engine synthesizes utterances remotely and plays them locally.
type Engine struct {
	synth speech.Synthesizer

	// oto allows a single context per process; it is created lazily with
	// the parameters of the first clip and reused afterwards.
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
	rate    int
	chans   int
}

// New creates an engine backed by the given synthesizer.
func New(synth speech.Synthesizer) *Engine {
	return &Engine{synth: synth}
}

// Voices returns the synthesis voice catalog.
func (e *Engine) Voices() []speech.Voice {
	return prebuiltVoices
}

// Speak synthesizes the utterance and starts playback, returning a handle
// that emits start, boundary, end, and error events.
func (e *Engine) Speak(ctx context.Context, u speech.Utterance) (speech.Playback, error) {
	audio, err := e.synth.Synthesize(ctx, u)
	if err != nil {
		return nil, err
	}

	pcm, sampleRate, channels, err := decodeAudio(audio)
	if err != nil {
		return nil, err
	}

	otoCtx, err := e.context(sampleRate, channels)
	if err != nil {
		return nil, err
	}

	p := newPlayback(otoCtx, pcm, sampleRate, channels, u.Text)
	go p.run()
	return p, nil
}

func (e *Engine) context(sampleRate, channels int) (*oto.Context, error) {
	e.otoOnce.Do(func() {
		otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			e.otoErr = err
			return
		}
		<-ready
		e.otoCtx = otoCtx
		e.rate = sampleRate
		e.chans = channels
	})
	if e.otoErr != nil {
		return nil, e.otoErr
	}
	if e.rate != sampleRate || e.chans != channels {
		return nil, fmt.Errorf("audio device opened at %d Hz/%d ch, clip is %d Hz/%d ch",
			e.rate, e.chans, sampleRate, channels)
	}
	return e.otoCtx, nil
}

// decodeAudio turns synthesized audio into raw s16le PCM. The synthesis
// endpoint emits linear PCM; MP3 is handled for engines that return
// compressed audio.
func decodeAudio(audio *speech.SynthesizedAudio) (pcm []byte, sampleRate, channels int, err error) {
	mime := audio.MimeType
	switch {
	case strings.HasPrefix(mime, "audio/mp3"), strings.HasPrefix(mime, "audio/mpeg"):
		decoder, err := mp3.NewDecoder(bytes.NewReader(audio.Data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode mp3: %w", err)
		}
		decoded, err := io.ReadAll(decoder)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to read mp3 samples: %w", err)
		}
		// go-mp3 always emits 16-bit stereo.
		return decoded, decoder.SampleRate(), 2, nil
	default:
		sampleRate := audio.SampleRate
		if sampleRate == 0 {
			sampleRate = 24_000
		}
		channels := audio.Channels
		if channels == 0 {
			channels = 1
		}
		return audio.Data, sampleRate, channels, nil
	}
}

// playback is one in-flight clip: an oto player plus a boundary clock.
type playback struct {
	player   *oto.Player
	duration time.Duration
	spans    []segment.WordSpan
	total    int // rune length of the utterance text

	events chan speech.Event
	errC   chan error
	stream *stream.Stream[speech.Event]

	mu        sync.Mutex
	paused    bool
	cancelled bool
	resumeCh  chan struct{}
	done      chan struct{}
}

func newPlayback(otoCtx *oto.Context, pcm []byte, sampleRate, channels int, text string) *playback {
	spans := segment.Segment(text)
	total := len([]rune(text))

	events := make(chan speech.Event, 64)
	errC := make(chan error, 1)
	return &playback{
		player:   otoCtx.NewPlayer(bytes.NewReader(pcm)),
		duration: audioutil.Duration(len(pcm), sampleRate, channels),
		spans:    spans,
		total:    total,
		events:   events,
		errC:     errC,
		stream:   stream.New(events, errC),
		resumeCh: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *playback) Events() *stream.Stream[speech.Event] {
	return p.stream
}

func (p *playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused || p.cancelled {
		return
	}
	p.paused = true
	p.player.Pause()
}

func (p *playback) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused || p.cancelled {
		return
	}
	p.paused = false
	p.player.Play()
	close(p.resumeCh)
	p.resumeCh = make(chan struct{})
}

func (p *playback) Cancel() {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	p.player.Pause()
	p.mu.Unlock()

	close(p.done)
}

// run plays the clip and emits lifecycle events. Boundary deadlines are
// linear in rune offset over the clip duration; pausing stops both the
// player and the boundary clock.
func (p *playback) run() {
	defer close(p.events)
	defer close(p.errC)
	defer p.player.Close()

	p.player.Play()
	p.emit(speech.Event{Type: speech.EventStart})

	elapsed := time.Duration(0)
	clock := time.Now()
	for _, span := range p.spans {
		deadline := p.deadlineFor(span.StartOffset)
		for {
			p.mu.Lock()
			paused := p.paused
			resumeCh := p.resumeCh
			p.mu.Unlock()

			if paused {
				elapsed += time.Since(clock)
				select {
				case <-resumeCh:
					clock = time.Now()
					continue
				case <-p.done:
					p.emit(speech.Event{Type: speech.EventEnd})
					return
				}
			}

			wait := deadline - (elapsed + time.Since(clock))
			if wait <= 0 {
				break
			}
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-p.done:
				timer.Stop()
				p.emit(speech.Event{Type: speech.EventEnd})
				return
			}
			timer.Stop()
		}
		p.emit(speech.Event{Type: speech.EventBoundary, CharOffset: span.StartOffset})
	}

	// All boundaries emitted; wait for the tail of the audio to drain.
	for {
		p.mu.Lock()
		paused := p.paused
		resumeCh := p.resumeCh
		p.mu.Unlock()

		if paused {
			select {
			case <-resumeCh:
				continue
			case <-p.done:
				p.emit(speech.Event{Type: speech.EventEnd})
				return
			}
		}
		if !p.player.IsPlaying() {
			break
		}
		select {
		case <-p.done:
			p.emit(speech.Event{Type: speech.EventEnd})
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
	if err := p.player.Err(); err != nil {
		p.emit(speech.Event{Type: speech.EventError, Err: err})
		return
	}
	p.emit(speech.Event{Type: speech.EventEnd})
}

func (p *playback) deadlineFor(offset int) time.Duration {
	if p.total == 0 {
		return 0
	}
	return p.duration * time.Duration(offset) / time.Duration(p.total)
}

func (p *playback) emit(ev speech.Event) {
	select {
	case p.events <- ev:
	case <-time.After(time.Second):
		// Consumer gone; drop the event rather than leak the goroutine.
	}
}
