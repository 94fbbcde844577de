// Package speechtest provides a scripted speech engine for testing
// purposes that tracks utterances and lets tests drive lifecycle events.
package speechtest

import (
	"context"
	"sync"

	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/utils/stream"
)

// Engine is a fake speech engine. Every Speak call yields a Playback the
// test drives by emitting events; the engine tracks all playbacks so tests
// can assert the at-most-one-active-utterance invariant.
type Engine struct {
	mu        sync.Mutex
	voices    []speech.Voice
	playbacks []*Playback
	speakErrs []error
}

// NewEngine constructs a scripted engine offering the given voices.
func NewEngine(voices ...speech.Voice) *Engine {
	return &Engine{voices: voices}
}

// Voices returns the scripted voice catalog.
func (e *Engine) Voices() []speech.Voice {
	return e.voices
}

// EnqueueSpeakError makes the next Speak call fail with err.
func (e *Engine) EnqueueSpeakError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speakErrs = append(e.speakErrs, err)
}

// Speak records the utterance and returns a test-driven playback.
func (e *Engine) Speak(_ context.Context, u speech.Utterance) (speech.Playback, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.speakErrs) > 0 {
		err := e.speakErrs[0]
		e.speakErrs = e.speakErrs[1:]
		return nil, err
	}

	playback := newPlayback(u)
	e.playbacks = append(e.playbacks, playback)
	return playback, nil
}

// Playbacks returns every playback created so far, in Speak order.
func (e *Engine) Playbacks() []*Playback {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Playback{}, e.playbacks...)
}

// ActiveCount reports how many playbacks are neither finished nor
// cancelled.
func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, p := range e.playbacks {
		if p.Active() {
			count++
		}
	}
	return count
}

// Playback is one scripted utterance. Tests emit events; the session under
// test consumes them through Events.
type Playback struct {
	Utterance speech.Utterance

	events chan speech.Event
	errC   chan error
	stream *stream.Stream[speech.Event]

	mu        sync.Mutex
	closed    bool
	cancelled bool
	paused    bool
	pauses    int
	resumes   int
}

func newPlayback(u speech.Utterance) *Playback {
	events := make(chan speech.Event, 64)
	errC := make(chan error, 1)
	return &Playback{
		Utterance: u,
		events:    events,
		errC:      errC,
		stream:    stream.New(events, errC),
	}
}

// Events returns the lifecycle event stream.
func (p *Playback) Events() *stream.Stream[speech.Event] {
	return p.stream
}

// Pause records a pause command.
func (p *Playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	p.pauses++
}

// Resume records a resume command.
func (p *Playback) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.resumes++
}

// Cancel force-stops the playback, emitting a final end event like real
// engines do.
func (p *Playback) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.cancelled = true
	p.events <- speech.Event{Type: speech.EventEnd}
	p.closeLocked()
}

// EmitStart emits the engine start acknowledgment.
func (p *Playback) EmitStart() {
	p.emit(speech.Event{Type: speech.EventStart})
}

// EmitBoundary emits a boundary event at the given rune offset.
func (p *Playback) EmitBoundary(offset int) {
	p.emit(speech.Event{Type: speech.EventBoundary, CharOffset: offset})
}

// Finish emits the end event and closes the stream.
func (p *Playback) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.events <- speech.Event{Type: speech.EventEnd}
	p.closeLocked()
}

// Fail emits an error event and closes the stream.
func (p *Playback) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.events <- speech.Event{Type: speech.EventError, Err: err}
	p.closeLocked()
}

// Active reports whether the playback is still in flight.
func (p *Playback) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Paused reports whether the last command was a pause.
func (p *Playback) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Commands returns how many pause and resume commands were received.
func (p *Playback) Commands() (pauses, resumes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauses, p.resumes
}

func (p *Playback) emit(ev speech.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.events <- ev
}

func (p *Playback) closeLocked() {
	p.closed = true
	close(p.events)
	close(p.errC)
}
