// Package speech drives spoken playback of generated narratives. An Engine
// synthesizes and plays one utterance at a time, reporting lifecycle events
// over a pull stream; a Session translates those events into play/pause
// state and a highlighted word index.
package speech

import (
	"context"
	"strings"

	"github.com/anikutusu/anikutusu/utils/stream"
)

// Playback tuning. Voice, pitch, and rate are fixed for every utterance.
const (
	DefaultLanguage = "tr-TR"
	DefaultPitch    = 1.0
	DefaultRate     = 0.9
)

// PreferredVoices names the voice to prefer per language when the engine
// offers one by that name.
var PreferredVoices = map[string]string{
	"tr-TR": "Yelda",
	"en-US": "Zephyr",
}

// Voice identifies one synthesis voice offered by an engine.
type Voice struct {
	Name     string
	Language string
}

// Utterance is one playback request for a given text.
type Utterance struct {
	Text     string
	Voice    *Voice // nil selects the engine default
	Language string
	Pitch    float64
	Rate     float64
}

// NewUtterance builds an utterance with the fixed tuned constants applied.
func NewUtterance(text string, voice *Voice, language string) Utterance {
	return Utterance{
		Text:     text,
		Voice:    voice,
		Language: language,
		Pitch:    DefaultPitch,
		Rate:     DefaultRate,
	}
}

// EventType enumerates utterance lifecycle signals.
type EventType string

const (
	EventStart    EventType = "start"
	EventBoundary EventType = "boundary"
	EventEnd      EventType = "end"
	EventError    EventType = "error"
)

// Event is one lifecycle signal from the engine. Boundary events carry the
// rune offset of the word the engine reached.
type Event struct {
	Type       EventType
	CharOffset int
	Err        error
}

// Playback is one in-flight utterance. Events terminates after EventEnd or
// EventError. Cancel force-stops audio and ends the event stream.
type Playback interface {
	Events() *stream.Stream[Event]
	Pause()
	Resume()
	Cancel()
}

// Engine synthesizes and plays utterances.
type Engine interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) (Playback, error)
}

// ChooseVoice selects the best-matching voice for a language: the exact
// preferred name for that language first, then any voice of the language,
// then nil for the engine default.
func ChooseVoice(voices []Voice, language string) *Voice {
	preferred := PreferredVoices[language]
	var languageMatch *Voice
	for i, v := range voices {
		if !strings.HasPrefix(v.Language, language) {
			continue
		}
		if preferred != "" && v.Name == preferred {
			return &voices[i]
		}
		if languageMatch == nil {
			languageMatch = &voices[i]
		}
	}
	return languageMatch
}

// SynthesizedAudio is raw audio produced by a Synthesizer, signed 16-bit
// little-endian PCM unless MimeType says otherwise.
type SynthesizedAudio struct {
	Data       []byte
	MimeType   string
	SampleRate int
	Channels   int
}

// Synthesizer turns an utterance into audio. The generative service client
// implements this for engines that play synthesized audio locally.
type Synthesizer interface {
	Synthesize(ctx context.Context, u Utterance) (*SynthesizedAudio, error)
}

// Transcript is one streamed speech-to-text update. Interim results repeat
// with growing text until Final.
type Transcript struct {
	Text  string
	Final bool
}

// Recognizer runs a continuous speech-to-text session in a fixed language,
// streaming interim transcripts until the context is cancelled or the
// source is exhausted.
type Recognizer interface {
	Listen(ctx context.Context) (*stream.Stream[Transcript], error)
}
