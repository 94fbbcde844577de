package speech

import (
	"context"
	"sync"

	"github.com/anikutusu/anikutusu"
	"github.com/anikutusu/anikutusu/segment"
)

// Status is the playback state of a session.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusSpeaking Status = "speaking"
	StatusPaused   Status = "paused"
)

// State is a snapshot of the session: its status and the index of the
// highlighted word span, -1 meaning none.
type State struct {
	Status    Status
	WordIndex int
}

// Session owns at most one in-flight utterance and translates engine
// lifecycle events into play/pause state and a highlighted word index.
// Starting a new utterance force-stops the prior one; this is an invariant,
// not an optimization, since overlapping audio must never occur.
type Session struct {
	engine   Engine
	language string
	onChange func(State)
	onError  func(error)

	// startMu serializes Start calls end to end: the stop of the prior
	// playback, the engine call, and the install of the new playback must
	// not interleave with another Start, or two utterances end up active.
	startMu sync.Mutex

	mu        sync.Mutex
	status    Status
	spans     []segment.WordSpan
	wordIndex int
	playback  Playback
	// gen increments on every Start/Stop so events from a cancelled
	// playback cannot clobber the current one.
	gen int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLanguage overrides the target spoken language.
func WithLanguage(language string) SessionOption {
	return func(s *Session) { s.language = language }
}

// WithChangeHandler registers a callback invoked after every state change.
func WithChangeHandler(fn func(State)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// WithErrorHandler registers a callback for terminal playback errors.
func WithErrorHandler(fn func(error)) SessionOption {
	return func(s *Session) { s.onError = fn }
}

// NewSession creates an idle playback session on the given engine.
func NewSession(engine Engine, opts ...SessionOption) *Session {
	s := &Session{
		engine:    engine,
		language:  DefaultLanguage,
		status:    StatusIdle,
		wordIndex: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins playback of text, force-stopping any prior utterance first.
// The highlighted index becomes 0 once the engine acknowledges the start.
func (s *Session) Start(ctx context.Context, text string) error {
	if text == "" {
		return anikutusu.NewInvalidInputError("nothing to play")
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.Stop()

	voice := ChooseVoice(s.engine.Voices(), s.language)
	playback, err := s.engine.Speak(ctx, NewUtterance(text, voice, s.language))
	if err != nil {
		return anikutusu.NewPlaybackError("could not start playback", err)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.playback = playback
	s.spans = segment.Segment(text)
	s.status = StatusSpeaking
	s.wordIndex = -1
	state := s.stateLocked()
	s.mu.Unlock()
	s.notify(state)

	go s.consume(playback, gen)
	return nil
}

// Pause suspends audio output, freezing the highlighted index.
func (s *Session) Pause() {
	s.mu.Lock()
	if s.status != StatusSpeaking || s.playback == nil {
		s.mu.Unlock()
		return
	}
	playback := s.playback
	s.status = StatusPaused
	state := s.stateLocked()
	s.mu.Unlock()

	playback.Pause()
	s.notify(state)
}

// Resume continues a paused utterance.
func (s *Session) Resume() {
	s.mu.Lock()
	if s.status != StatusPaused || s.playback == nil {
		s.mu.Unlock()
		return
	}
	playback := s.playback
	s.status = StatusSpeaking
	state := s.stateLocked()
	s.mu.Unlock()

	playback.Resume()
	s.notify(state)
}

// Toggle dispatches to Pause or Resume depending on the current state. It
// does nothing while idle; idle playback is started with Start.
func (s *Session) Toggle() {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()

	switch status {
	case StatusSpeaking:
		s.Pause()
	case StatusPaused:
		s.Resume()
	}
}

// Stop cancels any in-flight utterance and returns the session to idle.
func (s *Session) Stop() {
	s.mu.Lock()
	s.gen++
	playback := s.playback
	s.playback = nil
	changed := s.status != StatusIdle
	s.status = StatusIdle
	s.wordIndex = -1
	state := s.stateLocked()
	s.mu.Unlock()

	if playback != nil {
		playback.Cancel()
	}
	if changed {
		s.notify(state)
	}
}

// Close releases the session, cancelling any active utterance.
func (s *Session) Close() {
	s.Stop()
}

// State returns a snapshot of the current playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Spans returns the word spans of the current utterance text.
func (s *Session) Spans() []segment.WordSpan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spans
}

func (s *Session) consume(playback Playback, gen int) {
	events := playback.Events()
	for events.Next() {
		s.handle(events.Current(), gen)
	}
	if err := events.Err(); err != nil {
		s.handle(Event{Type: EventError, Err: err}, gen)
	}
}

func (s *Session) handle(ev Event, gen int) {
	s.mu.Lock()
	if gen != s.gen {
		// A newer Start or Stop superseded this playback.
		s.mu.Unlock()
		return
	}

	var terminal error
	switch ev.Type {
	case EventStart:
		s.wordIndex = 0
	case EventBoundary:
		if s.status == StatusSpeaking {
			s.wordIndex = segment.SpanAt(s.spans, ev.CharOffset)
		}
	case EventEnd:
		s.status = StatusIdle
		s.wordIndex = -1
		s.playback = nil
	case EventError:
		s.status = StatusIdle
		s.wordIndex = -1
		s.playback = nil
		terminal = anikutusu.NewPlaybackError("speech engine error", ev.Err)
	}
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	if terminal != nil && s.onError != nil {
		s.onError(terminal)
	}
}

func (s *Session) stateLocked() State {
	return State{Status: s.status, WordIndex: s.wordIndex}
}

func (s *Session) notify(state State) {
	if s.onChange != nil {
		s.onChange(state)
	}
}
