package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anikutusu/anikutusu"
	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/speech/speechtest"
)

func defaultVoices() []speech.Voice {
	return []speech.Voice{
		{Name: "Zephyr", Language: "en-US"},
		{Name: "Yelda", Language: "tr-TR"},
		{Name: "Puck", Language: "tr-TR"},
	}
}

type harness struct {
	engine  *speechtest.Engine
	session *speech.Session
	states  chan speech.State
	errs    chan error
}

func newHarness(t *testing.T, voices ...speech.Voice) *harness {
	t.Helper()
	h := &harness{
		engine: speechtest.NewEngine(voices...),
		states: make(chan speech.State, 64),
		errs:   make(chan error, 8),
	}
	h.session = speech.NewSession(h.engine,
		speech.WithChangeHandler(func(st speech.State) { h.states <- st }),
		speech.WithErrorHandler(func(err error) { h.errs <- err }),
	)
	t.Cleanup(h.session.Close)
	return h
}

// waitState blocks until a state matching the predicate arrives, returning
// every state observed on the way.
func (h *harness) waitState(t *testing.T, match func(speech.State) bool) []speech.State {
	t.Helper()
	var seen []speech.State
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-h.states:
			seen = append(seen, st)
			if match(st) {
				return seen
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state, saw %v", seen)
		}
	}
}

func TestStartSelectsPreferredVoice(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "bir iki üç"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	playbacks := h.engine.Playbacks()
	if len(playbacks) != 1 {
		t.Fatalf("got %d playbacks, want 1", len(playbacks))
	}
	u := playbacks[0].Utterance
	if u.Voice == nil || u.Voice.Name != "Yelda" {
		t.Errorf("voice = %+v, want preferred tr-TR voice Yelda", u.Voice)
	}
	if u.Pitch != speech.DefaultPitch || u.Rate != speech.DefaultRate {
		t.Errorf("pitch/rate = %v/%v, want fixed constants %v/%v",
			u.Pitch, u.Rate, speech.DefaultPitch, speech.DefaultRate)
	}
	if st := h.session.State(); st.Status != speech.StatusSpeaking {
		t.Errorf("status = %q, want speaking", st.Status)
	}
}

func TestStartAckHighlightsFirstWord(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "bir iki üç"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	h.engine.Playbacks()[0].EmitStart()

	h.waitState(t, func(st speech.State) bool {
		return st.Status == speech.StatusSpeaking && st.WordIndex == 0
	})
}

func TestBoundaryEventsAdvanceHighlight(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "bir iki  üç"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	playback := h.engine.Playbacks()[0]
	playback.EmitStart()
	for _, offset := range []int{0, 4, 6, 9} {
		playback.EmitBoundary(offset)
	}
	playback.Finish()

	seen := h.waitState(t, func(st speech.State) bool { return st.Status == speech.StatusIdle })

	spans := h.session.Spans()
	last := -1
	for _, st := range seen {
		if st.Status != speech.StatusSpeaking || st.WordIndex < 0 {
			continue
		}
		if st.WordIndex < last {
			t.Errorf("highlight index decreased: %d after %d", st.WordIndex, last)
		}
		if st.WordIndex >= len(spans) {
			t.Errorf("highlight index %d out of range", st.WordIndex)
		}
		last = st.WordIndex
	}
	if last != 2 {
		t.Errorf("final highlighted index = %d, want 2", last)
	}
}

func TestPauseFreezesHighlight(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "bir iki üç"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	playback := h.engine.Playbacks()[0]
	playback.EmitStart()
	playback.EmitBoundary(4)
	h.waitState(t, func(st speech.State) bool { return st.WordIndex == 1 })

	h.session.Pause()
	if !playback.Paused() {
		t.Errorf("engine playback not paused")
	}
	h.waitState(t, func(st speech.State) bool { return st.Status == speech.StatusPaused })

	// Boundary events delivered while paused must not move the highlight.
	playback.EmitBoundary(8)
	playback.Finish()
	seen := h.waitState(t, func(st speech.State) bool { return st.Status == speech.StatusIdle })
	for _, st := range seen {
		if st.Status == speech.StatusPaused && st.WordIndex != 1 {
			t.Errorf("highlight moved while paused: %+v", st)
		}
	}
}

func TestToggleCyclesPauseResume(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "bir iki üç"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	playback := h.engine.Playbacks()[0]
	playback.EmitStart()

	h.session.Toggle()
	if st := h.session.State(); st.Status != speech.StatusPaused {
		t.Fatalf("status after first toggle = %q, want paused", st.Status)
	}
	h.session.Toggle()
	if st := h.session.State(); st.Status != speech.StatusSpeaking {
		t.Fatalf("status after second toggle = %q, want speaking", st.Status)
	}
	pauses, resumes := playback.Commands()
	if pauses != 1 || resumes != 1 {
		t.Errorf("pause/resume commands = %d/%d, want 1/1", pauses, resumes)
	}
}

func TestStartWhileSpeakingLeavesOneActiveUtterance(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "ilk metin"); err != nil {
		t.Fatalf("Start A failed: %v", err)
	}
	h.engine.Playbacks()[0].EmitStart()

	if err := h.session.Start(context.Background(), "ikinci metin"); err != nil {
		t.Fatalf("Start B failed: %v", err)
	}

	if got := h.engine.ActiveCount(); got != 1 {
		t.Fatalf("active playbacks = %d, want exactly 1", got)
	}
	playbacks := h.engine.Playbacks()
	if playbacks[0].Active() {
		t.Errorf("first utterance still active after restart")
	}
	if !playbacks[1].Active() || playbacks[1].Utterance.Text != "ikinci metin" {
		t.Errorf("active utterance is not the second text")
	}
}

func TestEngineEndReturnsToIdle(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "bir iki üç"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	playback := h.engine.Playbacks()[0]
	playback.EmitStart()
	playback.Finish()

	h.waitState(t, func(st speech.State) bool {
		return st.Status == speech.StatusIdle && st.WordIndex == -1
	})
}

func TestEngineEndBufferedBeforeConsumeReachesIdle(t *testing.T) {
	// The engine finishes immediately after acknowledging the start, so the
	// end event is already buffered and the event stream closed by the time
	// the session consumes it. The end must never be lost; repeated trials
	// exercise both orders of the consume race.
	for trial := 0; trial < 50; trial++ {
		h := newHarness(t, defaultVoices()...)

		if err := h.session.Start(context.Background(), "bir iki üç"); err != nil {
			t.Fatalf("trial %d: Start failed: %v", trial, err)
		}
		playback := h.engine.Playbacks()[0]
		playback.EmitStart()
		playback.Finish()

		h.waitState(t, func(st speech.State) bool {
			return st.Status == speech.StatusIdle && st.WordIndex == -1
		})
	}
}

func TestConcurrentStartsLeaveOneActiveUtterance(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	var wg sync.WaitGroup
	for _, text := range []string{"ilk metin", "ikinci metin"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			if err := h.session.Start(context.Background(), text); err != nil {
				t.Errorf("Start(%q) failed: %v", text, err)
			}
		}(text)
	}
	wg.Wait()

	if got := h.engine.ActiveCount(); got != 1 {
		t.Fatalf("active playbacks = %d, want exactly 1", got)
	}
	if st := h.session.State(); st.Status != speech.StatusSpeaking {
		t.Errorf("status = %q, want speaking", st.Status)
	}
}

func TestEngineErrorSurfacesPlaybackError(t *testing.T) {
	h := newHarness(t, defaultVoices()...)

	if err := h.session.Start(context.Background(), "bir iki üç"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	playback := h.engine.Playbacks()[0]
	playback.EmitStart()
	playback.Fail(errors.New("synthesis interrupted"))

	h.waitState(t, func(st speech.State) bool { return st.Status == speech.StatusIdle })

	select {
	case err := <-h.errs:
		if !anikutusu.IsKind(err, anikutusu.Playback) {
			t.Errorf("error kind = %v, want playback", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no playback error surfaced")
	}
}

func TestSpeakFailureReturnsPlaybackError(t *testing.T) {
	h := newHarness(t, defaultVoices()...)
	h.engine.EnqueueSpeakError(errors.New("no audio device"))

	err := h.session.Start(context.Background(), "bir iki üç")
	if !anikutusu.IsKind(err, anikutusu.Playback) {
		t.Errorf("Start error = %v, want playback kind", err)
	}
	if st := h.session.State(); st.Status != speech.StatusIdle {
		t.Errorf("status = %q, want idle after failed start", st.Status)
	}
}

func TestStopWithoutStart(t *testing.T) {
	h := newHarness(t, defaultVoices()...)
	h.session.Stop()
	h.session.Toggle()
	if st := h.session.State(); st.Status != speech.StatusIdle || st.WordIndex != -1 {
		t.Errorf("state = %+v, want idle/-1", st)
	}
}

func TestChooseVoice(t *testing.T) {
	voices := defaultVoices()

	if v := speech.ChooseVoice(voices, "tr-TR"); v == nil || v.Name != "Yelda" {
		t.Errorf("ChooseVoice(tr-TR) = %+v, want preferred Yelda", v)
	}
	if v := speech.ChooseVoice(voices[:1], "tr-TR"); v != nil {
		t.Errorf("ChooseVoice with no tr voices = %+v, want nil (engine default)", v)
	}
	noPreferred := []speech.Voice{{Name: "Puck", Language: "tr-TR"}}
	if v := speech.ChooseVoice(noPreferred, "tr-TR"); v == nil || v.Name != "Puck" {
		t.Errorf("ChooseVoice without preferred = %+v, want language match Puck", v)
	}
}
