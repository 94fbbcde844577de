package stream_test

import (
	"errors"
	"testing"

	"github.com/anikutusu/anikutusu/utils/stream"
)

func TestNextDeliversBufferedItemsAfterClose(t *testing.T) {
	// The final item is buffered and both channels are already closed when
	// the consumer arrives; the closed error channel must not win the race
	// against the buffered item.
	for trial := 0; trial < 500; trial++ {
		c := make(chan int, 2)
		errC := make(chan error, 1)
		c <- 1
		c <- 2
		close(c)
		close(errC)

		s := stream.New(c, errC)
		got, err := stream.Collect(s)
		if err != nil {
			t.Fatalf("trial %d: Collect error: %v", trial, err)
		}
		if len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Fatalf("trial %d: Collect = %v, want [1 2]", trial, got)
		}
	}
}

func TestNextReportsBufferedError(t *testing.T) {
	c := make(chan int, 1)
	errC := make(chan error, 1)
	cause := errors.New("boom")
	errC <- cause
	close(c)
	close(errC)

	s := stream.New(c, errC)
	if _, err := stream.Collect(s); !errors.Is(err, cause) {
		t.Errorf("Collect error = %v, want %v", err, cause)
	}
}

func TestNextAfterExhaustion(t *testing.T) {
	c := make(chan int, 1)
	errC := make(chan error, 1)
	c <- 7
	close(c)
	close(errC)

	s := stream.New(c, errC)
	if !s.Next() || s.Current() != 7 {
		t.Fatalf("first Next = false or wrong item %v", s.Current())
	}
	if s.Next() {
		t.Error("Next returned true on an exhausted stream")
	}
	if s.Next() {
		t.Error("repeated Next returned true on an exhausted stream")
	}
	if s.Err() != nil {
		t.Errorf("Err = %v, want nil", s.Err())
	}
}
