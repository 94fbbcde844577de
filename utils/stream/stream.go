package stream

// Stream is a generic pull-based stream over a data channel and an error
// channel. Producers close both channels when done; consumers drive the
// stream with Next/Current and check Err once Next returns false.
type Stream[T any] struct {
	C    <-chan T
	errC <-chan error

	curr T
	err  error
}

func New[T any](c <-chan T, errC <-chan error) *Stream[T] {
	return &Stream[T]{
		C:    c,
		errC: errC,
	}
}

// Next advances the stream to the next item.
// It returns false if there are no more items or an error occurred.
// Items buffered in C are always delivered before the stream terminates:
// producers close errC together with C, and a closed errC must not win the
// race against a still-buffered final item.
func (s *Stream[T]) Next() bool {
	for {
		select {
		case event, ok := <-s.C:
			if !ok {
				// Channel closed, check for error (non-blocking)
				select {
				case err := <-s.errC:
					s.err = err
				default:
				}
				return false
			}
			s.curr = event
			return true
		case err, ok := <-s.errC:
			if ok {
				s.err = err
				return false
			}
			// errC closed without an error; keep draining C.
			s.errC = nil
		}
	}
}

// Current returns the current item in the stream.
func (s *Stream[T]) Current() T {
	return s.curr
}

// Err returns the error encountered during streaming, if any.
func (s *Stream[T]) Err() error {
	return s.err
}

// Collect drains the stream into a slice, returning the streaming error if
// one occurred.
func Collect[T any](s *Stream[T]) ([]T, error) {
	var items []T
	for s.Next() {
		items = append(items, s.Current())
	}
	return items, s.Err()
}
