package genai

import (
	"context"

	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/utils/stream"
)

// AudioRecognizer adapts transcription of a prerecorded clip to the
// speech.Recognizer interface. Interim transcripts repeat with growing text
// as deltas arrive; the last one is final.
type AudioRecognizer struct {
	client   *Client
	data     []byte
	mimeType string
}

var _ speech.Recognizer = (*AudioRecognizer)(nil)

// NewAudioRecognizer creates a recognizer over the given audio bytes.
func NewAudioRecognizer(client *Client, data []byte, mimeType string) *AudioRecognizer {
	return &AudioRecognizer{client: client, data: data, mimeType: mimeType}
}

func (r *AudioRecognizer) Listen(ctx context.Context) (*stream.Stream[speech.Transcript], error) {
	deltas, err := r.client.Transcribe(ctx, r.data, r.mimeType)
	if err != nil {
		return nil, err
	}

	c := make(chan speech.Transcript)
	errC := make(chan error, 1)
	go func() {
		defer close(c)
		defer close(errC)

		var text string
		for deltas.Next() {
			text += deltas.Current()
			select {
			case c <- speech.Transcript{Text: text}:
			case <-ctx.Done():
				errC <- ctx.Err()
				return
			}
		}
		if err := deltas.Err(); err != nil {
			errC <- err
			return
		}
		if text != "" {
			select {
			case c <- speech.Transcript{Text: text, Final: true}:
			case <-ctx.Done():
				errC <- ctx.Err()
			}
		}
	}()
	return stream.New(c, errC), nil
}
