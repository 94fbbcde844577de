package audioutil

import (
	"encoding/base64"
	"fmt"
	"time"
)

// ConcatenateB64PCMChunks decodes base64 PCM chunks and concatenates them
// into a single raw sample buffer. The speech endpoint may split one
// utterance across several inline audio parts.
func ConcatenateB64PCMChunks(chunks []string) ([]byte, error) {
	var all []byte
	for _, chunk := range chunks {
		data, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audio chunk: %w", err)
		}
		if len(data)%2 != 0 {
			return nil, fmt.Errorf("audio chunk length is not a multiple of 2")
		}
		all = append(all, data...)
	}
	return all, nil
}

// Duration computes playback duration of signed 16-bit little-endian PCM.
func Duration(byteLen, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := byteLen / (2 * channels)
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
