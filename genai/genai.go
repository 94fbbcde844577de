// Package genai is the client for the generative content service. It covers
// the four operations the application needs: narrative generation (unary
// and streamed), image generation with a fixed configuration, speech
// synthesis, and audio transcription. The API credential comes from process
// configuration, never from user input.
package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anikutusu/anikutusu"
	"github.com/anikutusu/anikutusu/genai/genaiapi"
	"github.com/anikutusu/anikutusu/internal/clientutils"
	"github.com/anikutusu/anikutusu/internal/sliceutils"
	"github.com/anikutusu/anikutusu/internal/tracing"
	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/utils/audioutil"
	"github.com/anikutusu/anikutusu/utils/ptr"
	"github.com/anikutusu/anikutusu/utils/stream"
)

const Provider = "google"

// Default model IDs per operation.
const (
	DefaultTextModel   = "gemini-2.5-flash"
	DefaultImageModel  = "imagen-3.0-generate-002"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL     string
	APIKey      string
	APIVersion  string
	TextModel   string
	ImageModel  string
	SpeechModel string
	HTTPClient  *http.Client
}

// Client talks to the generativelanguage REST API.
type Client struct {
	baseURL     string
	apiKey      string
	apiVersion  string
	textModel   string
	imageModel  string
	speechModel string
	client      *http.Client
}

// NewClient creates a client with defaults applied.
func NewClient(options ClientOptions) *Client {
	c := &Client{
		baseURL:     "https://generativelanguage.googleapis.com",
		apiKey:      options.APIKey,
		apiVersion:  "v1beta",
		textModel:   DefaultTextModel,
		imageModel:  DefaultImageModel,
		speechModel: DefaultSpeechModel,
		client:      &http.Client{},
	}
	if options.BaseURL != "" {
		c.baseURL = options.BaseURL
	}
	if options.APIVersion != "" {
		c.apiVersion = options.APIVersion
	}
	if options.TextModel != "" {
		c.textModel = options.TextModel
	}
	if options.ImageModel != "" {
		c.imageModel = options.ImageModel
	}
	if options.SpeechModel != "" {
		c.speechModel = options.SpeechModel
	}
	if options.HTTPClient != nil {
		c.client = options.HTTPClient
	}
	return c
}

func (c *Client) modelURL(modelID, method string) string {
	return fmt.Sprintf("%s/%s/models/%s:%s", c.baseURL, c.apiVersion, modelID, method)
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"x-goog-api-key": c.apiKey,
		"Content-Type":   "application/json",
	}
}

// GenerateNarrative produces the nostalgic narrative for a prompt.
func (c *Client) GenerateNarrative(ctx context.Context, promptText string) (string, error) {
	result, err := tracing.TraceGenerate(ctx, Provider, c.textModel, "generate_narrative",
		func(ctx context.Context, rec *tracing.Recorder) (*string, error) {
			response, err := clientutils.DoJSON[genaiapi.GenerateContentResponse](ctx, c.client, clientutils.JSONRequestConfig{
				URL:     c.modelURL(c.textModel, "generateContent"),
				Headers: c.headers(),
				Body:    textRequest(promptText, nil),
			})
			if err != nil {
				return nil, err
			}
			recordUsage(rec, response.UsageMetadata)

			text := textFromResponse(response)
			if text == "" {
				return nil, fmt.Errorf("no narrative candidates returned")
			}
			return &text, nil
		})
	if err != nil {
		return "", anikutusu.NewGenerationError("narrative generation failed", err)
	}
	return *result, nil
}

// StreamNarrative produces the narrative as a stream of text deltas.
func (c *Client) StreamNarrative(ctx context.Context, promptText string) (*stream.Stream[string], error) {
	ctx, rec := tracing.TraceStreamStart(ctx, Provider, c.textModel, "stream_narrative")

	sseStream, err := clientutils.DoSSE[genaiapi.GenerateContentResponse](ctx, c.client, clientutils.SSERequestConfig{
		URL:     c.modelURL(c.textModel, "streamGenerateContent") + "?alt=sse",
		Headers: map[string]string{"x-goog-api-key": c.apiKey},
		Body:    textRequest(promptText, nil),
	})
	if err != nil {
		rec.OnError(err)
		rec.End()
		return nil, anikutusu.NewGenerationError("narrative generation failed", err)
	}

	deltaCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(deltaCh)
		defer close(errCh)
		defer sseStream.Close()
		defer rec.End()

		for sseStream.Next() {
			event := sseStream.Current()
			recordUsage(rec, event.UsageMetadata)
			if delta := textFromResponse(event); delta != "" {
				rec.OnFirstToken()
				deltaCh <- delta
			}
		}
		if err := sseStream.Err(); err != nil {
			rec.OnError(err)
			errCh <- anikutusu.NewGenerationError("narrative stream failed", err)
		}
	}()

	return stream.New(deltaCh, errCh), nil
}

// Image is one generated image, base64-encoded.
type Image struct {
	MimeType string
	Data     string
}

// ImageConfig is the image request configuration.
type ImageConfig struct {
	Count       int
	MimeType    string
	AspectRatio string
}

// DefaultImageConfig is the fixed configuration used by the application.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{Count: 2, MimeType: "image/jpeg", AspectRatio: "16:9"}
}

// GenerateImages produces images for a prompt via the Imagen predict
// endpoint.
func (c *Client) GenerateImages(ctx context.Context, promptText string, config ImageConfig) ([]Image, error) {
	if config.Count == 0 {
		config = DefaultImageConfig()
	}

	result, err := tracing.TraceGenerate(ctx, Provider, c.imageModel, "generate_images",
		func(ctx context.Context, _ *tracing.Recorder) (*[]Image, error) {
			response, err := clientutils.DoJSON[genaiapi.PredictResponse](ctx, c.client, clientutils.JSONRequestConfig{
				URL:     c.modelURL(c.imageModel, "predict"),
				Headers: c.headers(),
				Body: genaiapi.PredictParameters{
					Instances: []genaiapi.PredictInstance{{Prompt: promptText}},
					Parameters: genaiapi.ImageParameters{
						SampleCount:    config.Count,
						AspectRatio:    config.AspectRatio,
						OutputMimeType: config.MimeType,
					},
				},
			})
			if err != nil {
				return nil, err
			}
			if len(response.Predictions) == 0 {
				return nil, fmt.Errorf("no images returned")
			}

			images := sliceutils.Map(response.Predictions, func(p genaiapi.Prediction) Image {
				mimeType := p.MimeType
				if mimeType == "" {
					mimeType = config.MimeType
				}
				return Image{MimeType: mimeType, Data: p.BytesBase64Encoded}
			})
			return &images, nil
		})
	if err != nil {
		return nil, anikutusu.NewGenerationError("image generation failed", err)
	}
	return *result, nil
}

// Synthesize turns an utterance into PCM audio. It implements
// speech.Synthesizer for the playback engine.
func (c *Client) Synthesize(ctx context.Context, u speech.Utterance) (*speech.SynthesizedAudio, error) {
	return tracing.TraceGenerate(ctx, Provider, c.speechModel, "synthesize_speech",
		func(ctx context.Context, rec *tracing.Recorder) (*speech.SynthesizedAudio, error) {
			speechConfig := &genaiapi.SpeechConfig{
				LanguageCode: ptr.To(u.Language),
			}
			if u.Voice != nil {
				speechConfig.VoiceConfig = &genaiapi.VoiceConfig{
					PrebuiltVoiceConfig: &genaiapi.PrebuiltVoiceConfig{
						VoiceName: ptr.To(u.Voice.Name),
					},
				}
			}

			params := textRequest(u.Text, &genaiapi.GenerateContentConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig:       speechConfig,
			})

			response, err := clientutils.DoJSON[genaiapi.GenerateContentResponse](ctx, c.client, clientutils.JSONRequestConfig{
				URL:     c.modelURL(c.speechModel, "generateContent"),
				Headers: c.headers(),
				Body:    params,
			})
			if err != nil {
				return nil, err
			}
			recordUsage(rec, response.UsageMetadata)

			chunks, mimeType := audioFromResponse(response)
			if len(chunks) == 0 {
				return nil, fmt.Errorf("no audio returned")
			}
			pcm, err := audioutil.ConcatenateB64PCMChunks(chunks)
			if err != nil {
				return nil, err
			}

			return &speech.SynthesizedAudio{
				Data:       pcm,
				MimeType:   mimeType,
				SampleRate: sampleRateFromMime(mimeType),
				Channels:   1,
			}, nil
		})
}

// Transcribe converts recorded speech into text, streamed as interim
// transcript updates. It backs the speech recognizer.
func (c *Client) Transcribe(ctx context.Context, audioData []byte, mimeType string) (*stream.Stream[string], error) {
	ctx, rec := tracing.TraceStreamStart(ctx, Provider, c.textModel, "transcribe_audio")

	params := &genaiapi.GenerateContentParameters{
		SystemInstruction: &genaiapi.Content{
			Parts: []genaiapi.Part{{Text: ptr.To(
				"Transcribe the spoken audio verbatim. Output only the transcript text.",
			)}},
		},
		Contents: []genaiapi.Content{{
			Role: "user",
			Parts: []genaiapi.Part{{
				InlineData: &genaiapi.Blob{
					MimeType: ptr.To(mimeType),
					Data:     ptr.To(encodeBase64(audioData)),
				},
			}},
		}},
	}

	sseStream, err := clientutils.DoSSE[genaiapi.GenerateContentResponse](ctx, c.client, clientutils.SSERequestConfig{
		URL:     c.modelURL(c.textModel, "streamGenerateContent") + "?alt=sse",
		Headers: map[string]string{"x-goog-api-key": c.apiKey},
		Body:    params,
	})
	if err != nil {
		rec.OnError(err)
		rec.End()
		return nil, err
	}

	deltaCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(deltaCh)
		defer close(errCh)
		defer sseStream.Close()
		defer rec.End()

		for sseStream.Next() {
			event := sseStream.Current()
			recordUsage(rec, event.UsageMetadata)
			if delta := textFromResponse(event); delta != "" {
				rec.OnFirstToken()
				deltaCh <- delta
			}
		}
		if err := sseStream.Err(); err != nil {
			rec.OnError(err)
			errCh <- err
		}
	}()

	return stream.New(deltaCh, errCh), nil
}

func textRequest(text string, config *genaiapi.GenerateContentConfig) *genaiapi.GenerateContentParameters {
	return &genaiapi.GenerateContentParameters{
		Contents: []genaiapi.Content{{
			Role:  "user",
			Parts: []genaiapi.Part{{Text: &text}},
		}},
		GenerationConfig: config,
	}
}

func textFromResponse(response *genaiapi.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != nil {
			b.WriteString(*part.Text)
		}
	}
	return b.String()
}

func audioFromResponse(response *genaiapi.GenerateContentResponse) (chunks []string, mimeType string) {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil, ""
	}
	for _, part := range response.Candidates[0].Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == nil {
			continue
		}
		if part.InlineData.MimeType != nil && strings.HasPrefix(*part.InlineData.MimeType, "audio/") {
			chunks = append(chunks, *part.InlineData.Data)
			mimeType = *part.InlineData.MimeType
		}
	}
	return chunks, mimeType
}

// sampleRateFromMime parses rates like "audio/L16;codec=pcm;rate=24000".
func sampleRateFromMime(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		if rate, ok := strings.CutPrefix(strings.TrimSpace(param), "rate="); ok {
			if n, err := strconv.Atoi(rate); err == nil {
				return n
			}
		}
	}
	return 24_000
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func recordUsage(rec *tracing.Recorder, usage *genaiapi.UsageMetadata) {
	if usage == nil {
		return
	}
	u := tracing.Usage{}
	if usage.PromptTokenCount != nil {
		u.InputTokens = *usage.PromptTokenCount
	}
	if usage.CandidatesTokenCount != nil {
		u.OutputTokens = *usage.CandidatesTokenCount
	}
	rec.OnUsage(u)
}
