package genai_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anikutusu/anikutusu"
	"github.com/anikutusu/anikutusu/genai"
	"github.com/anikutusu/anikutusu/genai/genaiapi"
	"github.com/anikutusu/anikutusu/speech"
	"github.com/anikutusu/anikutusu/utils/stream"
	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.Handler) *genai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return genai.NewClient(genai.ClientOptions{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
}

func TestGenerateNarrative(t *testing.T) {
	var gotPath, gotKey string
	var gotBody genaiapi.GenerateContentParameters

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		text := "Bayram sabahıydı..."
		json.NewEncoder(w).Encode(genaiapi.GenerateContentResponse{
			Candidates: []genaiapi.Candidate{{
				Content: &genaiapi.Content{Parts: []genaiapi.Part{{Text: &text}}},
			}},
		})
	}))

	narrative, err := client.GenerateNarrative(context.Background(), "bir anı yaz")
	if err != nil {
		t.Fatalf("GenerateNarrative failed: %v", err)
	}
	if narrative != "Bayram sabahıydı..." {
		t.Errorf("narrative = %q", narrative)
	}
	if !strings.HasSuffix(gotPath, "/models/"+genai.DefaultTextModel+":generateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || *gotBody.Contents[0].Parts[0].Text != "bir anı yaz" {
		t.Errorf("request contents = %+v", gotBody.Contents)
	}
}

func TestGenerateNarrativeServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))

	_, err := client.GenerateNarrative(context.Background(), "bir anı yaz")
	if !anikutusu.IsKind(err, anikutusu.Generation) {
		t.Errorf("error = %v, want generation kind", err)
	}
}

func TestStreamNarrative(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Bayram ", "sabahıydı", "..."} {
			event := genaiapi.GenerateContentResponse{
				Candidates: []genaiapi.Candidate{{
					Content: &genaiapi.Content{Parts: []genaiapi.Part{{Text: &delta}}},
				}},
			}
			data, _ := json.Marshal(event)
			w.Write([]byte("data: " + string(data) + "\n\n"))
		}
	}))

	s, err := client.StreamNarrative(context.Background(), "bir anı yaz")
	if err != nil {
		t.Fatalf("StreamNarrative failed: %v", err)
	}
	deltas, err := stream.Collect(s)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got := strings.Join(deltas, ""); got != "Bayram sabahıydı..." {
		t.Errorf("streamed narrative = %q", got)
	}
}

func TestGenerateImages(t *testing.T) {
	var gotBody genaiapi.PredictParameters

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/"+genai.DefaultImageModel+":predict") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(genaiapi.PredictResponse{
			Predictions: []genaiapi.Prediction{
				{BytesBase64Encoded: "aW1nMQ==", MimeType: "image/jpeg"},
				{BytesBase64Encoded: "aW1nMg=="},
			},
		})
	}))

	images, err := client.GenerateImages(context.Background(), "a nostalgic scene", genai.DefaultImageConfig())
	if err != nil {
		t.Fatalf("GenerateImages failed: %v", err)
	}

	wantParams := genaiapi.ImageParameters{SampleCount: 2, AspectRatio: "16:9", OutputMimeType: "image/jpeg"}
	if diff := cmp.Diff(wantParams, gotBody.Parameters); diff != "" {
		t.Errorf("request parameters mismatch (-want +got):\n%s", diff)
	}

	want := []genai.Image{
		{MimeType: "image/jpeg", Data: "aW1nMQ=="},
		{MimeType: "image/jpeg", Data: "aW1nMg=="},
	}
	if diff := cmp.Diff(want, images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateImagesEmptyResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(genaiapi.PredictResponse{})
	}))

	_, err := client.GenerateImages(context.Background(), "scene", genai.DefaultImageConfig())
	if !anikutusu.IsKind(err, anikutusu.Generation) {
		t.Errorf("error = %v, want generation kind", err)
	}
}

func TestSynthesize(t *testing.T) {
	pcm1 := []byte{0x01, 0x00, 0x02, 0x00}
	pcm2 := []byte{0x03, 0x00}
	mime := "audio/L16;codec=pcm;rate=24000"

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body genaiapi.GenerateContentParameters
		json.NewDecoder(r.Body).Decode(&body)
		if body.GenerationConfig == nil || len(body.GenerationConfig.ResponseModalities) != 1 ||
			body.GenerationConfig.ResponseModalities[0] != "AUDIO" {
			t.Errorf("missing AUDIO modality in request: %+v", body.GenerationConfig)
		}
		if sc := body.GenerationConfig.SpeechConfig; sc == nil ||
			sc.VoiceConfig.PrebuiltVoiceConfig.VoiceName == nil ||
			*sc.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Yelda" {
			t.Errorf("voice not forwarded: %+v", body.GenerationConfig.SpeechConfig)
		}

		chunk1 := base64.StdEncoding.EncodeToString(pcm1)
		chunk2 := base64.StdEncoding.EncodeToString(pcm2)
		json.NewEncoder(w).Encode(genaiapi.GenerateContentResponse{
			Candidates: []genaiapi.Candidate{{
				Content: &genaiapi.Content{Parts: []genaiapi.Part{
					{InlineData: &genaiapi.Blob{MimeType: &mime, Data: &chunk1}},
					{InlineData: &genaiapi.Blob{MimeType: &mime, Data: &chunk2}},
				}},
			}},
		})
	}))

	voice := speech.Voice{Name: "Yelda", Language: "tr-TR"}
	audio, err := client.Synthesize(context.Background(), speech.NewUtterance("bir iki üç", &voice, "tr-TR"))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if diff := cmp.Diff(append(pcm1, pcm2...), audio.Data); diff != "" {
		t.Errorf("pcm mismatch (-want +got):\n%s", diff)
	}
	if audio.SampleRate != 24_000 || audio.Channels != 1 {
		t.Errorf("sample rate/channels = %d/%d, want 24000/1", audio.SampleRate, audio.Channels)
	}
}

func TestTranscribeStreamsDeltas(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body genaiapi.GenerateContentParameters
		json.NewDecoder(r.Body).Decode(&body)
		if body.Contents[0].Parts[0].InlineData == nil {
			t.Errorf("audio not sent inline: %+v", body.Contents)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"misket ", "leblebi tozu"} {
			event := genaiapi.GenerateContentResponse{
				Candidates: []genaiapi.Candidate{{
					Content: &genaiapi.Content{Parts: []genaiapi.Part{{Text: &delta}}},
				}},
			}
			data, _ := json.Marshal(event)
			w.Write([]byte("data: " + string(data) + "\n\n"))
		}
	}))

	s, err := client.Transcribe(context.Background(), []byte{0x52, 0x49}, "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	deltas, err := stream.Collect(s)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got := strings.Join(deltas, ""); got != "misket leblebi tozu" {
		t.Errorf("transcript = %q", got)
	}
}
