// Package genaiapi mirrors the subset of the Google generativelanguage
// REST API used by the client: text generation, speech synthesis, audio
// transcription, and Imagen prediction.
package genaiapi

// GenerateContentParameters is the generateContent request body.
type GenerateContentParameters struct {
	Contents          []Content              `json:"contents"`
	SystemInstruction *Content               `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerateContentConfig `json:"generationConfig,omitempty"`
}

// GenerateContentConfig tunes one generation request.
type GenerateContentConfig struct {
	Temperature        *float64      `json:"temperature,omitempty"`
	MaxOutputTokens    *int          `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is either text or an inline binary blob.
type Part struct {
	Text       *string `json:"text,omitempty"`
	InlineData *Blob   `json:"inlineData,omitempty"`
}

// Blob is inline base64 binary data.
type Blob struct {
	MimeType *string `json:"mimeType,omitempty"`
	Data     *string `json:"data,omitempty"`
}

// SpeechConfig selects the synthesis voice and spoken language.
type SpeechConfig struct {
	VoiceConfig  *VoiceConfig `json:"voiceConfig,omitempty"`
	LanguageCode *string      `json:"languageCode,omitempty"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type PrebuiltVoiceConfig struct {
	VoiceName *string `json:"voiceName,omitempty"`
}

// GenerateContentResponse is the generateContent response body, also the
// shape of each streamGenerateContent SSE event.
type GenerateContentResponse struct {
	Candidates    []Candidate    `json:"candidates,omitempty"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

type Candidate struct {
	Content *Content `json:"content,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     *int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount *int `json:"candidatesTokenCount,omitempty"`
}

// PredictParameters is the Imagen :predict request body.
type PredictParameters struct {
	Instances  []PredictInstance `json:"instances"`
	Parameters ImageParameters   `json:"parameters"`
}

type PredictInstance struct {
	Prompt string `json:"prompt"`
}

// ImageParameters is the fixed image generation configuration.
type ImageParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	OutputMimeType string `json:"outputMimeType,omitempty"`
}

// PredictResponse is the Imagen :predict response body.
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type Prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType,omitempty"`
}
