package ai

import (
	"testing"

	"google.golang.org/genai"
)

func TestGetPresetConfigFallsBackToBalanced(t *testing.T) {
	balanced := GetPresetConfig(PresetBalanced)
	unknown := GetPresetConfig(ModelPreset("mystery"))
	if unknown != balanced {
		t.Fatalf("unknown preset should resolve to balanced: %+v vs %+v", unknown, balanced)
	}

	creative := GetPresetConfig(PresetCreative)
	precise := GetPresetConfig(PresetPrecise)
	if creative.Temperature <= precise.Temperature {
		t.Fatalf("creative must run hotter than precise: %f vs %f", creative.Temperature, precise.Temperature)
	}
}

func TestExtractTextFromGeminiResponse(t *testing.T) {
	if got := extractTextFromGeminiResponse(nil); got != "" {
		t.Fatalf("nil response must yield empty text, got %q", got)
	}

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "hello "},
						{Text: "world"},
					},
				},
			},
		},
	}
	if got := extractTextFromGeminiResponse(resp); got != "hello world" {
		t.Fatalf("parts not joined: %q", got)
	}
}

func TestExtractImageFromGeminiResponse(t *testing.T) {
	if got := extractImageFromGeminiResponse(nil); got != nil {
		t.Fatalf("nil response must yield no image")
	}

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here is your portrait"},
						{InlineData: &genai.Blob{MIMEType: "", Data: []byte{1, 2, 3}}},
					},
				},
			},
		},
	}

	result := extractImageFromGeminiResponse(resp)
	if result == nil {
		t.Fatalf("expected inline image to be extracted")
	}
	if result.MIMEType != "image/png" {
		t.Fatalf("missing MIME type should default to png, got %q", result.MIMEType)
	}
	if len(result.Data) != 3 {
		t.Fatalf("image bytes lost: %d", len(result.Data))
	}
}
