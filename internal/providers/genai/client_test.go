package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func inlineResponse(parts ...geminiPart) geminiGenerateContentResponse {
	return geminiGenerateContentResponse{
		Candidates: []geminiCandidate{{Content: geminiContent{Role: "model", Parts: parts}}},
	}
}

func TestGenerateContentPartOrderAndAuth(t *testing.T) {
	var captured geminiGenerateContentRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Fatalf("api key header = %q", got)
		}
		if !strings.Contains(r.URL.Path, "models/test-model:generateContent") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(inlineResponse(geminiPart{
			InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("result"))},
		}))
	}))
	defer ts.Close()

	c := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL, Model: "test-model", Logger: zerolog.Nop()})
	res, err := c.GenerateContent(context.Background(), []Part{
		ImagePart([]byte("person"), "image/png"),
		ImagePart([]byte("clothing"), "image/jpeg"),
		TextPart("the prompt"),
	})
	if err != nil {
		t.Fatalf("GenerateContent error: %v", err)
	}

	if len(captured.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(captured.Contents))
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "image/png" {
		t.Fatalf("part 0 is not the person image: %+v", parts[0])
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/jpeg" {
		t.Fatalf("part 1 is not the clothing image: %+v", parts[1])
	}
	if parts[2].Text != "the prompt" {
		t.Fatalf("part 2 text = %q", parts[2].Text)
	}
	if !res.HasImage() || string(res.ImageData) != "result" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGenerateContentFirstImageWins(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inlineResponse(
			geminiPart{Text: "here you go"},
			geminiPart{InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("first"))}},
			geminiPart{InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString([]byte("second"))}},
		))
	}))
	defer ts.Close()

	c := NewClient(Options{APIKey: "k", BaseURL: ts.URL, Logger: zerolog.Nop()})
	res, err := c.GenerateContent(context.Background(), []Part{TextPart("p")})
	if err != nil {
		t.Fatalf("GenerateContent error: %v", err)
	}
	if string(res.ImageData) != "first" {
		t.Fatalf("image = %q, want first inline payload", res.ImageData)
	}
	if res.Text != "here you go" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestGenerateContentTextOnly(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inlineResponse(geminiPart{Text: "I cannot generate that image."}))
	}))
	defer ts.Close()

	c := NewClient(Options{APIKey: "k", BaseURL: ts.URL, Logger: zerolog.Nop()})
	res, err := c.GenerateContent(context.Background(), []Part{TextPart("p")})
	if err != nil {
		t.Fatalf("GenerateContent error: %v", err)
	}
	if res.HasImage() {
		t.Fatal("expected no image")
	}
	if res.Text == "" {
		t.Fatal("expected refusal text to be preserved")
	}
}

func TestGenerateContentSurfacesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "status": "RESOURCE_EXHAUSTED", "message": "Quota exceeded for requests"},
		})
	}))
	defer ts.Close()

	c := NewClient(Options{APIKey: "k", BaseURL: ts.URL, Logger: zerolog.Nop()})
	_, err := c.GenerateContent(context.Background(), []Part{TextPart("p")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "Quota exceeded") {
		t.Fatalf("error should carry status and message: %v", err)
	}
}
