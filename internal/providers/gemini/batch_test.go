package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Mas3oood/Bovali/internal/asset"
)

func imageResponse(data []byte) geminiGenerateContentResponse {
	return geminiGenerateContentResponse{Candidates: []geminiCandidate{{
		Content: geminiContent{Parts: []geminiPart{
			{InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(data)}},
		}},
	}}}
}

func textResponse(text string) geminiGenerateContentResponse {
	return geminiGenerateContentResponse{Candidates: []geminiCandidate{{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}}}
}

func TestGenerateBatchKeepsSuccessfulSubset(t *testing.T) {
	var calls atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1)%2 == 1 {
			_ = json.NewEncoder(w).Encode(imageResponse([]byte("variation")))
			return
		}
		_ = json.NewEncoder(w).Encode(textResponse("no image this time"))
	}))
	defer ts.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	batcher := NewBatcher(client, nil)
	results, err := batcher.GenerateBatch(context.Background(), "instr", nil, 2)
	if err != nil {
		t.Fatalf("GenerateBatch error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one surviving image, got %d", len(results))
	}
	if string(results[0].Bytes) != "variation" {
		t.Fatalf("unexpected image bytes: %v", results[0].Bytes)
	}
}

func TestGenerateBatchAllMembersFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer ts.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	batcher := NewBatcher(client, nil)
	if _, err := batcher.GenerateBatch(context.Background(), "instr", nil, 2); !errors.Is(err, ErrBatchEmpty) {
		t.Fatalf("expected ErrBatchEmpty, got %v", err)
	}
}

func TestGenerateBatchIssuesCountCalls(t *testing.T) {
	var calls atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(imageResponse([]byte("variation")))
	}))
	defer ts.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	batcher := NewBatcher(client, nil)
	results, err := batcher.GenerateBatch(context.Background(), "instr", []asset.Image{{Bytes: []byte{0x89}, MIME: "image/png"}}, 3)
	if err != nil {
		t.Fatalf("GenerateBatch error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", got)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 images, got %d", len(results))
	}
}

func TestGenerateBatchFloorsCountAtOne(t *testing.T) {
	var calls atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(imageResponse([]byte("variation")))
	}))
	defer ts.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	batcher := NewBatcher(client, nil)
	results, err := batcher.GenerateBatch(context.Background(), "instr", nil, 0)
	if err != nil {
		t.Fatalf("GenerateBatch error: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
	if len(results) != 1 {
		t.Fatalf("expected one image, got %d", len(results))
	}
}
