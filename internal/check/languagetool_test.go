package check

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLanguageToolClient_Check(t *testing.T) {
	var gotText, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		gotText = r.PostForm.Get("text")
		gotLang = r.PostForm.Get("language")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"matches": [
				{
					"offset": 0,
					"length": 4,
					"message": "Possible spelling mistake",
					"replacements": [{"value": "hello"}, {"value": "halo"}]
				},
				{
					"offset": 5,
					"length": 5,
					"message": "Agreement error",
					"replacements": []
				}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewLanguageToolClient(server.URL,
		WithHTTPClient(server.Client()),
		WithRequestTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewLanguageToolClient failed: %v", err)
	}

	spans, err := client.Check(context.Background(), "helo world", "en-US")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if gotText != "helo world" {
		t.Errorf("Expected text %q submitted, got %q", "helo world", gotText)
	}
	if gotLang != "en-US" {
		t.Errorf("Expected language %q submitted, got %q", "en-US", gotLang)
	}

	if len(spans) != 2 {
		t.Fatalf("Expected 2 spans, got %d", len(spans))
	}
	if spans[0].Offset != 0 || spans[0].Length != 4 {
		t.Errorf("Expected span 0 at [0,4), got [%d,%d)", spans[0].Offset, spans[0].Offset+spans[0].Length)
	}
	if spans[0].Message != "Possible spelling mistake" {
		t.Errorf("Unexpected message %q", spans[0].Message)
	}
	if len(spans[0].Suggestions) != 2 || spans[0].Suggestions[0] != "hello" {
		t.Errorf("Unexpected suggestions %v", spans[0].Suggestions)
	}
	if len(spans[1].Suggestions) != 0 {
		t.Errorf("Expected no suggestions, got %v", spans[1].Suggestions)
	}
}

func TestLanguageToolClient_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matches": []}`))
	}))
	defer server.Close()

	client, _ := NewLanguageToolClient(server.URL)
	spans, err := client.Check(context.Background(), "all good", "auto")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(spans) != 0 {
		t.Errorf("Expected no spans, got %d", len(spans))
	}
}

func TestLanguageToolClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewLanguageToolClient(server.URL)
	_, err := client.Check(context.Background(), "text", "auto")
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	var ce *CheckError
	if !errors.As(err, &ce) {
		t.Errorf("Expected CheckError, got %T", err)
	}
}

func TestLanguageToolClient_EmptyEndpoint(t *testing.T) {
	if _, err := NewLanguageToolClient(""); !errors.Is(err, ErrEmptyEndpoint) {
		t.Errorf("Expected ErrEmptyEndpoint, got %v", err)
	}
}
