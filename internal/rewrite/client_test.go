package rewrite

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"
)

func TestClient_Generate(t *testing.T) {
	var gotAuth, gotModel, gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotModel = gjson.GetBytes(body, "model").String()
		gotPrompt = gjson.GetBytes(body, "messages.0.content").String()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Rewritten text."}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL,
		WithModel("test-model"),
		WithAPIKey("sk-test"),
		WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	got, err := client.Generate(context.Background(), "Rewrite this.")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "Rewritten text." {
		t.Errorf("Expected %q, got %q", "Rewritten text.", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if gotModel != "test-model" {
		t.Errorf("Expected model %q in request, got %q", "test-model", gotModel)
	}
	if gotPrompt != "Rewrite this." {
		t.Errorf("Expected prompt in request, got %q", gotPrompt)
	}
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{400, KindInvalidRequest},
		{401, KindUnauthorized},
		{403, KindForbidden},
		{404, KindNotFound},
		{500, KindServerError},
		{503, KindServerError},
		{418, KindUnknown},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error": {"message": "nope"}}`))
		}))

		client, _ := NewClient(server.URL)
		_, err := client.Generate(context.Background(), "x")
		server.Close()

		var re *RewriteError
		if !errors.As(err, &re) {
			t.Errorf("Status %d: expected RewriteError, got %v", tt.status, err)
			continue
		}
		if re.Kind != tt.kind {
			t.Errorf("Status %d: expected kind %q, got %q", tt.status, tt.kind, re.Kind)
		}
		if re.Status != tt.status {
			t.Errorf("Status %d: recorded status %d", tt.status, re.Status)
		}
		if re.Detail != "nope" {
			t.Errorf("Status %d: expected detail from error body, got %q", tt.status, re.Detail)
		}
	}
}

func TestClient_ErrorDetailFallsBackToBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL)
	_, err := client.Generate(context.Background(), "x")

	var re *RewriteError
	if !errors.As(err, &re) {
		t.Fatalf("Expected RewriteError, got %v", err)
	}
	if re.Detail != "upstream unavailable" {
		t.Errorf("Expected raw body detail, got %q", re.Detail)
	}
}

func TestClient_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL)
	if _, err := client.Generate(context.Background(), "x"); !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("Expected ErrEmptyCompletion, got %v", err)
	}
}

func TestClient_EmptyEndpoint(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, ErrEmptyEndpoint) {
		t.Errorf("Expected ErrEmptyEndpoint, got %v", err)
	}
}
