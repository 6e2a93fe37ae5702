package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"id":"gen-1","choices":[{"message":{"role":"assistant","content":"Visit Wat Pho."}}]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-key", srv.URL)
	reply, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a guide."},
		{Role: RoleUser, Content: "Temples?"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Visit Wat Pho." {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "moonshotai/kimi-k2:free" || got.Temperature != 0.7 || got.MaxTokens != 2000 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "Temples?" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestComplete_Headers(t *testing.T) {
	var h http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h = r.Header.Clone()
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-or-test", srv.URL)
	if _, err := c.Complete(context.Background(), nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if h.Get("Authorization") != "Bearer sk-or-test" {
		t.Errorf("Authorization = %q", h.Get("Authorization"))
	}
	if h.Get("X-Title") != "Bangkok Travel Chatbot" || h.Get("HTTP-Referer") == "" {
		t.Errorf("attribution headers = %q / %q", h.Get("X-Title"), h.Get("HTTP-Referer"))
	}
}

func TestComplete_Options(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", srv.URL, WithModel("openai/gpt-4o-mini"), WithSampling(0.2, 500))
	if _, err := c.Complete(context.Background(), nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Model != "openai/gpt-4o-mini" || got.Temperature != 0.2 || got.MaxTokens != 500 {
		t.Errorf("request = %+v", got)
	}
	if c.Model() != "openai/gpt-4o-mini" {
		t.Errorf("Model() = %q", c.Model())
	}
}

func TestComplete_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClientWithBaseURL("k", srv.URL).Complete(context.Background(), nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("error = %v, want StatusError 429", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"gen-2","choices":[]}`)
	}))
	defer srv.Close()

	if _, err := NewClientWithBaseURL("k", srv.URL).Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestClassify(t *testing.T) {
	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"No auth credentials found"}}`)
	}))
	defer unauthorized.Close()

	forbidden := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer forbidden.Close()

	serverErr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer serverErr.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closed.Close()

	tests := []struct {
		name   string
		client *Client
		want   ErrorKind
	}{
		{"401", NewClientWithBaseURL("k", unauthorized.URL), KindUnauthorized},
		{"403", NewClientWithBaseURL("k", forbidden.URL), KindUnauthorized},
		{"500", NewClientWithBaseURL("k", serverErr.URL), KindUnknown},
		{"client timeout", NewClientWithBaseURL("k", slow.URL, WithTimeout(20*time.Millisecond)), KindTimeout},
		{"connection refused", NewClientWithBaseURL("k", closed.URL), KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Complete(context.Background(), nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := Classify(err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestClassify_Wrapped(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"deadline", fmt.Errorf("calling model: %w", context.DeadlineExceeded), KindTimeout},
		{"dns", fmt.Errorf("x: %w", &net.DNSError{Err: "no such host", Name: "openrouter.ai"}), KindNetwork},
		{"status", fmt.Errorf("x: %w", &StatusError{StatusCode: 401}), KindUnauthorized},
		{"caller canceled", &url.Error{Op: "Post", URL: "https://openrouter.ai/api/v1/chat/completions", Err: context.Canceled}, KindUnknown},
		{"bad scheme", &url.Error{Op: "Post", URL: "ftp://openrouter.ai", Err: errors.New("unsupported protocol scheme \"ftp\"")}, KindUnknown},
		{"refused behind url error", &url.Error{Op: "Post", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}, KindNetwork},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("%s: Classify = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestContextCancellation(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	// Cleanups run last-in first-out: release the handler, then close.
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(done) })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClientWithBaseURL("k", srv.URL).Complete(ctx, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if Classify(err) != KindTimeout {
		t.Errorf("Classify(%v) = %v, want timeout", err, Classify(err))
	}
}

func TestClassify_CanceledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClientWithBaseURL("k", "http://127.0.0.1:1").Complete(ctx, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := Classify(err); got != KindUnknown {
		t.Errorf("Classify(%v) = %v, want unknown", err, got)
	}
}

func TestClassify_UnsupportedScheme(t *testing.T) {
	_, err := NewClientWithBaseURL("k", "ftp://openrouter.ai/api/v1").Complete(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := Classify(err); got != KindUnknown {
		t.Errorf("Classify(%v) = %v, want unknown", err, got)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":[{"id":"moonshotai/kimi-k2:free","name":"Kimi K2"},{"id":"openai/gpt-4o"}]}`)
	}))
	defer srv.Close()

	models, err := NewClientWithBaseURL("k", srv.URL).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0].ID != "moonshotai/kimi-k2:free" {
		t.Errorf("models = %+v", models)
	}
}

func TestListModels_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":null}`)
	}))
	defer srv.Close()

	models, err := NewClientWithBaseURL("k", srv.URL).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if models == nil || len(models) != 0 {
		t.Errorf("models = %v, want empty non-nil", models)
	}
}

func TestErrorKindString(t *testing.T) {
	for k, want := range map[ErrorKind]string{
		KindUnknown:      "unknown",
		KindUnauthorized: "unauthorized",
		KindNetwork:      "network",
		KindTimeout:      "timeout",
	} {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
	if !strings.Contains((&StatusError{StatusCode: 502, Body: "bad gateway"}).Error(), "502") {
		t.Error("StatusError message missing status code")
	}
}
