package coach

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestAdviseNotConfigured(t *testing.T) {
	c := NewClient("", "gemini-1.5-flash", "Mangalagiri, Andhra Pradesh, India", zap.NewNop())

	_, err := c.Advise(context.Background(), PointsSnapshot{}, "how am I doing?")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAdviseGeneratesReply(t *testing.T) {
	var gotPath string
	var gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		var req generateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("request body is not valid JSON: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Great job, keep composting!"}},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient("test-key", "gemini-1.5-flash", "Mangalagiri, Andhra Pradesh, India", zap.NewNop())
	c.baseURL = srv.URL

	reply, err := c.Advise(context.Background(), PointsSnapshot{Dry: 2, Wet: 3, EWaste: 1, Total: 44}, "How can I improve?")
	if err != nil {
		t.Fatalf("Advise failed: %v", err)
	}
	if reply != "Great job, keep composting!" {
		t.Errorf("unexpected reply: %q", reply)
	}

	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("unexpected request path: %s", gotPath)
	}
	for _, want := range []string{"Total Points: 44", "Dry Waste Items Recycled: 2", "Wet Waste Items Recycled: 3", "E-Waste Items Recycled: 1", "How can I improve?"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gotPrompt)
		}
	}
}

func TestAdviseDefaultsQuestion(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req generateRequest
		json.Unmarshal(body, &req)
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "ok"}},
				}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", "gemini-1.5-flash", "Mangalagiri, Andhra Pradesh, India", zap.NewNop())
	c.baseURL = srv.URL

	if _, err := c.Advise(context.Background(), PointsSnapshot{}, ""); err != nil {
		t.Fatalf("Advise failed: %v", err)
	}
	if !strings.Contains(gotPrompt, "Give me some general advice.") {
		t.Errorf("expected default question in prompt:\n%s", gotPrompt)
	}
}

func TestAdviseServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", "gemini-1.5-flash", "Mangalagiri, Andhra Pradesh, India", zap.NewNop())
	c.baseURL = srv.URL

	if _, err := c.Advise(context.Background(), PointsSnapshot{}, "hi"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
