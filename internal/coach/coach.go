package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key was supplied at startup.
var ErrNotConfigured = errors.New("ai coach is not configured")

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// PointsSnapshot is the caller-supplied view of a user's counters, used to
// ground the coaching prompt.
type PointsSnapshot struct {
	Dry    int
	Wet    int
	EWaste int
	Total  int
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	location   string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiKey, model, location string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		location:   location,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Advise generates a coaching reply for the user's snapshot and question.
func (c *Client) Advise(ctx context.Context, snap PointsSnapshot, question string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if question == "" {
		question = "Give me some general advice."
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: c.buildPrompt(snap, question)}}}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generative service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generative service returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generative service returned no candidates")
	}

	c.logger.Debug("coach reply generated", zap.String("model", c.model))
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) buildPrompt(snap PointsSnapshot, question string) string {
	return fmt.Sprintf(`You are an encouraging and helpful AI sustainability coach for a Smart Dustbin app in %s.
Your goal is to provide useful, actionable advice based on the user's recycling data and their specific question.
Keep your response concise (2-4 sentences) and friendly.

Here is the user's current recycling data:
- Total Points: %d
- Dry Waste Items Recycled: %d
- Wet Waste Items Recycled: %d
- E-Waste Items Recycled: %d

Here is the user's question: %q

Directly answer the user's question. Only mention their points if their question is about points.`,
		c.location, snap.Total, snap.Dry, snap.Wet, snap.EWaste, question)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
