// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// geminiBaseURL is the Gemini API endpoint. Package-level var for test
// substitution.
var geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// defaultTemperature keeps the pipeline stages close to deterministic.
const defaultTemperature = 0.2

// Gemini calls the Gemini generateContent API. System messages map to the
// request's system_instruction; human messages become user contents.
type Gemini struct {
	APIKey string
	Model  string
	Client *http.Client
}

// NewGemini builds a client from AI configuration.
func NewGemini(cfg types.AIConfig) *Gemini {
	return &Gemini{APIKey: cfg.APIKey, Model: cfg.Model}
}

// geminiRequest is the request body for the generateContent API.
type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

// geminiResponse is the response body from the generateContent API.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the messages as one generateContent call and returns the
// first candidate's text.
func (g *Gemini) Complete(ctx context.Context, messages []Message) (string, error) {
	if g.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	reqBody := geminiRequest{
		GenerationConfig: geminiGenerationConfig{Temperature: defaultTemperature},
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			reqBody.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
			}
		default:
			reqBody.Contents = append(reqBody.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}
	if len(reqBody.Contents) == 0 {
		return "", fmt.Errorf("at least one non-system message is required")
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}
	if gResp.Error != nil {
		return "", fmt.Errorf("Gemini API error: %s", gResp.Error.Message)
	}
	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}

	var out strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return strings.TrimSpace(out.String()), nil
}
