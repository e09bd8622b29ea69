package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"synqAPI/internal/httpclient"
)

const defaultModelURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// GeminiService issues single-shot generateContent calls against the
// generative-language API.
type GeminiService struct {
	client   *httpclient.Client
	endpoint string
	apiKey   string
}

func NewGeminiService(client *httpclient.Client) (*GeminiService, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	endpoint := os.Getenv("GEMINI_MODEL_URL")
	if endpoint == "" {
		endpoint = defaultModelURL
	}
	return &GeminiService{client: client, endpoint: endpoint, apiKey: apiKey}, nil
}

func NewGeminiServiceWithEndpoint(client *httpclient.Client, endpoint, apiKey string) *GeminiService {
	return &GeminiService{client: client, endpoint: endpoint, apiKey: apiKey}
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
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate runs one model call and returns the raw text of the first
// candidate.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal model request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.DoWithRetry(ctx, req)
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("model returned %d: %s", resp.StatusCode, msg)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("model error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// StripCodeFences removes a wrapping markdown code fence, with or without a
// language tag, so fenced and bare responses parse identically.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.Index(trimmed, "\n"); i >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		firstLine := strings.TrimSpace(trimmed[:i])
		if firstLine == "" || !strings.ContainsAny(firstLine, "[{") {
			trimmed = trimmed[i+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ParseNameList parses the model output as a JSON array of venue names,
// tolerating a code-fence wrapper.
func ParseNameList(text string) ([]string, error) {
	clean := StripCodeFences(text)
	var names []string
	if err := json.Unmarshal([]byte(clean), &names); err != nil {
		return nil, fmt.Errorf("parse venue list: %w", err)
	}
	out := names[:0]
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			out = append(out, strings.TrimSpace(n))
		}
	}
	return out, nil
}
