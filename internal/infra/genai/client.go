// Package genai provides a client for the external generative text service.
package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Client is a generation service API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Config represents client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Message is a single turn of a conversation.
type Message struct {
	Role string // "user" or "model"
	Text string
}

// GenerateOptions tunes a single-shot generation request.
type GenerateOptions struct {
	// JSONResponse asks the service to return a JSON document instead of
	// prose.
	JSONResponse bool
}

// Chunk is one increment of a streaming response. Err is non-nil on the
// final chunk of a failed stream.
type Chunk struct {
	Text string
	Err  error
}

// request/response wire shapes.
type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// apiError represents an error envelope from the service.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// New creates a new generation service client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation service API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("generation service base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// GenerateText sends a single prompt and returns the full text response.
func (c *Client) GenerateText(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}
	if opts.JSONResponse {
		reqBody.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}

	body, err := c.post(ctx, c.endpoint(model, "generateContent"), reqBody)
	if err != nil {
		return "", err
	}

	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, "failed to parse response")
	}

	text := firstText(response)
	if text == "" {
		return "", errors.New("empty response from generation service")
	}
	return text, nil
}

// StreamChat sends one conversation turn and returns a channel of ordered
// text chunks. The channel is closed after the final chunk; a transport or
// stream error is delivered as the last chunk's Err.
func (c *Client) StreamChat(ctx context.Context, model, system string, history []Message, message string) (<-chan Chunk, error) {
	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, content{Role: m.Role, Parts: []part{{Text: m.Text}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: message}}})

	reqBody := generateRequest{Contents: contents}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint(model, "streamGenerateContent")+"?alt=sse", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, serviceError(resp.StatusCode, body)
	}

	ch := make(chan Chunk, 8)
	go c.readStream(resp.Body, ch)
	return ch, nil
}

// readStream parses server-sent events from the response body and forwards
// text chunks in arrival order.
func (c *Client) readStream(body io.ReadCloser, ch chan<- Chunk) {
	defer close(ch)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var event generateResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			zlog.Debug().Msgf("genai: skipping unparsable stream event: %v", err)
			continue
		}
		if text := firstText(event); text != "" {
			ch <- Chunk{Text: text}
		}
	}

	if err := scanner.Err(); err != nil {
		ch <- Chunk{Err: errors.Wrap(err, "stream interrupted")}
	}
}

// post executes a JSON POST and returns the raw response body.
func (c *Client) post(ctx context.Context, url string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, serviceError(resp.StatusCode, body)
	}
	return body, nil
}

// endpoint builds the URL for a model operation.
func (c *Client) endpoint(model, op string) string {
	return c.baseURL + "/v1beta/models/" + model + ":" + op
}

// serviceError converts a non-200 response into an error, decoding the
// service's error envelope when present.
func serviceError(status int, body []byte) error {
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return errors.Newf("generation service error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}
	return errors.Newf("generation service returned status %d", status)
}

// firstText extracts the first candidate's concatenated text.
func firstText(r generateResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
