package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultOpenRouterBaseURL is the OpenRouter OpenAI-compatible endpoint.
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultDeepSeekBaseURL is the DeepSeek OpenAI-compatible endpoint.
	DefaultDeepSeekBaseURL = "https://api.deepseek.com"

	// DefaultChatTimeout bounds a single chat completion request.
	DefaultChatTimeout = 20 * time.Second
)

// OpenAIClient implements Client against any OpenAI-compatible
// chat-completions API (OpenRouter, DeepSeek, ...).
type OpenAIClient struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// OpenAIOption is a functional option for configuring OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithOpenAIBaseURL sets a custom API base URL.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.httpClient = client
	}
}

// NewOpenAIClient creates a client for an OpenAI-compatible provider.
// The name is used for registry lookup and error reporting.
func NewOpenAIClient(name, apiKey, model string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		name:    name,
		baseURL: DefaultOpenRouterBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: DefaultChatTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return c.name
}

// chatRequest represents the request body for the chat completions API.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// chatResponse represents the response from the chat completions API.
type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Chat sends the messages to the provider and returns the generated text.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", &ProviderError{Provider: c.name, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Provider: c.name, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.name, Err: classifyTransportError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", &ProviderError{
			Provider: c.name,
			Err:      fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(b)),
		}
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ProviderError{Provider: c.name, Err: fmt.Errorf("%w: decoding response: %v", ErrProvider, err)}
	}

	if len(result.Choices) == 0 {
		return "", &ProviderError{Provider: c.name, Err: fmt.Errorf("%w: empty choices", ErrProvider)}
	}

	return result.Choices[0].Message.Content, nil
}

// classifyTransportError maps a transport failure onto the error taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}

// Ensure OpenAIClient implements Client interface.
var _ Client = (*OpenAIClient)(nil)
