package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	model          = "claude-3-haiku-20240307"
	maxTokens      = 64
	unknownReply   = "UNKNOWN"
)

// ErrNoCommand is returned when the model cannot map the text to a command.
var ErrNoCommand = errors.New("no command recognised")

// Client translates free-form farm chat into a slash command.
type Client interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
}

// Option customises the client.
type Option func(*resty.Client)

// WithBaseURL points the client at another host, e.g. a proxy or a test server.
func WithBaseURL(url string) Option {
	return func(c *resty.Client) { c.SetBaseURL(strings.TrimSuffix(url, "/")) }
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string, opts ...Option) Client {
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)
	for _, opt := range opts {
		opt(client)
	}
	return &anthropicClient{httpClient: client}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You turn short messages from a small egg farm into exactly one command line.
Supported commands:
/collect <qty> [species or color] ... [notes]   eggs gathered, e.g. "/collect 24 6 duck"
/pack [box size] | /pack <species> [box size]    pack loose eggs into cartons
/sell <carton id suffix> [customer] [price]      sell one carton
/stock                                           loose eggs and unsold cartons
/report                                          weekly summary
/help
Reply with the command line only. Use numbers, not words. If the message does not match a command, reply ` + unknownReply + `.`

// TranslateToCommand asks the model for the command line matching input.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: input}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", ErrNoCommand
	}

	line := strings.TrimSpace(respBody.Content[0].Text)
	line = strings.Trim(line, "`")
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.EqualFold(line, unknownReply) || !strings.HasPrefix(line, "/") {
		return "", ErrNoCommand
	}
	return line, nil
}
