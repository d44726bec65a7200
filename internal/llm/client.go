package llm

import (
	"context"
	"fmt"

	"github.com/ethanbaker/ytchat/pkg/utils"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultModel is used when GEMINI_MODEL is not configured
const DefaultModel = "gemini-2.0-flash"

// Message roles in a chat exchange
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one prior turn of the conversation
type Message struct {
	Role    string
	Content string
}

// Request describes one completion call. The credential travels with the
// request because each session carries its own API key.
type Request struct {
	APIKey   string
	System   string
	History  []Message
	Question string
}

// Stream is a finite, non-restartable sequence of text fragments produced
// by the model. Next advances to the next fragment; once it returns false,
// Err reports whether the stream ended cleanly.
type Stream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// Completer sends chat completions to the hosted model
type Completer interface {
	StreamCompletion(ctx context.Context, req Request) (Stream, error)
}

// Client is a Completer backed by the openai-go SDK pointed at Gemini's
// OpenAI-compatible endpoint
type Client struct {
	baseURL string
	model   string
	log     *logrus.Logger
}

// New creates an LLM client from configuration
func New(cfg *utils.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.GetWithDefault("GEMINI_BASE_URL", DefaultBaseURL),
		model:   cfg.GetWithDefault("GEMINI_MODEL", DefaultModel),
		log:     log,
	}
}

// StreamCompletion opens a streaming chat completion. The SDK client is
// built per call because the credential is per-session, not per-process.
func (c *Client) StreamCompletion(ctx context.Context, req Request) (Stream, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("no api key provided")
	}

	client := openai.NewClient(
		option.WithAPIKey(req.APIKey),
		option.WithBaseURL(c.baseURL),
	)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	messages = append(messages, openai.SystemMessage(req.System))
	for _, m := range req.History {
		switch m.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Question))

	c.log.WithFields(logrus.Fields{
		"model":    c.model,
		"messages": len(messages),
	}).Debug("opening completion stream")

	stream := client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})

	return &sseStream{inner: stream}, nil
}
