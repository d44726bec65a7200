package sdk

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client wraps calls to the video chat backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// CreateSession creates a new chat session
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	var out ApiResponse[Session]
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/sessions", req, &out); err != nil {
		return nil, err
	}

	if out.Data.ID == "" {
		return nil, fmt.Errorf("no session id returned")
	}

	return &out.Data, nil
}

// GetSession retrieves a session and its history by UUID
func (c *Client) GetSession(ctx context.Context, uuid string) (*Session, error) {
	path := fmt.Sprintf("/api/chat/sessions/%s", uuid)

	var out ApiResponse[Session]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// DeleteSession removes a session by UUID
func (c *Client) DeleteSession(ctx context.Context, uuid string) error {
	path := fmt.Sprintf("/api/chat/sessions/%s", uuid)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// SetCredential sets the session's model API key
func (c *Client) SetCredential(ctx context.Context, uuid, apiKey string) error {
	path := fmt.Sprintf("/api/chat/sessions/%s/credential", uuid)
	return c.doJSON(ctx, http.MethodPut, path, &SetCredentialRequest{APIKey: apiKey}, nil)
}

// SetVideo loads a video's transcript into the session
func (c *Client) SetVideo(ctx context.Context, uuid, url string) (*TranscriptSummary, error) {
	path := fmt.Sprintf("/api/chat/sessions/%s/video", uuid)

	var out ApiResponse[TranscriptSummary]
	if err := c.doJSON(ctx, http.MethodPost, path, &SetVideoRequest{URL: url}, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// ClearHistory discards the session's conversation history
func (c *Client) ClearHistory(ctx context.Context, uuid string) error {
	path := fmt.Sprintf("/api/chat/sessions/%s/clear", uuid)
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// Ask sends a question and consumes the streamed answer. onChunk is invoked
// for every text fragment as it arrives (may be nil). The full answer is
// returned once the stream completes.
func (c *Client) Ask(ctx context.Context, uuid, question string, onChunk func(text string)) (string, error) {
	path := fmt.Sprintf("/api/chat/sessions/%s/messages", uuid)

	body, err := json.Marshal(&AskRequest{Question: question})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// Non-2xx means the question was rejected before streaming started
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ask failed: %d: %s", resp.StatusCode, string(b))
	}

	var answer strings.Builder
	err = readSSE(resp.Body, func(event, data string) error {
		switch event {
		case "chunk":
			answer.WriteString(data)
			if onChunk != nil {
				onChunk(data)
			}
		case "error":
			return fmt.Errorf("stream error: %s", data)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return answer.String(), nil
}

// readSSE parses a server-sent-event stream, invoking handle once per event
// with the event name and joined data payload
func readSSE(r io.Reader, handle func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	var data []string

	flush := func() error {
		if event == "" && len(data) == 0 {
			return nil
		}
		err := handle(event, strings.Join(data, "\n"))
		event = ""
		data = nil
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// Stream may end without a trailing blank line
	return flush()
}

// doJSON is a helper to perform JSON requests to the backend
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// On error, read body and return error
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend '%s %s' failed: %d: %s", method, path, resp.StatusCode, string(b))
	}

	// If no output expected, return early
	if out == nil {
		return nil
	}

	// Decode the response body into the output struct
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
