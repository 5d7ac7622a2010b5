package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "http://localhost:8000/api/v1"

var (
	// ErrSendFailed wraps every failure of SendMessage.
	ErrSendFailed = errors.New("send failed")
	// ErrRequestFailed wraps failures of the other chat calls.
	ErrRequestFailed = errors.New("request failed")
)

type ChatRequest struct {
	ConversationID *string `json:"conversation_id"`
	Message        string  `json:"message"`
}

type ChatResponse struct {
	ChatID   string `json:"chat_id,omitempty"`
	Response string `json:"response"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Chat struct {
	ID       string        `json:"id"`
	Messages []ChatMessage `json:"messages"`
}

// Upload is one file sent to UploadDocuments.
type Upload struct {
	Name string
	Data []byte
}

type messageResp struct {
	Message string `json:"message"`
}

// Client talks to the assistant chat endpoints under one base URL.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient builds a client. A zero timeout means requests only end when the
// server answers or ctx is done.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// SendMessage posts one user message. A nil conversationID asks the server to
// start a new conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID *string, message string) (*ChatResponse, error) {
	var out ChatResponse
	err := c.do(ctx, http.MethodPost, "/chat", ChatRequest{ConversationID: conversationID, Message: message}, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return &out, nil
}

func (c *Client) GetChat(ctx context.Context, id string) (*Chat, error) {
	var out Chat
	if err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return &out, nil
}

// DeleteChat removes a conversation on the server and returns its confirmation text.
func (c *Client) DeleteChat(ctx context.Context, id string) (string, error) {
	var out messageResp
	if err := c.do(ctx, http.MethodDelete, "/chat/"+url.PathEscape(id), nil, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return out.Message, nil
}

// UploadDocuments sends text files to be used as reference material in a chat.
func (c *Client) UploadDocuments(ctx context.Context, id string, files []Upload) (string, error) {
	var out messageResp
	if err := c.upload(ctx, id, files, &out); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return out.Message, nil
}

func (c *Client) upload(ctx context.Context, id string, files []Upload, out any) error {
	if c.Client == nil {
		return errors.New("transport: http client is nil")
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/"+url.PathEscape(id)+"/upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.roundTrip(req, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.Client == nil {
		return errors.New("transport: http client is nil")
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.roundTrip(req, out)
}

func (c *Client) roundTrip(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
