package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.telegram.org"

// Client represents a Telegram Bot API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Bot API client. An empty baseURL uses the public endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage posts a message to a chat
func (c *Client) SendMessage(ctx context.Context, token string, req SendMessageRequest) error {
	if err := c.call(ctx, token, "sendMessage", req); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// EditMessageText replaces the text of a message sent by the bot
func (c *Client) EditMessageText(ctx context.Context, token string, chatID, messageID int64, text string) error {
	err := c.call(ctx, token, "editMessageText", editMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// AnswerCallbackQuery acknowledges an inline button press
func (c *Client) AnswerCallbackQuery(ctx context.Context, token, callbackID, text string) error {
	err := c.call(ctx, token, "answerCallbackQuery", answerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// call performs a Bot API method call
func (c *Client) call(ctx context.Context, token, method string, payload interface{}) error {
	if token == "" {
		return ErrMissingToken
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Description: string(body)}
	}
	if !envelope.OK {
		return &APIError{StatusCode: resp.StatusCode, Description: envelope.Description}
	}

	return nil
}
