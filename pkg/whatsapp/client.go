package whatsapp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a WhatsApp HTTP gateway. Delivery is one-way: the
// caller hands over a channel identifier and message text and only
// learns success or failure.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	Path       string
	HTTPClient *http.Client
}

type SendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type SendMessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, username, password, path string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Path:     path,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Group channels already carry a suffix; bare numbers in local 08xx
// form are normalized to the international format the gateway expects.
func (c *Client) normalizeChannel(channel string) string {
	if strings.Contains(channel, "@") {
		return channel
	}
	if strings.HasPrefix(channel, "08") {
		channel = "628" + channel[2:]
	}
	return channel + "@s.whatsapp.net"
}

func (c *Client) SendMessage(channel, message string) (*SendMessageResponse, error) {
	requestData := SendMessageRequest{
		Phone:   c.normalizeChannel(channel),
		Message: message,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/%s/send/message", c.BaseURL, c.Path)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Success {
		return &response, fmt.Errorf("gateway rejected message: %s", response.Message)
	}

	return &response, nil
}

// SendTextMessage delivers a plain text message and discards the
// gateway payload.
func (c *Client) SendTextMessage(channel, message string) error {
	_, err := c.SendMessage(channel, message)
	return err
}
