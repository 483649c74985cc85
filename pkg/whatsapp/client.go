package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	jidSuffix       = "@s.whatsapp.net"
	maxResponseSize = 64 << 10
)

// ErrRejected is returned when the gateway accepted the request but refused to deliver.
var ErrRejected = errors.New("whatsapp gateway rejected message")

// Client talks to a go-whatsapp-web-multidevice style gateway on one device path.
type Client struct {
	baseURL  string
	device   string
	username string
	password string
	http     *http.Client
}

type outgoingMessage struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Delivery is the gateway's answer to a send.
type Delivery struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, username, password, device string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		device:   strings.Trim(device, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NormalizePhone converts local 08xxx numbers to the 628xxx international form.
func NormalizePhone(phone string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	if rest, ok := strings.CutPrefix(phone, "08"); ok {
		return "628" + rest
	}
	return phone
}

func (c *Client) endpoint() string {
	return c.baseURL + "/" + c.device + "/send/message"
}

// SendMessage delivers message to phone through the gateway.
func (c *Client) SendMessage(ctx context.Context, phone, message string) (*Delivery, error) {
	payload, err := json.Marshal(outgoingMessage{Phone: NormalizePhone(phone) + jidSuffix, Message: message})
	if err != nil {
		return nil, fmt.Errorf("whatsapp: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("whatsapp: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var delivery Delivery
	if err := json.Unmarshal(body, &delivery); err != nil {
		return nil, fmt.Errorf("whatsapp: decode response: %w", err)
	}
	if !delivery.Success {
		return &delivery, fmt.Errorf("%w: %s", ErrRejected, delivery.Message)
	}
	return &delivery, nil
}

// SendTextMessage is SendMessage without the delivery receipt.
func (c *Client) SendTextMessage(ctx context.Context, phone, message string) error {
	_, err := c.SendMessage(ctx, phone, message)
	return err
}
