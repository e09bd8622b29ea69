package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"synqAPI/internal/httpclient"
)

const defaultEndpoint = "https://exp.host/--/api/v2/push/send"

// Message is the relay payload: one push to one device token.
type Message struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type ticketResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ExpoService posts push payloads to the Expo relay endpoint.
type ExpoService struct {
	client   *httpclient.Client
	endpoint string
}

// NewExpoService reads EXPO_PUSH_URL, falling back to the public relay.
func NewExpoService(client *httpclient.Client) *ExpoService {
	endpoint := os.Getenv("EXPO_PUSH_URL")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	log.Printf("Expo push relay endpoint: %s", endpoint)
	return &ExpoService{client: client, endpoint: endpoint}
}

func NewExpoServiceWithEndpoint(client *httpclient.Client, endpoint string) *ExpoService {
	return &ExpoService{client: client, endpoint: endpoint}
}

// Send posts one message. Delivery is best effort: callers log the returned
// error and move on, they never retry a failed push themselves.
func (s *ExpoService) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return nil
	}
	if msg.Sound == "" {
		msg.Sound = "default"
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push relay call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push relay returned %d: %s", resp.StatusCode, body)
	}

	var ticket ticketResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return fmt.Errorf("decode push ticket: %w", err)
	}
	if len(ticket.Errors) > 0 {
		return fmt.Errorf("push relay error %s: %s", ticket.Errors[0].Code, ticket.Errors[0].Message)
	}
	if ticket.Data.Status == "error" {
		return fmt.Errorf("push rejected: %s", ticket.Data.Message)
	}
	return nil
}
