package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/comigor/rahagir-go/internal/config"
)

// StatusSuccess is the response status that selects the success path.
const StatusSuccess = "Success"

// Request is the body of a plan_trip call.
type Request struct {
	RawUserInput string `json:"raw_user_input"`
	UserID       string `json:"user_id"`
}

// Response is the recognized subset of a plan_trip reply. Every field is a
// Text so that an unexpected JSON type never fails the decode.
type Response struct {
	Status  Text `json:"status"`
	Message Text `json:"message"`
	Detail  Text `json:"detail"`
	TripID  Text `json:"trip_id,omitempty"`
}

// Err returns an *ApplicationError unless the response reports success.
// Only the JSON string "Success" counts; any other value, of any type, is an
// error status.
func (r *Response) Err() error {
	if r.Status == StatusSuccess {
		return nil
	}
	return &ApplicationError{Status: string(r.Status), Detail: string(r.Detail)}
}

// Text accepts either a JSON string or any other JSON value, which is kept
// as its raw text. null decodes to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}
	if string(b) == "null" {
		*t = ""
		return nil
	}
	*t = Text(b)
	return nil
}

// decodeResponse parses body as exactly one JSON object.
func decodeResponse(body []byte) (*Response, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("response is not a JSON object: %.32s", trimmed)
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Client is the subset of the planner API used by the chat widget; it is easy to mock in tests.
type Client interface {
	PlanTrip(ctx context.Context, req Request) (*Response, error)
}

// HTTPClient calls the planner over HTTP.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a new HTTPClient
func NewHTTPClient(cfg config.BackendConfig) *HTTPClient {
	return &HTTPClient{
		url:    strings.TrimRight(cfg.BaseURL, "/") + cfg.Path,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// PlanTrip posts req and decodes the reply. Every failure to obtain a decoded
// 2xx reply is returned as a *TransportError.
func (c *HTTPClient) PlanTrip(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &TransportError{Op: "encode", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "status", StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", StatusCode: resp.StatusCode, Err: err}
	}
	out, err := decodeResponse(body)
	if err != nil {
		return nil, &TransportError{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}
	return out, nil
}
