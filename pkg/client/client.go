// Package client provides a Go client for the ContentForge API: it submits
// generation requests and drives the submit -> poll -> done lifecycle.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contentforge/contentforge/pkg/models"
)

var (
	// ErrPollTimeout is returned when a job does not reach a terminal state
	// within the configured attempt ceiling.
	ErrPollTimeout = errors.New("polling timed out; check your generation history for the result")

	// ErrJobFailed is returned when the tracked job finishes as failed. The
	// server's error message is included in the wrapping error.
	ErrJobFailed = errors.New("generation failed")
)

const (
	defaultPollInterval     = 3 * time.Second
	defaultMaxAttempts      = 60
	defaultFailureTolerance = 3
)

// APIError is a structured error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to a ContentForge server.
type Client struct {
	// BaseURL is the server root, e.g. "https://api.contentforge.io".
	BaseURL string

	// APIKey is sent as a bearer token on every request.
	APIKey string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// PollInterval is the delay between status polls. Defaults to 3s.
	PollInterval time.Duration

	// MaxAttempts caps the number of status polls before Track gives up
	// with ErrPollTimeout. Defaults to 60 (about 3 minutes).
	MaxAttempts int

	// FailureTolerance is the number of consecutive failed poll requests
	// tolerated before Track surfaces the error. Defaults to 3.
	FailureTolerance int
}

// New returns a Client with default polling settings.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
	}
}

// SubmitInput describes one generation request. InputType selects which of
// the remaining fields are used.
type SubmitInput struct {
	InputType string // "youtube", "audio" or "text"
	InputURL  string // youtube only
	InputText string // text only
	FileName  string // audio only
	FileData  io.Reader
}

// Status is the polled state of a generation job.
type Status struct {
	ID           uuid.UUID              `json:"id"`
	Status       string                 `json:"status"`
	Outputs      *models.ContentOutputs `json:"outputs,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

// Progress is one step of the four-stage progress narrative emitted while
// tracking a job.
type Progress struct {
	Step       int
	Total      int
	Message    string
	Percentage int
}

// Submit sends the input as a single multipart request and returns the
// generation id to poll.
func (c *Client) Submit(ctx context.Context, input SubmitInput) (uuid.UUID, error) {
	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)

	if err := mp.WriteField("input_type", input.InputType); err != nil {
		return uuid.Nil, fmt.Errorf("building request: %w", err)
	}
	switch input.InputType {
	case models.InputTypeYouTube:
		if err := mp.WriteField("input_url", input.InputURL); err != nil {
			return uuid.Nil, fmt.Errorf("building request: %w", err)
		}
	case models.InputTypeText:
		if err := mp.WriteField("input_text", input.InputText); err != nil {
			return uuid.Nil, fmt.Errorf("building request: %w", err)
		}
	case models.InputTypeAudio:
		part, err := mp.CreateFormFile("file", input.FileName)
		if err != nil {
			return uuid.Nil, fmt.Errorf("building request: %w", err)
		}
		if _, err := io.Copy(part, input.FileData); err != nil {
			return uuid.Nil, fmt.Errorf("reading file: %w", err)
		}
	default:
		return uuid.Nil, fmt.Errorf("unsupported input type %q", input.InputType)
	}
	if err := mp.Close(); err != nil {
		return uuid.Nil, fmt.Errorf("building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/generations", &buf)
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Content-Type", mp.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("submitting generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return uuid.Nil, decodeAPIError(resp)
	}

	var envelope struct {
		Data struct {
			GenerationID uuid.UUID `json:"generation_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return uuid.Nil, fmt.Errorf("decoding response: %w", err)
	}
	return envelope.Data.GenerationID, nil
}

// GetStatus fetches the current state of a generation job.
func (c *Client) GetStatus(ctx context.Context, id uuid.UUID) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/generations/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var envelope struct {
		Data Status `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}
	return &envelope.Data, nil
}

// Track polls a job until it reaches a terminal state, invoking onProgress
// (if non-nil) with the progress narrative on each poll. It stops after
// MaxAttempts polls with ErrPollTimeout, after FailureTolerance consecutive
// poll failures with the last poll error, or when ctx is cancelled.
//
// A failed job returns the final Status alongside an error wrapping
// ErrJobFailed that carries the server's error message verbatim.
func (c *Client) Track(ctx context.Context, id uuid.UUID, onProgress func(Progress)) (*Status, error) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	tolerance := c.FailureTolerance
	if tolerance <= 0 {
		tolerance = defaultFailureTolerance
	}

	consecutiveFailures := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := c.GetStatus(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			consecutiveFailures++
			if consecutiveFailures >= tolerance {
				return nil, fmt.Errorf("giving up after %d consecutive poll failures: %w", consecutiveFailures, err)
			}
		} else {
			consecutiveFailures = 0

			switch status.Status {
			case models.JobStatusPending:
				emit(onProgress, Progress{Step: 1, Total: 4, Message: "Queued", Percentage: 25})
			case models.JobStatusProcessing:
				emit(onProgress, Progress{Step: 2, Total: 4, Message: "Generating content", Percentage: 60})
			case models.JobStatusCompleted:
				emit(onProgress, Progress{Step: 4, Total: 4, Message: "Done, redirecting", Percentage: 100})
				return status, nil
			case models.JobStatusFailed:
				msg := status.ErrorMessage
				if msg == "" {
					msg = "unknown error"
				}
				return status, fmt.Errorf("%w: %s", ErrJobFailed, msg)
			}
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	return nil, ErrPollTimeout
}

// SubmitAndTrack submits the input and tracks the resulting job to a
// terminal state.
func (c *Client) SubmitAndTrack(ctx context.Context, input SubmitInput, onProgress func(Progress)) (*Status, error) {
	id, err := c.Submit(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.Track(ctx, id, onProgress)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func emit(fn func(Progress), p Progress) {
	if fn != nil {
		fn(p)
	}
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "UNKNOWN",
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
	}
}
