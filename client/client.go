package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doctor-booking/apperr"
	"doctor-booking/doctor"
	"doctor-booking/slot"

	"github.com/google/uuid"
)

// Client talks to the doctor-booking HTTP API the way the admin dashboard does.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = DefaultHTTPClient()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

type envelope struct {
	Status   int             `json:"status"`
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return statusError(resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return statusError(resp.StatusCode, msg)
	}

	if out == nil || len(env.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("decode response payload: %w", err)
	}
	return nil
}

func statusError(status int, msg string) error {
	switch status {
	case http.StatusBadRequest:
		return apperr.Validation(msg)
	case http.StatusNotFound:
		return apperr.NotFound(msg)
	default:
		return apperr.Storage(msg, fmt.Errorf("unexpected status %d", status))
	}
}

func (c *Client) ListDoctors(ctx context.Context) ([]doctor.Doctor, error) {
	var out struct {
		Doctors []doctor.Doctor `json:"doctors"`
	}
	if err := c.do(ctx, http.MethodGet, "/doctors", nil, &out); err != nil {
		return nil, err
	}
	return out.Doctors, nil
}

func (c *Client) CreateDoctor(ctx context.Context, name, specialty string) (*doctor.Doctor, error) {
	body := map[string]string{"name": name, "specialty": specialty}
	var d doctor.Doctor
	if err := c.do(ctx, http.MethodPost, "/doctors", body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) DeleteDoctor(ctx context.Context, id uuid.UUID) (*doctor.DeleteResult, error) {
	var res doctor.DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/doctors/"+id.String(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListSlots(ctx context.Context, doctorID uuid.UUID) ([]slot.Slot, error) {
	var out struct {
		Slots []slot.Slot `json:"slots"`
	}
	if err := c.do(ctx, http.MethodGet, "/doctors/"+doctorID.String()+"/slots", nil, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

func (c *Client) CreateSlot(ctx context.Context, doctorID uuid.UUID, instant time.Time) (*slot.Slot, error) {
	body := map[string]string{
		"doctorId": doctorID.String(),
		"time":     instant.UTC().Format(time.RFC3339),
	}
	var s slot.Slot
	if err := c.do(ctx, http.MethodPost, "/slots", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSlotsForDate uses the server's atomic bulk endpoint: either every
// slot is created or none is.
func (c *Client) CreateSlotsForDate(ctx context.Context, doctorID uuid.UUID, date string, times []string) ([]slot.Slot, error) {
	body := map[string]any{"date": date, "times": times}
	var out struct {
		Slots []slot.Slot `json:"slots"`
	}
	if err := c.do(ctx, http.MethodPost, "/doctors/"+doctorID.String()+"/slots", body, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}
