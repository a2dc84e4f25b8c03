package face

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Comparison is the raw verdict from the face-recognition model.
type Comparison struct {
	Verified  bool    `json:"verified"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

// Client calls the face recognition microservice.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// NewClient creates a client. When skip is set the client returns mock
// results without touching the network; useful for local development.
func NewClient(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // face processing can take time
		},
	}
}

// Compare sends a reference image and a probe image for 1:1 verification.
func (c *Client) Compare(ctx context.Context, ref, probe []byte) (Comparison, error) {
	if c.Skip {
		return Comparison{Verified: true, Distance: 0.3, Threshold: 0.5}, nil
	}
	if len(ref) == 0 || len(probe) == 0 {
		return Comparison{}, fmt.Errorf("both images required")
	}

	body, _ := json.Marshal(map[string]string{
		"image_base64_1": base64.StdEncoding.EncodeToString(ref),
		"image_base64_2": base64.StdEncoding.EncodeToString(probe),
	})
	out, err := c.post(ctx, "/compare", body)
	if err != nil {
		return Comparison{}, err
	}

	var res Comparison
	if err := json.Unmarshal(out, &res); err != nil {
		return Comparison{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return res, nil
}

// Enroll registers a user's reference image with the model gallery so
// subsequent comparisons have an embedding to match against.
func (c *Client) Enroll(ctx context.Context, userID string, img []byte) error {
	if c.Skip {
		return nil
	}
	body, _ := json.Marshal(map[string]string{
		"user_id":      userID,
		"image_base64": base64.StdEncoding.EncodeToString(img),
	})
	_, err := c.post(ctx, "/enroll", body)
	return err
}

// Health checks if the face service is available.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("face service error %s: %s", resp.Status, string(out))
	}
	return out, nil
}
