package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// imageEnvelope is the body of GET /visualizations/heatmap.
// Image carries either a base64 data URI or a URL to fetch.
type imageEnvelope struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
	Error   string `json:"error"`
}

// Heatmap fetches the traffic heatmap image.
// The backend renders it on demand and answers with a JSON envelope whose
// image field is usually an inline "data:image/png;base64," URI; older
// backends return a URL instead, which is then fetched as a second request.
func (c *Client) Heatmap(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, "/visualizations/heatmap")
	if err != nil {
		return nil, fmt.Errorf("failed to request heatmap: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.readAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read heatmap response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, body)
	}

	var env imageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode heatmap response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("heatmap unavailable: %s", env.Error)
	}
	if env.Image == "" {
		return nil, ErrNoImage
	}

	if strings.HasPrefix(env.Image, "data:") {
		return decodeDataURI(env.Image)
	}

	// The image field is a URL relative to the backend.
	return c.fetchImage(ctx, env.Image)
}

// Infographic fetches the comprehensive infographic image.
func (c *Client) Infographic(ctx context.Context) ([]byte, error) {
	return c.fetchImage(ctx, "/visualizations/infographic")
}

// SpeedDistribution fetches the speed distribution chart image.
func (c *Client) SpeedDistribution(ctx context.Context) ([]byte, error) {
	return c.fetchImage(ctx, "/visualizations/speed-distribution")
}

// fetchImage fetches a binary image body from the given path.
// The backend serves these endpoints as image bytes when the file exists,
// but falls back to a 200 JSON error envelope when it does not, so the
// content type decides how the body is interpreted.
func (c *Client) fetchImage(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to request image %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := c.readAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, body)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var env imageEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to decode image envelope for %s: %w", path, err)
		}
		return nil, fmt.Errorf("image unavailable: %s", env.Error)
	}

	if len(body) == 0 {
		return nil, ErrNoImage
	}

	return body, nil
}

// decodeDataURI decodes a "data:<mime>;base64,<payload>" URI into raw bytes.
func decodeDataURI(uri string) ([]byte, error) {
	_, payload, found := strings.Cut(uri, ";base64,")
	if !found {
		return nil, fmt.Errorf("unsupported data URI encoding: %q", truncate(uri, 40))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data URI: %w", err)
	}

	return data, nil
}

// truncate shortens s for inclusion in error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
