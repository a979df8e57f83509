// Package renderer defines the contract with the external rendering
// collaborator and its HTTP implementation. The renderer receives a fully
// resolved spec and must leave a playable file at OutputPath on success;
// on failure it must not leave a partial file claimed as valid.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ScriptedSpec is a resolved scripted job.
type ScriptedSpec struct {
	JobID      string `json:"job_id"`
	Template   string `json:"template"`
	Script     string `json:"script"`
	Voice      string `json:"voice"`
	OutputPath string `json:"output_path"`
}

// ClipFile is one materialized timeline input.
type ClipFile struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
}

// TimelineSpec is a resolved timeline job: ordered local clip files to be
// concatenated into a single artifact.
type TimelineSpec struct {
	JobID      string     `json:"job_id"`
	Mode       string     `json:"mode"`
	Clips      []ClipFile `json:"clips"`
	OutputPath string     `json:"output_path"`
}

// ModeConcat is the only composition mode the pipeline requests today.
const ModeConcat = "concat"

type Client interface {
	RenderScripted(ctx context.Context, spec ScriptedSpec) error
	RenderTimeline(ctx context.Context, spec TimelineSpec) error
}

// HTTPClient talks to the renderer service. Renders can take minutes, so
// the client timeout is generous; per-job cancellation flows through ctx.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

func (c *HTTPClient) RenderScripted(ctx context.Context, spec ScriptedSpec) error {
	return c.post(ctx, "/render/scripted", spec)
}

func (c *HTTPClient) RenderTimeline(ctx context.Context, spec TimelineSpec) error {
	return c.post(ctx, "/render/timeline", spec)
}

func (c *HTTPClient) post(ctx context.Context, path string, spec any) error {
	body, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("renderer http %d", res.StatusCode)
	}
	return nil
}
