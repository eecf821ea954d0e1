// Package stems is a client for the stem-separation service: it submits an
// audio file and returns per-stem download links with quality metrics.
package stems

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Stem is one separated component of a mix.
type Stem struct {
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	QualityScore     float64 `json:"quality_score"`
	Volume           float64 `json:"volume"`
	DownloadURL      string  `json:"download_url"`
	RMSEnergy        float64 `json:"rms_energy"`
	SpectralCentroid float64 `json:"spectral_centroid"`
	FileSizeMB       float64 `json:"file_size_mb"`
}

// SeparationResult is the service response for one separation job.
type SeparationResult struct {
	Success               bool               `json:"success"`
	Stems                 []Stem             `json:"stems"`
	SeparationMetrics     map[string]float64 `json:"separation_metrics,omitempty"`
	ProcessingTimeSeconds float64            `json:"processing_time_seconds"`
}

// Client talks to one stem-separation service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL. Separation jobs can
// run for minutes, so the default timeout is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// SetHTTPClient overrides the HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// Separate uploads the audio body under filename and returns the separated
// stems.
func (c *Client) Separate(ctx context.Context, filename string, audio io.Reader) (*SeparationResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := c.baseURL + "/api/research/stem-separation/separate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stem separation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stem separation: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result SeparationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("stem separation: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("stem separation: service reported failure")
	}
	return &result, nil
}
