// Package mlclient talks to the external Lacteva inference service.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/keerthana1830/Lacteva/models"
)

// Client is a thin HTTP client for the inference service. Training requests
// are given a much longer timeout than predictions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	trainer    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		trainer:    &http.Client{Timeout: 10 * time.Minute},
	}
}

// Predict sends a feature vector to /predict and returns the inference result.
func (c *Client) Predict(ctx context.Context, features []float64, deviceID string, timestampMS int64) (*models.PredictResponse, error) {
	body, err := json.Marshal(models.PredictRequest{
		Features:  features,
		DeviceID:  deviceID,
		Timestamp: timestampMS,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mlclient: predict request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mlclient: predict returned %d: %s", resp.StatusCode, string(raw))
	}

	var out models.PredictResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("mlclient: bad predict response: %w", err)
	}
	return &out, nil
}

// Health checks the service's /health endpoint.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/health")
}

// ModelInfo fetches model metadata. The service returns 404 when no model
// metadata has been loaded.
func (c *Client) ModelInfo(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/model-info")
}

func (c *Client) getJSON(ctx context.Context, path string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mlclient: %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mlclient: %s returned %d: %s", path, resp.StatusCode, string(raw))
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("mlclient: bad %s response: %w", path, err)
	}
	return out, nil
}

// Retrain uploads exported readings as CSV to the training endpoint.
func (c *Client) Retrain(ctx context.Context, csvData []byte) (map[string]interface{}, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("csv_file", "readings.csv")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, bytes.NewReader(csvData)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/train", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.trainer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mlclient: train request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mlclient: train returned %d: %s", resp.StatusCode, string(raw))
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("mlclient: bad train response: %w", err)
	}
	return out, nil
}
