// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package modelserver implements the vision-model capabilities (face
// detection, feature extraction, sequence classification) against a model
// server that hosts the pre-trained networks behind a small JSON/HTTP API.
//
// The three endpoints mirror the capability interfaces one to one:
//
//	POST {base}/v1/faces:detect       {"image_b64": ...}   -> {"detections": [{"box": [x,y,w,h], "confidence": c}, ...]}
//	POST {base}/v1/features:extract   {"pixels": [...]}    -> {"vector": [...]}
//	POST {base}/v1/sequence:classify  {"sequence": [[...]]} -> {"probability": p}
//
// One Client implements all three interfaces; the server holds the model
// weights and is the single process-wide binding for vision inference.
package modelserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"time"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// Client talks to the vision model server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	featureDim int
	httpClient *http.Client
}

// NewClient builds a model-server client.
//
// Inputs:
//   - baseURL: The server's base URL, without a trailing slash.
//   - featureDim: The dimensionality of the feature extractor's output.
//   - timeout: Per-request timeout applied to every inference call.
func NewClient(baseURL string, featureDim int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		featureDim: featureDim,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	ImageB64 string `json:"image_b64"`
}

type detectResponse struct {
	Detections []struct {
		Box        [4]int  `json:"box"`
		Confidence float64 `json:"confidence"`
	} `json:"detections"`
}

type extractRequest struct {
	Pixels []float32 `json:"pixels"`
}

type extractResponse struct {
	Vector []float32 `json:"vector"`
}

type classifyRequest struct {
	Sequence [][]float32 `json:"sequence"`
}

type classifyResponse struct {
	Probability float64 `json:"probability"`
}

// Detect implements services.FaceDetector. The frame is JPEG-encoded and sent
// to the detector endpoint; boxes come back as (x, y, w, h) in frame
// coordinates.
func (c *Client) Detect(ctx context.Context, img image.Image) ([]services.Detection, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	var resp detectResponse
	err := c.post(ctx, "/v1/faces:detect", &detectRequest{
		ImageB64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]services.Detection, 0, len(resp.Detections))
	for _, d := range resp.Detections {
		out = append(out, services.Detection{
			Box:        image.Rect(d.Box[0], d.Box[1], d.Box[0]+d.Box[2], d.Box[1]+d.Box[3]),
			Confidence: d.Confidence,
		})
	}
	return out, nil
}

// Extract implements services.FeatureExtractor.
func (c *Client) Extract(ctx context.Context, pixels []float32) (model.FeatureVector, error) {
	var resp extractResponse
	if err := c.post(ctx, "/v1/features:extract", &extractRequest{Pixels: pixels}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Vector) != c.featureDim {
		return nil, fmt.Errorf("feature extractor returned %d values, expected %d", len(resp.Vector), c.featureDim)
	}
	return model.FeatureVector(resp.Vector), nil
}

// Dim implements services.FeatureExtractor.
func (c *Client) Dim() int {
	return c.featureDim
}

// Predict implements services.SequenceClassifier.
func (c *Client) Predict(ctx context.Context, sequence *model.FeatureSequence) (float64, error) {
	req := &classifyRequest{Sequence: make([][]float32, 0, sequence.Len())}
	for _, v := range sequence.Vectors {
		req.Sequence = append(req.Sequence, v)
	}
	var resp classifyResponse
	if err := c.post(ctx, "/v1/sequence:classify", req, &resp); err != nil {
		return 0, err
	}
	return resp.Probability, nil
}

// post sends a JSON request to the model server and decodes the JSON reply.
func (c *Client) post(ctx context.Context, path string, in interface{}, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("model server %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
