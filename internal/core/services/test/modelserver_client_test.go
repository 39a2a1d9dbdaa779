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

package services_test

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services/modelserver"
	"github.com/stretchr/testify/assert"
)

// TestModelServerDetectBoxConversion verifies that the wire format's
// (x, y, w, h) boxes become image.Rectangle values in frame coordinates.
func TestModelServerDetectBoxConversion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/faces:detect", r.URL.Path)

		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["image_b64"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"detections": [
				{"box": [10, 20, 30, 40], "confidence": 0.91},
				{"box": [0, 0, 5, 5], "confidence": 0.40}
			]
		}`))
	}))
	defer srv.Close()

	client := modelserver.NewClient(srv.URL, 8, time.Second)
	frame := image.NewRGBA(image.Rect(0, 0, 64, 64))

	detections, err := client.Detect(context.Background(), frame)
	assert.NoError(t, err)
	assert.Len(t, detections, 2)
	assert.Equal(t, image.Rect(10, 20, 40, 60), detections[0].Box)
	assert.Equal(t, 0.91, detections[0].Confidence)
	assert.Equal(t, image.Rect(0, 0, 5, 5), detections[1].Box)
}

// TestModelServerExtractRejectsDimensionMismatch verifies the client checks
// the returned vector length against its configured dimensionality.
func TestModelServerExtractRejectsDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/features:extract", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"vector": [1, 2, 3]}`))
	}))
	defer srv.Close()

	client := modelserver.NewClient(srv.URL, 8, time.Second)
	assert.Equal(t, 8, client.Dim())

	vector, err := client.Extract(context.Background(), []float32{0.5, 0.5})
	assert.Nil(t, vector)
	assert.ErrorContains(t, err, "returned 3 values, expected 8")
}

// TestModelServerExtract verifies the happy path returns the server's vector.
func TestModelServerExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"vector": [0.25, -1, 2]}`))
	}))
	defer srv.Close()

	client := modelserver.NewClient(srv.URL, 3, time.Second)
	vector, err := client.Extract(context.Background(), []float32{1, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, model.FeatureVector{0.25, -1, 2}, vector)
}

// TestModelServerPredict verifies the classify endpoint's probability is
// passed through, and that the sequence serializes row by row.
func TestModelServerPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sequence:classify", r.URL.Path)

		var req struct {
			Sequence [][]float32 `json:"sequence"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Sequence, 2)
		assert.Equal(t, []float32{1, 0}, req.Sequence[0])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"probability": 0.73}`))
	}))
	defer srv.Close()

	sequence := model.NewFeatureSequence(2)
	sequence.Append(model.FeatureVector{1, 0})
	sequence.Append(model.FeatureVector{0, 1})

	client := modelserver.NewClient(srv.URL, 2, time.Second)
	probability, err := client.Predict(context.Background(), sequence)
	assert.NoError(t, err)
	assert.Equal(t, 0.73, probability)
}

// TestModelServerErrorStatus verifies a non-2xx reply surfaces as an error on
// every endpoint.
func TestModelServerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := modelserver.NewClient(srv.URL, 4, time.Second)
	_, err := client.Extract(context.Background(), []float32{1})
	assert.ErrorContains(t, err, "status 500")
}
