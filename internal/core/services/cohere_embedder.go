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

package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// CohereEmbedder implements TextEmbedder on the Cohere v2 embed endpoint.
// It is the alternative embedding provider, selected with
// embedding.provider = "cohere" in the configuration.
type CohereEmbedder struct {
	client *cohereclient.Client
	model  string
}

// NewCohereEmbedder builds the embedder. The API key comes from the
// COHERE_API_KEY secret; a missing key is a configuration error.
func NewCohereEmbedder(apiKey string, model string, timeout time.Duration) (*CohereEmbedder, error) {
	if apiKey == "" {
		return nil, Wrap(ErrConfiguration, "cohere api key is not set", nil)
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	return &CohereEmbedder{client: client, model: model}, nil
}

// Embed returns the float embedding for a single text.
func (c *CohereEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          []string{text},
		Model:          c.model,
		InputType:      cohere.EmbedInputTypeSearchDocument,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Embeddings == nil || len(resp.Embeddings.Float) == 0 {
		return nil, fmt.Errorf("cohere embed response for model %s contained no float embeddings", c.model)
	}

	vector := make([]float32, len(resp.Embeddings.Float[0]))
	for i, v := range resp.Embeddings.Float[0] {
		vector[i] = float32(v)
	}
	return vector, nil
}

var _ TextEmbedder = (*CohereEmbedder)(nil)
