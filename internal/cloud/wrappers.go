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

// Package cloud provides configuration loading and external-service plumbing.
// This file implements a decorator around the Generative AI client that adds
// rate limiting and retries. Vertex AI enforces per-minute quotas, and the
// narrative pipeline can issue a burst of summarization calls (one for the
// transcript plus one per reported article), so the wrapper keeps those
// bursts inside quota instead of surfacing 429s as pipeline failures.
package cloud

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// maxGenerateRetries bounds the recursive retry of transient generation
// failures before the error is handed back to the caller.
const maxGenerateRetries = 3

type retryCountKey struct{}

// QuotaAwareGenerativeAIModel wraps a generative model handle together with
// its generation settings and a rate limiter.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               rate.Limiter
}

// NewQuotaAwareModel builds a rate-limited model wrapper.
//
// Inputs:
//   - config: The generation settings applied to every call.
//   - name: The model name (e.g., "gemini-2.0-flash").
//   - handle: The models handle from the GenAI client.
//   - requestsPerSecond: The maximum sustained request rate.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: The wrapped model.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               *rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateContent calls the underlying model, waiting out the rate limiter
// and retrying transient failures up to maxGenerateRetries times.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if !q.RateLimit.Allow() {
		if err := q.RateLimit.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
	if err != nil {
		retryCount, ok := ctx.Value(retryCountKey{}).(int)
		if !ok {
			retryCount = 0
		}
		if retryCount >= maxGenerateRetries {
			return nil, errors.New("failed generation on max retries")
		}
		time.Sleep(time.Second)
		return q.GenerateContent(context.WithValue(ctx, retryCountKey{}, retryCount+1), content)
	}
	return resp, nil
}

// GenerateText is a convenience wrapper for text-in, text-out prompts. It
// sends the prompt as a single user message and concatenates the text parts
// of the first candidate.
func (q *QuotaAwareGenerativeAIModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := q.GenerateContent(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty generation response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
