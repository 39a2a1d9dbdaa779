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
// This file initializes and holds the client objects the application needs to
// talk to external services. It acts as a dependency injection container: the
// `ServiceClients` struct is created once at startup and passed to whatever
// needs a client, so there is no implicit global mutation after init.
package cloud

import (
	"context"

	"google.golang.org/genai"
)

// ServiceClients is the central container for all external-service clients.
type ServiceClients struct {
	GenAIClient     *genai.Client                           // Client for Google's Generative AI services (Vertex AI).
	EmbeddingModels map[string]*genai.Models                // Configured embedding model handles, keyed by logical name.
	AgentModels     map[string]*QuotaAwareGenerativeAIModel // Rate-limited text models, keyed by logical name.
}

// NewCloudServiceClients initializes every external client the application
// needs, based on the provided configuration.
//
// Inputs:
//   - ctx: The root context managing the client lifecycles.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The fully initialized container.
//   - error: An error if any client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}

	embeddingModels := make(map[string]*genai.Models)
	for embKey := range config.EmbeddingModels {
		embeddingModels[embKey] = gc.Models
	}

	// Wrap each configured text model with its generation settings and rate
	// limit so callers never talk to the raw client directly.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]
		generateConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
		}
		agentModels[amKey] = NewQuotaAwareModel(generateConfig, values.Model, gc.Models, values.RateLimit)
	}

	return &ServiceClients{
		GenAIClient:     gc,
		EmbeddingModels: embeddingModels,
		AgentModels:     agentModels,
	}, nil
}
