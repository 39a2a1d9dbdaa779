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

// Package main contains the setup and initialization logic for the application's
// state. This file is responsible for creating and managing a centralized state
// manager that holds all shared dependencies: the configuration, the external
// inference clients, and the two analysis workflows.
//
// Every inference capability is bound exactly once here, at process start, and
// then shared read-only by all requests. There is no global mutation after
// InitState returns.
//
// Functions:
//   - SetupOS: Configures the environment variables the configuration loader
//     uses to find the correct TOML files.
//   - GetConfig: A singleton function that loads the application's
//     configuration from TOML files.
//   - InitState: Binds all inference capabilities, builds the two workflows,
//     and wires them into the shared AnalysisService.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-media-verify/internal/cloud"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services/modelserver"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services/newsapi"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services/whisper"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/workflow"
)

// Logical model names expected in the agent_models configuration table.
const (
	summarizerModelName = "summarizer"
	keywordsModelName   = "keyword-extractor"
)

// StateManager holds all the shared dependencies for the application, acting
// as a centralized container for service clients and the analysis workflows.
type StateManager struct {
	config          *cloud.Config
	cloud           *cloud.ServiceClients
	analysisService *workflow.AnalysisService
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the environment variables that the configuration loader uses to
// find the correct TOML files: the config directory and the runtime name
// (e.g., "local", "test", "prod") whose file overrides the base settings.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration,
// loaded from the TOML files on first use and cached afterwards.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// InitState initializes the entire application state: secrets, cloud clients,
// the per-capability bindings, and the two analysis workflows. Configuration
// problems panic here, before the server starts accepting uploads.
func InitState(ctx context.Context) {
	config := GetConfig()

	// The news-search API key is required before anything else runs.
	newsAPIKey, err := cloud.LoadSecrets()
	if err != nil {
		panic(services.Wrap(services.ErrConfiguration, "unable to load secrets", err))
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// The vision model server hosts the face detector, the feature extractor,
	// and the sequence classifier behind one base URL.
	inferenceTimeout := time.Duration(config.Inference.TimeoutInSeconds) * time.Second
	visionClient := modelserver.NewClient(config.Inference.ModelServerURL, config.Inference.FeatureDim, inferenceTimeout)

	speechToText := whisper.NewClient(config.Inference.WhisperURL, inferenceTimeout)

	newsTimeout := time.Duration(config.News.TimeoutInSeconds) * time.Second
	searcher, err := newsapi.NewClient(config.News.BaseURL, newsAPIKey, config.News.SortBy, newsTimeout)
	if err != nil {
		panic(err)
	}

	summarizer := &services.GenAISummarizer{Model: cloudClients.AgentModels[summarizerModelName]}
	keywords := &services.GenAIKeywordExtractor{Model: cloudClients.AgentModels[keywordsModelName]}

	embedder, err := buildEmbedder(config, cloudClients, newsTimeout)
	if err != nil {
		panic(err)
	}

	deepfake := workflow.NewDeepfakeWorkflow(config, visionClient, visionClient, visionClient)
	narrative := workflow.NewNarrativeWorkflow(config, speechToText, keywords, searcher, summarizer, embedder)
	state.analysisService = workflow.NewAnalysisService(deepfake, narrative)
}

// buildEmbedder selects the text-embedding provider. With the vertex provider,
// embedding.model is a logical key into the embedding_models table; with the
// cohere provider it is the Cohere model identifier and the API key must be
// present in the environment.
func buildEmbedder(config *cloud.Config, cloudClients *cloud.ServiceClients, timeout time.Duration) (services.TextEmbedder, error) {
	switch config.Embedding.Provider {
	case "vertex":
		models, ok := cloudClients.EmbeddingModels[config.Embedding.Model]
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration,
				"embedding.model does not name a configured embedding model: "+config.Embedding.Model, nil)
		}
		return &services.VertexEmbedder{
			Models:    models,
			ModelName: config.EmbeddingModels[config.Embedding.Model].Model,
		}, nil
	case "cohere":
		return services.NewCohereEmbedder(os.Getenv(cloud.EnvCohereAPIKey), config.Embedding.Model, timeout)
	default:
		return nil, services.Wrap(services.ErrConfiguration,
			"unknown embedding provider: "+config.Embedding.Provider, nil)
	}
}
