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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, along with the client container and model wrappers
// used to talk to external services.
//
// This file centralizes all configuration structs. The numeric contracts of
// the two analysis pipelines — frame sampling interval, sequence length,
// crop size, result caps — live here so call sites never carry magic numbers.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables content blocking for the text models. The
// transcripts under analysis routinely describe violence or politics, and a
// blocked summarization would abort an otherwise healthy pipeline run.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Analysis holds the fixed-shape numeric contracts of the deepfake pipeline
// and the shared knobs of the narrative pipeline.
type Analysis struct {
	FrameInterval  int `toml:"frame_interval"`  // Keep every k-th decoded frame (default 15).
	SequenceLength int `toml:"sequence_length"` // Fixed feature-sequence length L required by the classifier (default 108).
	CropSize       int `toml:"crop_size"`       // Square edge size face crops are resized to before feature extraction (default 224).
	KeywordCount   int `toml:"keyword_count"`   // Maximum number of keywords extracted from a transcript (default 5).
	TopK           int `toml:"top_k"`           // Number of top-ranked articles kept in the report (default 5).
}

// Summaries holds the per-call-site summary length targets. The transcript and
// the candidate articles are condensed with different bounds.
type Summaries struct {
	TranscriptMaxLength int `toml:"transcript_max_length"` // default 70
	TranscriptMinLength int `toml:"transcript_min_length"` // default 50
	ArticleMaxLength    int `toml:"article_max_length"`    // default 100
	ArticleMinLength    int `toml:"article_min_length"`    // default 100
}

// News configures the news-search client and the article retriever.
type News struct {
	BaseURL          string `toml:"base_url"`           // The news-search endpoint (e.g., https://newsapi.org/v2/everything).
	MaxResults       int    `toml:"max_results"`        // Cap on total articles collected across pages (default 50).
	PageSize         int    `toml:"page_size"`          // Per-page cap requested from the API (default 100; also the exhaustion signal).
	SortBy           string `toml:"sort_by"`            // Sort order requested from the API (default "relevance").
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Per-request HTTP timeout. The upstream has none; a hung request must not block the pipeline forever.
}

// Inference configures the HTTP model server hosting the vision models and
// the speech-to-text service.
type Inference struct {
	ModelServerURL   string `toml:"model_server_url"`   // Base URL of the vision model server (face detector, feature extractor, classifier).
	WhisperURL       string `toml:"whisper_url"`        // Base URL of the speech-to-text service.
	FeatureDim       int    `toml:"feature_dim"`        // Dimensionality D of feature vectors (default 2048).
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Per-request HTTP timeout for inference calls.
}

// Embedding selects the production text-embedding provider.
type Embedding struct {
	Provider string `toml:"provider"` // "vertex" or "cohere".
	Model    string `toml:"model"`    // Provider-specific embedding model name.
}

// VertexAiEmbeddingModel represents the configuration for a Vertex AI
// embedding model.
type VertexAiEmbeddingModel struct {
	Model                string `toml:"model"`
	MaxRequestsPerMinute int    `toml:"max_requests_per_minute"`
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"` // Requests per second.
}

// Config is the top-level configuration for the application, loaded from TOML
// files with an environment-specific overlay.
type Config struct {
	Application struct {
		Name            string `toml:"name"`
		GoogleProjectId string `toml:"google_project_id"`
		GoogleLocation  string `toml:"location"`
		ThreadPoolSize  int    `toml:"thread_pool_size"` // Worker count for parallel per-crop feature extraction.
	} `toml:"application"`
	Analysis        Analysis                          `toml:"analysis"`
	Summaries       Summaries                         `toml:"summaries"`
	News            News                              `toml:"news"`
	Inference       Inference                         `toml:"inference"`
	Embedding       Embedding                         `toml:"embedding"`
	EmbeddingModels map[string]VertexAiEmbeddingModel `toml:"embedding_models"`
	AgentModels     map[string]VertexAiLLMModel       `toml:"agent_models"`
}

// NewConfig creates a Config with its map fields initialized so the TOML
// decoder never writes into a nil map.
func NewConfig() *Config {
	return &Config{
		EmbeddingModels: make(map[string]VertexAiEmbeddingModel),
		AgentModels:     make(map[string]VertexAiLLMModel),
	}
}
