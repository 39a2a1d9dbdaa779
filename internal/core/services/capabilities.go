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

// Package services defines the capability interfaces consumed by the pipeline
// commands. Every external inference or network function the pipelines depend
// on — face detection, feature extraction, sequence classification, speech to
// text, keyword extraction, summarization, text embedding, and news search —
// is expressed as one small interface here.
//
// The production bindings live in this package and its subpackages
// (modelserver, whisper, newsapi); the test suites substitute deterministic
// stubs. Each binding is constructed once at process start and holds no
// per-invocation state.
package services

import (
	"context"
	"image"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
)

// Detection is a single face detection: a bounding box in frame coordinates
// plus the detector's confidence in [0, 1]. Boxes may extend past the frame
// edges; the face selector clamps them before cropping.
type Detection struct {
	Box        image.Rectangle
	Confidence float64
}

// FaceDetector locates faces in a single frame.
type FaceDetector interface {
	// Detect returns every face found in the image, in detector order. An
	// empty slice means no face was found in this frame — not an error.
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// FeatureExtractor converts one preprocessed face crop into a feature vector
// of fixed dimensionality.
type FeatureExtractor interface {
	// Extract embeds an already resized and value-normalized pixel tensor
	// (RGB interleaved, row-major) and returns its feature vector.
	Extract(ctx context.Context, pixels []float32) (model.FeatureVector, error)

	// Dim returns the dimensionality of the vectors Extract produces. It is
	// also the vector width of the all-padding sequence used when a video
	// yields no faces at all.
	Dim() int
}

// SequenceClassifier scores a fixed-length feature sequence. The returned
// probability is in [0, 1], where values above 0.5 indicate manipulation.
type SequenceClassifier interface {
	Predict(ctx context.Context, sequence *model.FeatureSequence) (float64, error)
}

// SpeechToText transcribes an audio artifact to plain text, best effort, in
// the model's default language.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// KeywordExtractor derives up to topN salient phrases from a text, excluding
// stop words, ordered by the extractor's own relevance ranking.
type KeywordExtractor interface {
	Extract(ctx context.Context, text string, topN int) ([]string, error)
}

// Summarizer produces an abstractive summary of a text within the given
// length bounds. Overlong inputs are the capability's problem to truncate;
// callers pass text through unmodified.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength int, minLength int) (string, error)
}

// TextEmbedder maps a text to a fixed-dimensionality vector whose comparison
// metric is cosine similarity.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewsSearcher fetches one page of news-search results for a query. The
// article retriever command owns pagination and result capping.
type NewsSearcher interface {
	Search(ctx context.Context, query string, pageSize int, page int) ([]*model.Article, error)
}
