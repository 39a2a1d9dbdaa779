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

// This file provides deterministic in-memory stubs for every remote inference
// capability. Each stub delegates to an optional function field, so a test
// configures exactly the behavior it needs and everything else returns a
// benign zero result.
package test

import (
	"context"
	"image"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// StubFaceDetector implements services.FaceDetector.
type StubFaceDetector struct {
	DetectFn func(img image.Image) ([]services.Detection, error)
}

func (s *StubFaceDetector) Detect(_ context.Context, img image.Image) ([]services.Detection, error) {
	if s.DetectFn == nil {
		return nil, nil
	}
	return s.DetectFn(img)
}

// StubFeatureExtractor implements services.FeatureExtractor. Extract returns a
// constant vector of the configured dimensionality unless ExtractFn overrides
// it.
type StubFeatureExtractor struct {
	Dimension int
	ExtractFn func(pixels []float32) (model.FeatureVector, error)
}

func (s *StubFeatureExtractor) Extract(_ context.Context, pixels []float32) (model.FeatureVector, error) {
	if s.ExtractFn != nil {
		return s.ExtractFn(pixels)
	}
	v := make(model.FeatureVector, s.Dimension)
	for i := range v {
		v[i] = 1
	}
	return v, nil
}

func (s *StubFeatureExtractor) Dim() int { return s.Dimension }

// StubSequenceClassifier implements services.SequenceClassifier, returning a
// fixed probability unless PredictFn overrides it.
type StubSequenceClassifier struct {
	Probability float64
	PredictFn   func(sequence *model.FeatureSequence) (float64, error)
}

func (s *StubSequenceClassifier) Predict(_ context.Context, sequence *model.FeatureSequence) (float64, error) {
	if s.PredictFn != nil {
		return s.PredictFn(sequence)
	}
	return s.Probability, nil
}

// StubSpeechToText implements services.SpeechToText.
type StubSpeechToText struct {
	Text         string
	TranscribeFn func(audioPath string) (string, error)
}

func (s *StubSpeechToText) Transcribe(_ context.Context, audioPath string) (string, error) {
	if s.TranscribeFn != nil {
		return s.TranscribeFn(audioPath)
	}
	return s.Text, nil
}

// StubKeywordExtractor implements services.KeywordExtractor.
type StubKeywordExtractor struct {
	Keywords  []string
	ExtractFn func(text string, topN int) ([]string, error)
}

func (s *StubKeywordExtractor) Extract(_ context.Context, text string, topN int) ([]string, error) {
	if s.ExtractFn != nil {
		return s.ExtractFn(text, topN)
	}
	if len(s.Keywords) > topN {
		return s.Keywords[:topN], nil
	}
	return s.Keywords, nil
}

// StubSummarizer implements services.Summarizer. By default it echoes the
// input, which keeps summary-dependent assertions easy to state.
type StubSummarizer struct {
	SummarizeFn func(text string, maxLength, minLength int) (string, error)
}

func (s *StubSummarizer) Summarize(_ context.Context, text string, maxLength, minLength int) (string, error) {
	if s.SummarizeFn != nil {
		return s.SummarizeFn(text, maxLength, minLength)
	}
	return text, nil
}

// StubTextEmbedder implements services.TextEmbedder. EmbedFn decides the
// vector per text; without it every text embeds to the same unit vector, which
// ranks everything as equally similar.
type StubTextEmbedder struct {
	EmbedFn func(text string) ([]float32, error)
}

func (s *StubTextEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.EmbedFn != nil {
		return s.EmbedFn(text)
	}
	return []float32{1, 0, 0}, nil
}

// StubNewsSearcher implements services.NewsSearcher.
type StubNewsSearcher struct {
	Articles []*model.Article
	SearchFn func(query string, pageSize, page int) ([]*model.Article, error)
}

func (s *StubNewsSearcher) Search(_ context.Context, query string, pageSize, page int) ([]*model.Article, error) {
	if s.SearchFn != nil {
		return s.SearchFn(query, pageSize, page)
	}
	if len(s.Articles) > pageSize {
		return s.Articles[:pageSize], nil
	}
	return s.Articles, nil
}

// Compile-time checks that every stub satisfies its capability interface.
var (
	_ services.FaceDetector       = (*StubFaceDetector)(nil)
	_ services.FeatureExtractor   = (*StubFeatureExtractor)(nil)
	_ services.SequenceClassifier = (*StubSequenceClassifier)(nil)
	_ services.SpeechToText       = (*StubSpeechToText)(nil)
	_ services.KeywordExtractor   = (*StubKeywordExtractor)(nil)
	_ services.Summarizer         = (*StubSummarizer)(nil)
	_ services.TextEmbedder       = (*StubTextEmbedder)(nil)
	_ services.NewsSearcher       = (*StubNewsSearcher)(nil)
)
