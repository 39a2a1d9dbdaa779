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

// Package workflow_test exercises the pipeline orchestrations with stubbed
// capabilities. The stages that shell out to ffmpeg are driven through their
// can't-even-open-the-file paths, which is where the workflow-level error
// policies live.
package workflow_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-media-verify/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func newDeepfakeWorkflow() *workflow.DeepfakeWorkflow {
	extractor := &test.StubFeatureExtractor{Dimension: 8}
	return workflow.NewDeepfakeWorkflow(
		test.NewPipelineConfig(),
		&test.StubFaceDetector{},
		extractor,
		&test.StubSequenceClassifier{Probability: 0.9})
}

func newNarrativeWorkflow() *workflow.NarrativeWorkflow {
	return workflow.NewNarrativeWorkflow(
		test.NewPipelineConfig(),
		&test.StubSpeechToText{Text: "a transcript"},
		&test.StubKeywordExtractor{Keywords: []string{"election"}},
		&test.StubNewsSearcher{},
		&test.StubSummarizer{},
		&test.StubTextEmbedder{})
}

// TestDeepfakeRunMissingVideoFails verifies the visual pipeline surfaces an
// unreadable input as a media-read error with the failing stage named.
func TestDeepfakeRunMissingVideoFails(t *testing.T) {
	w := newDeepfakeWorkflow()

	verdict, err := w.Run(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Nil(t, verdict)
	assert.ErrorIs(t, err, services.ErrMediaRead)
	assert.ErrorContains(t, err, "sample-frames")
}

// TestNarrativeRunMissingVideoFails verifies an audio-extraction failure is
// returned to the caller rather than degraded to the empty report, since
// nothing downstream is meaningful without a transcript.
func TestNarrativeRunMissingVideoFails(t *testing.T) {
	w := newNarrativeWorkflow()

	report, err := w.Run(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Nil(t, report)
	assert.ErrorIs(t, err, services.ErrMediaRead)
}

// TestAnalysisIsolatesPipelineFailures verifies the combined service always
// returns a result and keeps per-pipeline errors in their own fields.
func TestAnalysisIsolatesPipelineFailures(t *testing.T) {
	service := workflow.NewAnalysisService(newDeepfakeWorkflow(), newNarrativeWorkflow())

	result := service.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.NotNil(t, result)
	assert.Nil(t, result.Authenticity)
	assert.Nil(t, result.Report)
	assert.NotEmpty(t, result.AuthenticityErr)
	assert.NotEmpty(t, result.ReportErr)
}
