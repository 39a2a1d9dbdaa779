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

// In-package tests for NarrativeWorkflow.Run's error policy. The policy
// branches on which stage recorded an error, so these tests swap the
// assembled chain for one whose single stage fails under a chosen name,
// without shelling out to any media tooling.
package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// failingStage records an error under its own name and produces no output.
type failingStage struct {
	cor.BaseCommand
	err error
}

func (c *failingStage) Execute(ctx cor.Context) {
	ctx.AddError(c.GetName(), c.err)
}

// reportStage emits a fixed report, standing in for the assembly stage.
type reportStage struct {
	cor.BaseCommand
	report *model.VerificationReport
}

func (c *reportStage) Execute(ctx cor.Context) {
	ctx.Add(c.GetOutputParam(), c.report)
}

func narrativeWithStage(stage cor.Command) *NarrativeWorkflow {
	w := &NarrativeWorkflow{BaseCommand: *cor.NewBaseCommand("narrative-pipeline")}
	chain := cor.NewBaseChain(w.GetName())
	chain.AddCommand(stage)
	w.chain = chain
	return w
}

// TestNarrativeRunDegradesPostTranscriptionFailure verifies the central
// degradation rule: once a transcript exists, a later stage failure collapses
// to the empty-report sentinel with no error raised to the caller.
func TestNarrativeRunDegradesPostTranscriptionFailure(t *testing.T) {
	for _, stageName := range []string{"extract-keywords", "retrieve-articles", "summarize-transcript", "rank-articles", "assemble-report"} {
		w := narrativeWithStage(&failingStage{
			BaseCommand: *cor.NewBaseCommand(stageName),
			err:         errors.New("capability unavailable"),
		})

		report, err := w.Run(context.Background(), "clip.mp4")
		assert.NoError(t, err, stageName)
		assert.NotNil(t, report, stageName)
		assert.False(t, report.Found, stageName)
		assert.Len(t, report.Articles, 0, stageName)
	}
}

// TestNarrativeRunPropagatesTranscriptStageFailures verifies that failures in
// audio extraction or transcription are returned to the caller instead of
// being degraded, since there is no transcript to verify.
func TestNarrativeRunPropagatesTranscriptStageFailures(t *testing.T) {
	boom := errors.New("no usable audio")
	for _, stageName := range []string{audioExtractStageName, transcribeStageName} {
		w := narrativeWithStage(&failingStage{
			BaseCommand: *cor.NewBaseCommand(stageName),
			err:         boom,
		})

		report, err := w.Run(context.Background(), "clip.mp4")
		assert.Nil(t, report, stageName)
		assert.ErrorIs(t, err, boom, stageName)
	}
}

// TestNarrativeRunReturnsAssembledReport verifies the happy path hands the
// chain's final report through unchanged.
func TestNarrativeRunReturnsAssembledReport(t *testing.T) {
	assembled := &model.VerificationReport{
		Found:    true,
		Articles: []*model.ReportedArticle{{Title: "t", Summary: "s", URL: "u", Source: "src"}},
	}
	w := narrativeWithStage(&reportStage{
		BaseCommand: *cor.NewBaseCommand("assemble-report"),
		report:      assembled,
	})

	report, err := w.Run(context.Background(), "clip.mp4")
	assert.NoError(t, err)
	assert.Equal(t, assembled, report)
}
