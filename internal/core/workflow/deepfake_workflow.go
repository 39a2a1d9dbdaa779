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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements the
// deepfake detection workflow.
package workflow

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-media-verify/internal/cloud"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// DeepfakeWorkflow orchestrates the visual analysis of one video file. It is
// structured as a Chain of Responsibility (cor.Chain) running four stages:
// sample frames from the video, pick the best face per frame, map the face
// crops to a fixed-shape feature sequence, and classify that sequence.
//
// The workflow always runs to a verdict when the video is readable. A video
// in which no face is ever detected classifies an all-padding sequence, which
// is a supported input, not a failure.
type DeepfakeWorkflow struct {
	cor.BaseCommand
	config     *cloud.Config
	detector   services.FaceDetector
	extractor  services.FeatureExtractor
	classifier services.SequenceClassifier
	chain      cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the deepfake workflow by invoking the underlying chain.
func (w *DeepfakeWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run executes the workflow for a single local video file and returns the
// verdict. Temporary frame files are cleaned up before it returns.
func (w *DeepfakeWorkflow) Run(ctx context.Context, videoPath string) (*model.AuthenticityVerdict, error) {
	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, videoPath)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for name, err := range chainCtx.GetErrors() {
			return nil, fmt.Errorf("deepfake stage %s failed: %w", name, err)
		}
	}

	verdict, ok := chainCtx.Get(cor.CtxIn).(*model.AuthenticityVerdict)
	if !ok {
		return nil, fmt.Errorf("deepfake pipeline produced no verdict for %s", videoPath)
	}
	return verdict, nil
}

// initializeChain builds the sequence of commands that make up this workflow.
// Each stage reads the previous stage's output through the chain's piping.
func (w *DeepfakeWorkflow) initializeChain() {
	analysis := w.config.Analysis

	out := cor.NewBaseChain(w.GetName())

	// Step 1: Decode every k-th frame of the video into memory.
	out.AddCommand(commands.NewFrameSamplerCommand("sample-frames", analysis.FrameInterval))

	// Step 2: Detect faces per frame and keep the highest-confidence crop.
	out.AddCommand(commands.NewFaceSelectorCommand("select-faces", w.detector))

	// Step 3: Extract one feature vector per crop and normalize the sequence
	// to the classifier's fixed length.
	out.AddCommand(commands.NewFeatureSequencerCommand(
		"build-feature-sequence",
		w.extractor,
		analysis.CropSize,
		analysis.SequenceLength,
		w.config.Application.ThreadPoolSize))

	// Step 4: Classify the sequence and apply the decision threshold.
	out.AddCommand(commands.NewAuthenticityClassifierCommand(
		"classify-sequence",
		w.classifier,
		analysis.SequenceLength,
		w.extractor.Dim()))

	w.chain = out
}

// NewDeepfakeWorkflow is the constructor for the DeepfakeWorkflow. The three
// inference capabilities are bound once at process start and shared across
// invocations.
func NewDeepfakeWorkflow(
	config *cloud.Config,
	detector services.FaceDetector,
	extractor services.FeatureExtractor,
	classifier services.SequenceClassifier) *DeepfakeWorkflow {

	pipeline := &DeepfakeWorkflow{
		BaseCommand: *cor.NewBaseCommand("deepfake-pipeline"),
		config:      config,
		detector:    detector,
		extractor:   extractor,
		classifier:  classifier,
	}
	pipeline.initializeChain()
	return pipeline
}
