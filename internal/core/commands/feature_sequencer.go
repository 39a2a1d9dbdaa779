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

// This file defines the command that turns face crops into the fixed-shape
// feature sequence consumed by the sequence classifier.
//
// Logic Flow:
// Each crop goes through three preprocessing steps before the extraction
// capability sees it:
//
//  1. Resize to the extractor's square input size (bilinear).
//  2. Reorder channels to BGR, which is what the extraction model was
//     trained on.
//  3. Subtract the per-channel training means so values land in the range
//     the model expects.
//
// Extraction calls go through a small worker pool because they are remote
// inference requests. Results are written into an index-addressed slice so the
// temporal order of the crops survives the concurrency.
//
// The resulting raw sequence is normalized to the classifier's fixed length:
// padded with zero vectors when short, truncated to the earliest vectors when
// long. Zero crops is a supported degenerate case that produces an all-padding
// sequence.
package commands

import (
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// Per-channel means of the extraction model's training set, in BGR order.
var channelMeans = [3]float32{103.939, 116.779, 123.68}

// FeatureSequencerCommand maps face crops to feature vectors and assembles the
// fixed-length feature sequence.
type FeatureSequencerCommand struct {
	cor.BaseCommand
	extractor      services.FeatureExtractor
	cropSize       int // Side length of the extractor's square input, in pixels.
	sequenceLength int // The fixed sequence length the classifier requires.
	workers        int // Size of the extraction worker pool.
}

func NewFeatureSequencerCommand(
	name string,
	extractor services.FeatureExtractor,
	cropSize int,
	sequenceLength int,
	workers int) *FeatureSequencerCommand {
	if workers < 1 {
		workers = 1
	}
	return &FeatureSequencerCommand{
		BaseCommand:    *cor.NewBaseCommand(name),
		extractor:      extractor,
		cropSize:       cropSize,
		sequenceLength: sequenceLength,
		workers:        workers,
	}
}

// Execute builds the normalized feature sequence for the input crops.
func (c *FeatureSequencerCommand) Execute(context cor.Context) {
	crops := context.Get(c.GetInputParam()).([]*model.FaceCrop)
	ctx := context.GetContext()

	vectors := make([]model.FeatureVector, len(crops))
	errs := make([]error, len(crops))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)
	for i, crop := range crops {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, crop *model.FaceCrop) {
			defer wg.Done()
			defer func() { <-sem }()
			vectors[i], errs[i] = c.extractor.Extract(ctx, c.preprocess(crop.Image))
		}(i, crop)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			c.GetErrorCounter().Add(ctx, 1)
			context.AddError(c.GetName(), err)
			return
		}
	}

	sequence := model.NewFeatureSequence(c.extractor.Dim())
	for _, v := range vectors {
		sequence.Append(v)
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), sequence.Normalized(c.sequenceLength))
}

// preprocess resizes the crop to the extractor's input size and flattens it to
// mean-subtracted BGR pixel values, interleaved row-major.
func (c *FeatureSequencerCommand) preprocess(img image.Image) []float32 {
	resized := image.NewRGBA(image.Rect(0, 0, c.cropSize, c.cropSize))
	xdraw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	pixels := make([]float32, 0, c.cropSize*c.cropSize*3)
	for y := 0; y < c.cropSize; y++ {
		for x := 0; x < c.cropSize; x++ {
			offset := resized.PixOffset(x, y)
			r := float32(resized.Pix[offset])
			g := float32(resized.Pix[offset+1])
			b := float32(resized.Pix[offset+2])
			pixels = append(pixels,
				b-channelMeans[0],
				g-channelMeans[1],
				r-channelMeans[2])
		}
	}
	return pixels
}
