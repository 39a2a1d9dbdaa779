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

package commands_test

import (
	"errors"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	test "github.com/jaycherian/gcp-go-media-verify/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// makeCrops builds n face crops. Crop i is a solid image whose red channel is
// i, so the extractor stub can recover the temporal position from the pixels.
func makeCrops(n int) []*model.FaceCrop {
	crops := make([]*model.FaceCrop, 0, n)
	for i := 0; i < n; i++ {
		crops = append(crops, &model.FaceCrop{
			FrameIndex: i * 15,
			Confidence: 0.9,
			Image:      test.NewTestImage(32, 32, color.RGBA{R: uint8(i), A: 255}),
		})
	}
	return crops
}

// TestSequencerPreservesTemporalOrder verifies that the worker pool does not
// reorder vectors: vector i in the sequence must come from crop i.
func TestSequencerPreservesTemporalOrder(t *testing.T) {
	extractor := &test.StubFeatureExtractor{
		Dimension: 4,
		ExtractFn: func(pixels []float32) (model.FeatureVector, error) {
			// The first pixel triple is mean-subtracted BGR; recover the red
			// channel value the crop was painted with.
			red := pixels[2] + 123.68
			return model.FeatureVector{red, red, red, red}, nil
		},
	}

	chainCtx := newChainContext(makeCrops(10))
	commands.NewFeatureSequencerCommand("build-feature-sequence", extractor, 16, 108, 4).Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	sequence := chainCtx.Get(cor.CtxOut).(*model.FeatureSequence)
	assert.Equal(t, 108, sequence.Len())
	for i := 0; i < 10; i++ {
		assert.InDelta(t, float64(i), float64(sequence.Vectors[i][0]), 0.5, "vector %d out of order", i)
	}
	// The rest is padding.
	for i := 10; i < 108; i++ {
		assert.Equal(t, float32(0), sequence.Vectors[i][0])
	}
}

// TestSequencerZeroCropsYieldsAllPadding verifies the degenerate no-faces
// case: the output is a full-length all-zero sequence, not an error.
func TestSequencerZeroCropsYieldsAllPadding(t *testing.T) {
	extractor := &test.StubFeatureExtractor{Dimension: 6}

	chainCtx := newChainContext([]*model.FaceCrop{})
	commands.NewFeatureSequencerCommand("build-feature-sequence", extractor, 16, 108, 2).Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	sequence := chainCtx.Get(cor.CtxOut).(*model.FeatureSequence)
	assert.Equal(t, 108, sequence.Len())
	assert.Equal(t, 6, sequence.Dim)
	for _, vec := range sequence.Vectors {
		for _, v := range vec {
			assert.Equal(t, float32(0), v)
		}
	}
}

// TestSequencerTruncatesLongRuns verifies that more crops than the sequence
// length keeps only the earliest ones.
func TestSequencerTruncatesLongRuns(t *testing.T) {
	var calls atomic.Int32
	extractor := &test.StubFeatureExtractor{
		Dimension: 2,
		ExtractFn: func(pixels []float32) (model.FeatureVector, error) {
			calls.Add(1)
			red := pixels[2] + 123.68
			return model.FeatureVector{red, 0}, nil
		},
	}

	chainCtx := newChainContext(makeCrops(120))
	commands.NewFeatureSequencerCommand("build-feature-sequence", extractor, 16, 108, 8).Execute(chainCtx)

	sequence := chainCtx.Get(cor.CtxOut).(*model.FeatureSequence)
	assert.Equal(t, 108, sequence.Len())
	assert.Equal(t, int32(120), calls.Load())
	assert.InDelta(t, 0.0, float64(sequence.Vectors[0][0]), 0.5)
	assert.InDelta(t, 107.0, float64(sequence.Vectors[107][0]), 0.5)
}

// TestSequencerPropagatesExtractorErrors verifies that any extraction failure
// aborts the command.
func TestSequencerPropagatesExtractorErrors(t *testing.T) {
	extractor := &test.StubFeatureExtractor{
		Dimension: 2,
		ExtractFn: func([]float32) (model.FeatureVector, error) {
			return nil, errors.New("extractor offline")
		},
	}

	chainCtx := newChainContext(makeCrops(3))
	commands.NewFeatureSequencerCommand("build-feature-sequence", extractor, 16, 108, 2).Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(cor.CtxOut))
}
