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
	"image"
	"image/color"
	"testing"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
	test "github.com/jaycherian/gcp-go-media-verify/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// TestFaceSelectorPicksHighestConfidence verifies that the selector keeps the
// single strictly-best detection per frame and skips frames with none.
func TestFaceSelectorPicksHighestConfidence(t *testing.T) {
	frames := []*model.Frame{
		{Index: 0, Image: test.NewTestImage(100, 100, color.White)},
		{Index: 15, Image: test.NewTestImage(100, 100, color.White)},
		{Index: 30, Image: test.NewTestImage(100, 100, color.White)},
	}
	detector := &test.StubFaceDetector{DetectFn: func(img image.Image) ([]services.Detection, error) {
		switch {
		case img == frames[0].Image:
			return []services.Detection{
				{Box: image.Rect(10, 10, 30, 30), Confidence: 0.4},
				{Box: image.Rect(40, 40, 80, 80), Confidence: 0.8},
			}, nil
		case img == frames[1].Image:
			// No detections for the middle frame.
			return nil, nil
		default:
			return []services.Detection{{Box: image.Rect(0, 0, 50, 50), Confidence: 0.6}}, nil
		}
	}}

	chainCtx := newChainContext(frames)
	cmd := commands.NewFaceSelectorCommand("select-faces", detector)
	cmd.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	crops := chainCtx.Get(cor.CtxOut).([]*model.FaceCrop)
	assert.Len(t, crops, 2)
	assert.Equal(t, 0, crops[0].FrameIndex)
	assert.Equal(t, 0.8, crops[0].Confidence)
	assert.Equal(t, image.Rect(40, 40, 80, 80), crops[0].Image.Bounds())
	assert.Equal(t, 30, crops[1].FrameIndex)
}

// TestFaceSelectorTieKeepsFirstSeen verifies the strict comparison: two
// detections with identical confidence keep the first-seen one.
func TestFaceSelectorTieKeepsFirstSeen(t *testing.T) {
	frames := []*model.Frame{{Index: 0, Image: test.NewTestImage(100, 100, color.White)}}
	first := image.Rect(5, 5, 25, 25)
	second := image.Rect(60, 60, 90, 90)
	detector := &test.StubFaceDetector{DetectFn: func(image.Image) ([]services.Detection, error) {
		return []services.Detection{
			{Box: first, Confidence: 0.9},
			{Box: second, Confidence: 0.9},
		}, nil
	}}

	chainCtx := newChainContext(frames)
	commands.NewFaceSelectorCommand("select-faces", detector).Execute(chainCtx)

	crops := chainCtx.Get(cor.CtxOut).([]*model.FaceCrop)
	assert.Len(t, crops, 1)
	assert.Equal(t, first, crops[0].Image.Bounds())
}

// TestFaceSelectorClampsOutOfBoundsBoxes verifies that a detection box
// extending past the frame is clamped to the image extents before cropping.
func TestFaceSelectorClampsOutOfBoundsBoxes(t *testing.T) {
	frames := []*model.Frame{{Index: 0, Image: test.NewTestImage(50, 50, color.White)}}
	detector := &test.StubFaceDetector{DetectFn: func(image.Image) ([]services.Detection, error) {
		return []services.Detection{{Box: image.Rect(30, 30, 120, 120), Confidence: 0.7}}, nil
	}}

	chainCtx := newChainContext(frames)
	commands.NewFaceSelectorCommand("select-faces", detector).Execute(chainCtx)

	crops := chainCtx.Get(cor.CtxOut).([]*model.FaceCrop)
	assert.Len(t, crops, 1)
	assert.Equal(t, image.Rect(30, 30, 50, 50), crops[0].Image.Bounds())
}

// TestFaceSelectorPropagatesDetectorErrors verifies that a capability failure
// aborts the command with an error instead of producing a partial crop list.
func TestFaceSelectorPropagatesDetectorErrors(t *testing.T) {
	frames := []*model.Frame{{Index: 0, Image: test.NewTestImage(10, 10, color.White)}}
	detector := &test.StubFaceDetector{DetectFn: func(image.Image) ([]services.Detection, error) {
		return nil, errors.New("detector offline")
	}}

	chainCtx := newChainContext(frames)
	commands.NewFaceSelectorCommand("select-faces", detector).Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(cor.CtxOut))
}
