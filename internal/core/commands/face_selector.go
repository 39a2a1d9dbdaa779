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

package commands

import (
	"image"
	"image/draw"
	"log/slog"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// FaceSelectorCommand runs the face-detection capability over every sampled
// frame and keeps, per frame, the crop of the single highest-confidence
// detection. Frames with no detections contribute nothing. The comparison is
// strict, so when two detections tie on confidence the first-seen one wins.
type FaceSelectorCommand struct {
	cor.BaseCommand
	detector services.FaceDetector
}

func NewFaceSelectorCommand(name string, detector services.FaceDetector) *FaceSelectorCommand {
	return &FaceSelectorCommand{
		BaseCommand: *cor.NewBaseCommand(name),
		detector:    detector,
	}
}

// Execute maps the frame slice to an ordered slice of face crops.
func (c *FaceSelectorCommand) Execute(context cor.Context) {
	frames := context.Get(c.GetInputParam()).([]*model.Frame)
	ctx := context.GetContext()

	crops := make([]*model.FaceCrop, 0, len(frames))
	for _, frame := range frames {
		detections, err := c.detector.Detect(ctx, frame.Image)
		if err != nil {
			c.GetErrorCounter().Add(ctx, 1)
			context.AddError(c.GetName(), err)
			return
		}
		if len(detections) == 0 {
			continue
		}

		best := detections[0]
		for _, d := range detections[1:] {
			if d.Confidence > best.Confidence {
				best = d
			}
		}

		// Detector boxes sometimes extend past the frame; clamp before cropping.
		box := best.Box.Intersect(frame.Image.Bounds())
		if box.Empty() {
			slog.WarnContext(ctx, "face detection entirely outside frame bounds, skipping",
				"frame", frame.Index, "box", best.Box.String())
			continue
		}

		crops = append(crops, &model.FaceCrop{
			FrameIndex: frame.Index,
			Confidence: best.Confidence,
			Image:      cropImage(frame.Image, box),
		})
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), crops)
}

// cropImage extracts the region of img bounded by box. Decoded JPEG frames
// support SubImage directly; anything else is copied into a fresh RGBA.
func cropImage(img image.Image, box image.Rectangle) image.Image {
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(box)
	}
	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(out, out.Bounds(), img, box.Min, draw.Src)
	return out
}
