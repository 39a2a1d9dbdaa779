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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that samples frames from the input video.
//
// Logic Flow:
// The `FrameSamplerCommand` is the first stage of the deepfake pipeline. It
// takes the path of a local video file and decodes every k-th frame into an
// in-memory image, preserving temporal order.
//
// FFmpeg does the heavy lifting. Rather than decoding every frame in Go, the
// command runs a single FFmpeg pass with a `select` filter that keeps only
// frames whose decoded index is a multiple of the sampling interval, writing
// each one as a numbered JPEG in a temporary directory. The command then loads
// the JPEGs back in order and reconstructs each frame's original decoded index
// from its ordinal position.
//
//  1. Get the video path from the COR context.
//  2. Sniff the file header with the `filetype` library; a non-video file is a
//     media read error, not something to hand to FFmpeg.
//  3. Run FFmpeg with `select=not(mod(n\,k))` into a temp directory.
//  4. Load the emitted JPEGs in filename order and assign indices 0, k, 2k, ...
//  5. Track every temp file in the context for later cleanup.
//
// A video that decodes to zero frames yields an empty slice, not an error.
package commands

import (
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/h2non/filetype"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

const frameDirPrefix = "frame-sampler-"

// FrameSamplerCommand decodes every k-th frame of the input video into a
// model.Frame, in temporal order.
type FrameSamplerCommand struct {
	cor.BaseCommand
	interval int // The sampling interval k: frame i is kept iff i mod k == 0.
}

// NewFrameSamplerCommand is the constructor for creating a new FrameSamplerCommand.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - interval: The sampling interval k. Must be >= 1.
//
// Outputs:
//   - *FrameSamplerCommand: A pointer to the newly instantiated command.
func NewFrameSamplerCommand(name string, interval int) *FrameSamplerCommand {
	return &FrameSamplerCommand{
		BaseCommand: *cor.NewBaseCommand(name),
		interval:    interval,
	}
}

// Execute samples the video at the configured interval and writes the ordered
// frame slice to the output parameter.
func (c *FrameSamplerCommand) Execute(context cor.Context) {
	videoPath := context.Get(c.GetInputParam()).(string)

	if err := c.verifyContainer(videoPath); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	frameDir, err := os.MkdirTemp("", frameDirPrefix)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	outputPattern := filepath.Join(frameDir, "frame-%06d.jpg")
	err = ffmpeg.Input(videoPath).
		Output(outputPattern, ffmpeg.KwArgs{
			"vf":    fmt.Sprintf("select=not(mod(n\\,%d))", c.interval),
			"vsync": "vfr",
			"q:v":   "2",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil && !nothingEncoded(err, frameDir) {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), services.Wrap(services.ErrMediaRead, fmt.Sprintf("ffmpeg failed to decode %s", videoPath), err))
		return
	}

	frames, err := c.loadFrames(context, frameDir)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), frames)
}

// nothingEncoded reports whether a failed FFmpeg run means the container had
// no video frames for the select filter to sample. FFmpeg exits non-zero for
// an audio-only or zero-duration file ("Output file is empty, nothing was
// encoded"); since the container sniff has already passed, a clean process
// exit that left the output directory empty is an empty sample, not a read
// failure. A failure to launch FFmpeg at all is never treated this way.
func nothingEncoded(runErr error, frameDir string) bool {
	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		return false
	}
	entries, err := os.ReadDir(frameDir)
	return err == nil && len(entries) == 0
}

// verifyContainer sniffs the file header and rejects anything that is not a
// known video container before FFmpeg ever sees it.
func (c *FrameSamplerCommand) verifyContainer(videoPath string) error {
	file, err := os.Open(videoPath)
	if err != nil {
		return services.Wrap(services.ErrMediaRead, fmt.Sprintf("unable to open video %s", videoPath), err)
	}
	defer func() { _ = file.Close() }()

	header := make([]byte, 261)
	n, err := file.Read(header)
	if err != nil {
		return services.Wrap(services.ErrMediaRead, fmt.Sprintf("unable to read video header of %s", videoPath), err)
	}
	if !filetype.IsVideo(header[:n]) {
		return services.Wrap(services.ErrMediaRead, fmt.Sprintf("%s is not a recognized video container", videoPath), nil)
	}
	return nil
}

// loadFrames reads the emitted JPEGs back in filename order. FFmpeg numbers
// them sequentially, so the frame at ordinal position p was decoded frame
// p * interval in the source video.
func (c *FrameSamplerCommand) loadFrames(context cor.Context, frameDir string) ([]*model.Frame, error) {
	entries, err := os.ReadDir(frameDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	frames := make([]*model.Frame, 0, len(names))
	for ordinal, name := range names {
		framePath := filepath.Join(frameDir, name)
		context.AddTempFile(framePath)

		file, err := os.Open(framePath)
		if err != nil {
			return nil, err
		}
		img, err := jpeg.Decode(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("unable to decode sampled frame %s: %w", framePath, err)
		}
		frames = append(frames, &model.Frame{Index: ordinal * c.interval, Image: img})
	}
	return frames, nil
}
