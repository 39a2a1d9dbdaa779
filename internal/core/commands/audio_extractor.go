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
	"fmt"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

const audioFilePattern = "audio-extract-*.mp3"

// AudioExtractorCommand demultiplexes the audio track of the input video into
// a temporary MP3 artifact for the transcriber. A video without an audio track
// fails this command, which is fatal to the narrative pipeline only; the
// deepfake pipeline runs on a separate chain and is unaffected.
type AudioExtractorCommand struct {
	cor.BaseCommand
}

func NewAudioExtractorCommand(name string) *AudioExtractorCommand {
	return &AudioExtractorCommand{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute writes the audio track to a tracked temp file and outputs its path.
func (c *AudioExtractorCommand) Execute(context cor.Context) {
	videoPath := context.Get(c.GetInputParam()).(string)
	ctx := context.GetContext()

	if _, err := os.Stat(videoPath); err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), services.Wrap(services.ErrMediaRead, fmt.Sprintf("unable to stat video %s", videoPath), err))
		return
	}

	audioFile, err := os.CreateTemp("", audioFilePattern)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}
	_ = audioFile.Close()
	audioPath := audioFile.Name()
	context.AddTempFile(audioPath)

	// -vn drops the video streams; FFmpeg fails outright when the input has
	// no audio stream to map, which is exactly the no-audio-track signal.
	err = ffmpeg.Input(videoPath).
		Output(audioPath, ffmpeg.KwArgs{
			"vn":     "",
			"acodec": "libmp3lame",
			"q:a":    "2",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), services.Wrap(services.ErrNoAudioTrack, fmt.Sprintf("unable to extract audio from %s", videoPath), err))
		return
	}

	if info, err := os.Stat(audioPath); err != nil || info.Size() == 0 {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), services.Wrap(services.ErrNoAudioTrack, fmt.Sprintf("video %s produced an empty audio artifact", videoPath), nil))
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), audioPath)
}
