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
	"strings"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// TranscriberCommand converts the extracted audio artifact into a Transcript
// through the speech-to-text capability. Transcription failures propagate as
// pipeline-fatal: nothing downstream is meaningful without a transcript.
type TranscriberCommand struct {
	cor.BaseCommand
	speechToText services.SpeechToText
}

func NewTranscriberCommand(name string, speechToText services.SpeechToText) *TranscriberCommand {
	return &TranscriberCommand{
		BaseCommand:  *cor.NewBaseCommand(name),
		speechToText: speechToText,
	}
}

// Execute transcribes the audio artifact at the input path.
func (c *TranscriberCommand) Execute(context cor.Context) {
	audioPath := context.Get(c.GetInputParam()).(string)
	ctx := context.GetContext()

	text, err := c.speechToText.Transcribe(ctx, audioPath)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), &model.Transcript{Text: strings.TrimSpace(text)})
}
