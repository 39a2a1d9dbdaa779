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
	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// TranscriptSummarizerCommand condenses the transcript into the short summary
// that the semantic ranker embeds. The word bounds differ from the per-article
// summaries produced later during report assembly, so each call site carries
// its own configuration.
type TranscriptSummarizerCommand struct {
	cor.BaseCommand
	summarizer services.Summarizer
	maxLength  int
	minLength  int
}

func NewTranscriptSummarizerCommand(name string, summarizer services.Summarizer, maxLength int, minLength int) *TranscriptSummarizerCommand {
	return &TranscriptSummarizerCommand{
		BaseCommand: *cor.NewBaseCommand(name),
		summarizer:  summarizer,
		maxLength:   maxLength,
		minLength:   minLength,
	}
}

// Execute summarizes the input transcript and outputs the summary text.
func (c *TranscriptSummarizerCommand) Execute(context cor.Context) {
	transcript := context.Get(c.GetInputParam()).(*model.Transcript)
	ctx := context.GetContext()

	summary, err := c.summarizer.Summarize(ctx, transcript.Text, c.maxLength, c.minLength)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), summary)
}
