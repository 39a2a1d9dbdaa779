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

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// ReportAssemblerCommand is the final stage of the narrative pipeline. It
// summarizes each ranked article's body and builds the verification report.
// Zero ranked articles produces the explicit empty-report sentinel, never a
// partial report and never an error.
type ReportAssemblerCommand struct {
	cor.BaseCommand
	summarizer services.Summarizer
	maxLength  int
	minLength  int
}

func NewReportAssemblerCommand(name string, summarizer services.Summarizer, maxLength int, minLength int) *ReportAssemblerCommand {
	return &ReportAssemblerCommand{
		BaseCommand: *cor.NewBaseCommand(name),
		summarizer:  summarizer,
		maxLength:   maxLength,
		minLength:   minLength,
	}
}

// Execute builds the VerificationReport for the ranked input articles.
func (c *ReportAssemblerCommand) Execute(context cor.Context) {
	ranked := context.Get(c.GetInputParam()).([]*model.Article)
	ctx := context.GetContext()

	if len(ranked) == 0 {
		c.GetSuccessCounter().Add(ctx, 1)
		context.Add(c.GetOutputParam(), model.NewEmptyVerificationReport())
		return
	}

	reported := make([]*model.ReportedArticle, 0, len(ranked))
	for i, article := range ranked {
		summary, err := c.summarizer.Summarize(ctx, article.SummarySource(), c.maxLength, c.minLength)
		if err != nil {
			c.GetErrorCounter().Add(ctx, 1)
			context.AddError(c.GetName(), fmt.Errorf("unable to summarize article %d (%s): %w", i, article.URL, err))
			return
		}
		reported = append(reported, &model.ReportedArticle{
			Title:   article.Title,
			Summary: summary,
			URL:     article.URL,
			Source:  article.SourceName,
		})
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), &model.VerificationReport{Found: true, Articles: reported})
}
