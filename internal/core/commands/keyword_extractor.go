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

// KeywordExtractorCommand derives the salient search terms from the transcript.
// The extraction capability returns terms in its own relevance order, which is
// preserved here; the retriever joins them into a single disjunctive query.
type KeywordExtractorCommand struct {
	cor.BaseCommand
	extractor services.KeywordExtractor
	topN      int
}

func NewKeywordExtractorCommand(name string, extractor services.KeywordExtractor, topN int) *KeywordExtractorCommand {
	return &KeywordExtractorCommand{
		BaseCommand: *cor.NewBaseCommand(name),
		extractor:   extractor,
		topN:        topN,
	}
}

// Execute extracts up to topN keywords from the input transcript.
func (c *KeywordExtractorCommand) Execute(context cor.Context) {
	transcript := context.Get(c.GetInputParam()).(*model.Transcript)
	ctx := context.GetContext()

	keywords, err := c.extractor.Extract(ctx, transcript.Text, c.topN)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), model.KeywordSet(keywords))
}
