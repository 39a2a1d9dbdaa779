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

// This file defines the command that collects candidate news articles for the
// keyword query.
//
// Logic Flow:
// The search capability fetches one page at a time; this command owns the
// pagination policy around it:
//
//  1. Request pages of size min(pageSize, remaining), starting at page 1.
//  2. Stop when maxResults articles have been collected.
//  3. Stop when a page comes back shorter than requested, which signals the
//     API has no more results.
//  4. On a retrieval failure, stop immediately and keep whatever was already
//     collected. Zero collected articles is not an error here; the empty
//     slice flows downstream and becomes the empty-report sentinel.
package commands

import (
	"errors"
	"log/slog"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// ArticleRetrieverCommand paginates the news-search capability until the
// result cap is reached or the results are exhausted.
type ArticleRetrieverCommand struct {
	cor.BaseCommand
	searcher   services.NewsSearcher
	maxResults int // Hard cap on the number of collected articles.
	pageSize   int // Upper bound on a single page request.
}

func NewArticleRetrieverCommand(name string, searcher services.NewsSearcher, maxResults int, pageSize int) *ArticleRetrieverCommand {
	return &ArticleRetrieverCommand{
		BaseCommand: *cor.NewBaseCommand(name),
		searcher:    searcher,
		maxResults:  maxResults,
		pageSize:    pageSize,
	}
}

// Execute collects at most maxResults articles for the input keyword set.
func (c *ArticleRetrieverCommand) Execute(context cor.Context) {
	keywords := context.Get(c.GetInputParam()).(model.KeywordSet)
	ctx := context.GetContext()

	collected := make([]*model.Article, 0, c.maxResults)
	query := keywords.Query()
	if query == "" {
		slog.WarnContext(ctx, "empty keyword set, skipping article retrieval")
		c.GetSuccessCounter().Add(ctx, 1)
		context.Add(c.GetOutputParam(), collected)
		return
	}

	aborted := false
	for page := 1; len(collected) < c.maxResults; page++ {
		size := c.pageSize
		if remaining := c.maxResults - len(collected); remaining < size {
			size = remaining
		}

		articles, err := c.searcher.Search(ctx, query, size, page)
		if err != nil {
			if !errors.Is(err, services.ErrRetrieval) {
				err = services.Wrap(services.ErrRetrieval, "news search failed", err)
			}
			slog.WarnContext(ctx, "aborting article pagination, keeping partial results",
				"page", page, "collected", len(collected), "error", err.Error())
			c.GetErrorCounter().Add(ctx, 1)
			aborted = true
			break
		}

		collected = append(collected, articles...)
		if len(collected) > c.maxResults {
			// A compliant API never returns more than requested; guard anyway.
			collected = collected[:c.maxResults]
		}
		if len(articles) < size {
			// Short page: the API is out of results for this query.
			break
		}
	}

	// An aborted run already counted as an error; count at most one outcome
	// per invocation.
	if !aborted {
		c.GetSuccessCounter().Add(ctx, 1)
	}
	context.Add(c.GetOutputParam(), collected)
}
