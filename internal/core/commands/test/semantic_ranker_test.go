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
	"math"
	"testing"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	test "github.com/jaycherian/gcp-go-media-verify/internal/testutil"
	"github.com/stretchr/testify/assert"
)

const articlesKey = "__articles__"

// unitVectorWithCosine returns a 2D unit vector whose cosine similarity to
// [1, 0] is exactly c.
func unitVectorWithCosine(c float64) []float32 {
	return []float32{float32(c), float32(math.Sqrt(1 - c*c))}
}

// rankerContext seeds a chain context the way the narrative workflow does: the
// transcript summary in the piping slot and the articles under a named key.
func rankerContext(summary string, articles []*model.Article) cor.Context {
	chainCtx := newChainContext(summary)
	chainCtx.Add(articlesKey, articles)
	return chainCtx
}

// TestRankerBreaksTiesByRetrievalOrder verifies the ranking rule on the
// canonical case: similarities [0.2, 0.9, 0.9] for articles A, B, C rank as
// [B, C, A], with the B/C tie kept in retrieval order by the stable sort.
func TestRankerBreaksTiesByRetrievalOrder(t *testing.T) {
	articles := []*model.Article{
		{Title: "A"},
		{Title: "B"},
		{Title: "C"},
	}
	embedder := &test.StubTextEmbedder{EmbedFn: func(text string) ([]float32, error) {
		switch text {
		case "A":
			return unitVectorWithCosine(0.2), nil
		case "B", "C":
			return unitVectorWithCosine(0.9), nil
		default:
			// The transcript summary.
			return []float32{1, 0}, nil
		}
	}}

	chainCtx := rankerContext("summary", articles)
	commands.NewSemanticRankerCommand("rank-articles", embedder, 5, articlesKey).Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	ranked := chainCtx.Get(cor.CtxOut).([]*model.Article)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "B", ranked[0].Title)
	assert.Equal(t, "C", ranked[1].Title)
	assert.Equal(t, "A", ranked[2].Title)
}

// TestRankerKeepsTopK verifies that only the top K articles survive.
func TestRankerKeepsTopK(t *testing.T) {
	articles := make([]*model.Article, 0, 8)
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		articles = append(articles, &model.Article{Title: title})
	}
	// Later articles embed closer to the summary.
	embedder := &test.StubTextEmbedder{EmbedFn: func(text string) ([]float32, error) {
		if text == "summary" {
			return []float32{1, 0}, nil
		}
		rank := float64(text[0]-'a'+1) / 10.0
		return unitVectorWithCosine(rank), nil
	}}

	chainCtx := rankerContext("summary", articles)
	commands.NewSemanticRankerCommand("rank-articles", embedder, 5, articlesKey).Execute(chainCtx)

	ranked := chainCtx.Get(cor.CtxOut).([]*model.Article)
	assert.Len(t, ranked, 5)
	assert.Equal(t, "h", ranked[0].Title)
	assert.Equal(t, "d", ranked[4].Title)
}

// TestRankerPassesThroughEmptyArticles verifies that zero candidates skip the
// embedding capability entirely.
func TestRankerPassesThroughEmptyArticles(t *testing.T) {
	calls := 0
	embedder := &test.StubTextEmbedder{EmbedFn: func(string) ([]float32, error) {
		calls++
		return []float32{1}, nil
	}}

	chainCtx := rankerContext("summary", []*model.Article{})
	commands.NewSemanticRankerCommand("rank-articles", embedder, 5, articlesKey).Execute(chainCtx)

	assert.Equal(t, 0, calls)
	assert.Len(t, chainCtx.Get(cor.CtxOut).([]*model.Article), 0)
}
