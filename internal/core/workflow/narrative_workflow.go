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

// This file implements the narrative verification workflow: extract what is
// being said in the video and check whether independent news sources
// corroborate it.
package workflow

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-media-verify/internal/cloud"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// Command names of the two stages whose failures are pipeline-fatal. Every
// later stage degrades to the empty-report sentinel instead, because once a
// transcript exists a partial or failed verification still has a well-defined
// answer: nothing corroborated.
const (
	audioExtractStageName = "extract-audio"
	transcribeStageName   = "transcribe-audio"
)

// NarrativeWorkflow orchestrates the narrative verification of one video file:
// audio extraction, transcription, keyword extraction, article retrieval,
// semantic ranking, and report assembly, as a single cor.Chain.
type NarrativeWorkflow struct {
	cor.BaseCommand
	config       *cloud.Config
	speechToText services.SpeechToText
	keywords     services.KeywordExtractor
	searcher     services.NewsSearcher
	summarizer   services.Summarizer
	embedder     services.TextEmbedder
	chain        cor.Chain
}

// Execute runs the narrative workflow by invoking the underlying chain.
func (w *NarrativeWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run executes the workflow for a single local video file.
//
// Error policy: audio extraction and transcription failures are returned to
// the caller, since nothing downstream is meaningful without a transcript.
// Any failure after transcription is logged per stage and converted to the
// empty-report sentinel, so the caller always sees either a populated report,
// an explicitly empty one, or a transcript-level error. Never a partial
// report.
func (w *NarrativeWorkflow) Run(ctx context.Context, videoPath string) (*model.VerificationReport, error) {
	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, videoPath)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for name, err := range chainCtx.GetErrors() {
			if name == audioExtractStageName || name == transcribeStageName {
				return nil, err
			}
			slog.WarnContext(ctx, "narrative stage failed, returning empty report",
				"stage", name, "error", err.Error())
		}
		return model.NewEmptyVerificationReport(), nil
	}

	report, ok := chainCtx.Get(cor.CtxIn).(*model.VerificationReport)
	if !ok {
		return model.NewEmptyVerificationReport(), nil
	}
	return report, nil
}

// initializeChain builds the sequence of commands that make up this workflow.
//
// The transcript and article slice are needed by more than one downstream
// stage, so those commands publish to named context keys instead of the
// default piping slot.
func (w *NarrativeWorkflow) initializeChain() {
	const TranscriptParamName = "__transcript__"
	const ArticlesParamName = "__articles__"

	analysis := w.config.Analysis
	summaries := w.config.Summaries
	news := w.config.News

	out := cor.NewBaseChain(w.GetName())

	// Step 1: Demux the audio track to a temporary artifact.
	out.AddCommand(commands.NewAudioExtractorCommand(audioExtractStageName))

	// Step 2: Transcribe the audio. The transcript is published under a named
	// key because both the keyword extractor and the summarizer consume it.
	transcriber := commands.NewTranscriberCommand(transcribeStageName, w.speechToText)
	transcriber.BaseCommand.OutputParamName = TranscriptParamName
	out.AddCommand(transcriber)

	// Step 3: Extract the salient search terms from the transcript.
	keywordExtractor := commands.NewKeywordExtractorCommand("extract-keywords", w.keywords, analysis.KeywordCount)
	keywordExtractor.BaseCommand.InputParamName = TranscriptParamName
	out.AddCommand(keywordExtractor)

	// Step 4: Paginate the news search for candidate articles. Published under
	// a named key so the ranker can read it next to the transcript summary.
	retriever := commands.NewArticleRetrieverCommand("retrieve-articles", w.searcher, news.MaxResults, news.PageSize)
	retriever.BaseCommand.OutputParamName = ArticlesParamName
	out.AddCommand(retriever)

	// Step 5: Condense the transcript for embedding.
	transcriptSummarizer := commands.NewTranscriptSummarizerCommand(
		"summarize-transcript", w.summarizer, summaries.TranscriptMaxLength, summaries.TranscriptMinLength)
	transcriptSummarizer.BaseCommand.InputParamName = TranscriptParamName
	out.AddCommand(transcriptSummarizer)

	// Step 6: Rank the articles by similarity to the transcript summary.
	out.AddCommand(commands.NewSemanticRankerCommand(
		"rank-articles", w.embedder, analysis.TopK, ArticlesParamName))

	// Step 7: Summarize each surviving article and assemble the final report.
	out.AddCommand(commands.NewReportAssemblerCommand(
		"assemble-report", w.summarizer, summaries.ArticleMaxLength, summaries.ArticleMinLength))

	w.chain = out
}

// NewNarrativeWorkflow is the constructor for the NarrativeWorkflow. The five
// capabilities are bound once at process start and shared across invocations.
func NewNarrativeWorkflow(
	config *cloud.Config,
	speechToText services.SpeechToText,
	keywords services.KeywordExtractor,
	searcher services.NewsSearcher,
	summarizer services.Summarizer,
	embedder services.TextEmbedder) *NarrativeWorkflow {

	pipeline := &NarrativeWorkflow{
		BaseCommand:  *cor.NewBaseCommand("narrative-pipeline"),
		config:       config,
		speechToText: speechToText,
		keywords:     keywords,
		searcher:     searcher,
		summarizer:   summarizer,
		embedder:     embedder,
	}
	pipeline.initializeChain()
	return pipeline
}
