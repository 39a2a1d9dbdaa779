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

// Package model defines the core data structures for the application.
// This file contains the entities of the narrative-verification pipeline:
// the transcript and keywords derived from the video's audio track, the
// candidate news articles fetched for those keywords, and the final report.
package model

import "strings"

// Transcript is the plain-text transcription of one audio artifact.
type Transcript struct {
	Text string `json:"text"`
}

// KeywordSet is an ordered set of salient terms extracted from a transcript.
// Order reflects the extractor's relevance ranking.
type KeywordSet []string

// Query joins the keywords into the disjunctive search expression sent to the
// news-search API: any keyword may match.
func (k KeywordSet) Query() string {
	return strings.Join(k, " OR ")
}

// Article is a single candidate news article as returned by the news-search
// capability. Description and Content are frequently missing upstream; both
// are treated as empty text rather than as fetch errors.
type Article struct {
	Title       string `json:"title"`
	SourceName  string `json:"source"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// EmbeddingText returns the concatenation of title, description, and body that
// is embedded for semantic ranking against the transcript summary.
func (a *Article) EmbeddingText() string {
	return strings.TrimSpace(a.Title + " " + a.Description + " " + a.Content)
}

// SummarySource returns the text the summarizer should condense for this
// article: the body, or empty text when the article has none. The description
// participates in embedding, not in summarization.
func (a *Article) SummarySource() string {
	return a.Content
}

// ReportedArticle is one corroborating article in the final report.
type ReportedArticle struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// VerificationReport is the narrative pipeline's final output: the top-K
// corroborating articles, or the explicit "nothing found" sentinel. Callers
// branch on Found rather than on an error value.
type VerificationReport struct {
	Found    bool               `json:"found"`
	Articles []*ReportedArticle `json:"articles"`
}

// NewEmptyVerificationReport returns the sentinel report used whenever
// retrieval, ranking, or summarization yields no usable result.
func NewEmptyVerificationReport() *VerificationReport {
	return &VerificationReport{Found: false, Articles: make([]*ReportedArticle, 0)}
}

// AnalysisResult bundles the two independent verdicts for one video. Either
// branch may carry an error string when its pipeline failed fatally; the other
// branch's result is unaffected.
type AnalysisResult struct {
	Authenticity    *AuthenticityVerdict `json:"authenticity,omitempty"`
	AuthenticityErr string               `json:"authenticity_error,omitempty"`
	Report          *VerificationReport  `json:"verification,omitempty"`
	ReportErr       string               `json:"verification_error,omitempty"`
}
