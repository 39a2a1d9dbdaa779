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

package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
)

// AnalysisService runs the two detection pipelines over the same video and
// bundles their independent verdicts. The pipelines share nothing but the
// input path: each runs in its own goroutine on its own chain context, and a
// fatal error in one leaves the other's result intact.
type AnalysisService struct {
	deepfake  *DeepfakeWorkflow
	narrative *NarrativeWorkflow
}

func NewAnalysisService(deepfake *DeepfakeWorkflow, narrative *NarrativeWorkflow) *AnalysisService {
	return &AnalysisService{deepfake: deepfake, narrative: narrative}
}

// Analyze produces the combined result for one local video file. It always
// returns a result; per-pipeline failures are carried in the result's error
// fields rather than returned.
func (s *AnalysisService) Analyze(ctx context.Context, videoPath string) *model.AnalysisResult {
	result := &model.AnalysisResult{}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		verdict, err := s.deepfake.Run(ctx, videoPath)
		if err != nil {
			slog.ErrorContext(ctx, "deepfake pipeline failed", "video", videoPath, "error", err.Error())
			result.AuthenticityErr = err.Error()
			return
		}
		result.Authenticity = verdict
	}()

	go func() {
		defer wg.Done()
		report, err := s.narrative.Run(ctx, videoPath)
		if err != nil {
			slog.ErrorContext(ctx, "narrative pipeline failed", "video", videoPath, "error", err.Error())
			result.ReportErr = err.Error()
			return
		}
		result.Report = report
	}()

	wg.Wait()
	return result
}
