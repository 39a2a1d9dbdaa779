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

// Package services defines the capability interfaces consumed by the pipeline
// commands and the production bindings behind them. This file holds the error
// taxonomy shared by every binding and command.
//
// The sentinel values below classify failures by how the pipelines must react:
//
//   - ErrConfiguration: missing credentials or settings. Fatal; raised before
//     any pipeline work starts.
//   - ErrMediaRead: the video container cannot be opened or decoded. Fatal to
//     both pipelines.
//   - ErrNoAudioTrack: the video has no audio stream. Fatal to the narrative
//     pipeline only; the deepfake pipeline is unaffected.
//   - ErrShapeMismatch: a feature sequence with the wrong shape reached the
//     classifier. Fatal to the deepfake pipeline only.
//   - ErrRetrieval: the news-search API returned a non-success status. This is
//     recovered locally — pagination stops and whatever was collected is used.
//
// "No faces found" and "no articles found" are deliberately absent: they are
// valid terminal states expressed in the data model (an all-padding feature
// sequence, the empty-report sentinel), not errors.
package services

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrMediaRead     = errors.New("media read error")
	ErrNoAudioTrack  = errors.New("no audio track")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrRetrieval     = errors.New("retrieval error")
)

// Wrap tags an error with one of the sentinel markers above while preserving
// the underlying cause for errors.Is / errors.As inspection.
func Wrap(marker error, message string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, message, err)
	}
	return fmt.Errorf("%w: %s", marker, message)
}
