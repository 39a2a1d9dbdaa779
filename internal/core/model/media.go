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
// This file contains the entities that flow through the deepfake detection
// pipeline. All of them are transient: they are created by one command, handed
// to the next through the workflow context, and discarded when the invocation
// ends. Nothing here is persisted.
package model

import "image"

// Frame is a single decoded raster image plus its ordinal index in the source
// video. Frames are produced by the frame sampler in temporal order and are
// never mutated downstream.
type Frame struct {
	Index int         // The decoded frame index in the source video (0, k, 2k, ...).
	Image image.Image // The decoded raster image.
}

// FaceCrop is the sub-image of the single highest-confidence face detection in
// one frame. Frames with no detections produce no FaceCrop at all.
type FaceCrop struct {
	FrameIndex int         // The index of the source frame this crop came from.
	Confidence float64     // The detector's confidence score, in [0, 1].
	Image      image.Image // The cropped face region, clamped to the frame bounds.
}

// FeatureVector is a fixed-dimensionality numeric representation of one
// FaceCrop, produced by the feature-extraction capability.
type FeatureVector []float32

// FeatureSequence is the ordered list of feature vectors for one video. The
// ordering matches the temporal order of the face crops. The sequence
// classifier only accepts sequences normalized to a fixed length, so callers
// must run Normalized before classification.
type FeatureSequence struct {
	Vectors []FeatureVector
	Dim     int // The dimensionality of every vector in the sequence.
}

// NewFeatureSequence creates an empty sequence whose vectors will have the
// given dimensionality.
func NewFeatureSequence(dim int) *FeatureSequence {
	return &FeatureSequence{Vectors: make([]FeatureVector, 0), Dim: dim}
}

// Append adds a vector to the end of the sequence.
func (s *FeatureSequence) Append(v FeatureVector) {
	s.Vectors = append(s.Vectors, v)
}

// Len returns the current number of vectors in the sequence.
func (s *FeatureSequence) Len() int {
	return len(s.Vectors)
}

// Normalized returns a copy of the sequence adjusted to exactly `length`
// vectors: shorter sequences are zero-padded at the end, longer sequences are
// truncated from the end so the earliest `length` vectors survive. A sequence
// that is already the right length is copied unchanged. An empty sequence
// normalizes to all padding — that is a valid input for the classifier, not an
// error, and corresponds to a video in which no face was ever found.
func (s *FeatureSequence) Normalized(length int) *FeatureSequence {
	out := &FeatureSequence{Vectors: make([]FeatureVector, 0, length), Dim: s.Dim}
	for i := 0; i < length && i < len(s.Vectors); i++ {
		out.Vectors = append(out.Vectors, s.Vectors[i])
	}
	for len(out.Vectors) < length {
		out.Vectors = append(out.Vectors, make(FeatureVector, s.Dim))
	}
	return out
}

// AuthenticityVerdict is the deepfake pipeline's final output: the raw model
// probability and the thresholded boolean. Immutable once produced.
type AuthenticityVerdict struct {
	Probability float64 `json:"probability"` // The classifier's raw score in [0, 1].
	Fake        bool    `json:"fake"`        // True iff Probability is strictly greater than 0.5.
}

// NewAuthenticityVerdict applies the decision threshold to a raw probability.
// The comparison is strict: a probability of exactly 0.5 is judged real.
func NewAuthenticityVerdict(probability float64) *AuthenticityVerdict {
	return &AuthenticityVerdict{
		Probability: probability,
		Fake:        probability > 0.5,
	}
}
