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

// AuthenticityClassifierCommand is the final stage of the deepfake pipeline.
// Its own responsibility is small: validate the sequence shape, call the
// classification capability, and apply the decision threshold. A malformed
// shape is a hard failure of this pipeline branch; the classifier is never
// called with input it was not trained on.
type AuthenticityClassifierCommand struct {
	cor.BaseCommand
	classifier     services.SequenceClassifier
	sequenceLength int
	featureDim     int
}

func NewAuthenticityClassifierCommand(
	name string,
	classifier services.SequenceClassifier,
	sequenceLength int,
	featureDim int) *AuthenticityClassifierCommand {
	return &AuthenticityClassifierCommand{
		BaseCommand:    *cor.NewBaseCommand(name),
		classifier:     classifier,
		sequenceLength: sequenceLength,
		featureDim:     featureDim,
	}
}

// Execute validates the sequence shape, obtains the raw fake probability, and
// writes the thresholded verdict to the output parameter.
func (c *AuthenticityClassifierCommand) Execute(context cor.Context) {
	sequence := context.Get(c.GetInputParam()).(*model.FeatureSequence)
	ctx := context.GetContext()

	if err := c.validateShape(sequence); err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	probability, err := c.classifier.Predict(ctx, sequence)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), model.NewAuthenticityVerdict(probability))
}

func (c *AuthenticityClassifierCommand) validateShape(sequence *model.FeatureSequence) error {
	if sequence.Len() != c.sequenceLength {
		return services.Wrap(services.ErrShapeMismatch,
			fmt.Sprintf("expected sequence length %d, got %d", c.sequenceLength, sequence.Len()), nil)
	}
	for i, v := range sequence.Vectors {
		if len(v) != c.featureDim {
			return services.Wrap(services.ErrShapeMismatch,
				fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(v), c.featureDim), nil)
		}
	}
	return nil
}
