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

// Package commands_test contains unit tests for the pipeline commands. Every
// remote capability is substituted with a deterministic stub, so these tests
// exercise the commands' own logic: selection rules, pagination policy,
// ranking semantics, and error classification.
package commands_test

import (
	"context"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
)

// newChainContext builds a fresh workflow context seeded with the given
// primary input, mirroring what a chain does before its first command.
func newChainContext(input interface{}) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	if input != nil {
		chainCtx.Add(cor.CtxIn, input)
	}
	return chainCtx
}

// firstError returns one recorded error from the context, or nil.
func firstError(chainCtx cor.Context) error {
	for _, err := range chainCtx.GetErrors() {
		return err
	}
	return nil
}
