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

// Package cor_test exercises the chain plumbing both detection pipelines are
// built on: the flip-flop piping of outputs into inputs, the stop-on-error
// behavior, named parameter keys, and temporary file cleanup.
package cor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/zeebo/assert"
)

// appendCommand appends its tag to the string it reads from its input key and
// writes the result to its output key.
type appendCommand struct {
	cor.BaseCommand
	tag string
}

func (c *appendCommand) Execute(ctx cor.Context) {
	in := ctx.Get(c.GetInputParam()).(string)
	ctx.Add(c.GetOutputParam(), in+c.tag)
}

// failingCommand records an error and produces no output.
type failingCommand struct {
	cor.BaseCommand
	err error
}

func (c *failingCommand) Execute(ctx cor.Context) {
	ctx.AddError(c.GetName(), c.err)
}

func newChainContext() cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

// TestChainPipesOutputToInput verifies that each command's CtxOut value
// becomes the next command's CtxIn value.
func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(&appendCommand{BaseCommand: *cor.NewBaseCommand("first"), tag: "-a"})
	chain.AddCommand(&appendCommand{BaseCommand: *cor.NewBaseCommand("second"), tag: "-b"})

	ctx := newChainContext()
	ctx.Add(cor.CtxIn, "seed")
	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "seed-a-b", ctx.Get(cor.CtxIn))
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

// TestChainStopsOnFirstError verifies that a recorded error halts the chain
// before the next command runs.
func TestChainStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(&appendCommand{BaseCommand: *cor.NewBaseCommand("first"), tag: "-a"})
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("second"), err: boom})
	chain.AddCommand(&appendCommand{BaseCommand: *cor.NewBaseCommand("third"), tag: "-c"})

	ctx := newChainContext()
	ctx.Add(cor.CtxIn, "seed")
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, boom, ctx.GetErrors()["second"])
	// The third command never ran, so the piped value is still the first
	// command's output.
	assert.Equal(t, "seed-a", ctx.Get(cor.CtxIn))
}

// TestNamedOutputSurvivesPiping verifies that a command publishing under a
// custom key is not disturbed by the flip-flop, so a later command can read
// the value even after other stages have run in between.
func TestNamedOutputSurvivesPiping(t *testing.T) {
	publisher := &appendCommand{BaseCommand: *cor.NewBaseCommand("publisher"), tag: "-p"}
	publisher.BaseCommand.OutputParamName = "__shared__"

	// The subscriber reads the named key, not the piped slot.
	subscriber := &appendCommand{BaseCommand: *cor.NewBaseCommand("subscriber"), tag: "-s"}
	subscriber.BaseCommand.InputParamName = "__shared__"

	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(publisher)
	chain.AddCommand(subscriber)

	ctx := newChainContext()
	ctx.Add(cor.CtxIn, "seed")
	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "seed-p", ctx.Get("__shared__"))
	assert.Equal(t, "seed-p-s", ctx.Get(cor.CtxIn))
}

// TestContextCloseRemovesTempFiles verifies Close deletes tracked artifacts
// and tolerates paths that are already gone.
func TestContextCloseRemovesTempFiles(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "scratch.mp3")
	assert.NoError(t, os.WriteFile(scratch, []byte("audio"), 0o644))

	ctx := newChainContext()
	ctx.AddTempFile(scratch)
	ctx.AddTempFile(filepath.Join(t.TempDir(), "never-created.jpg"))
	ctx.Close()

	_, err := os.Stat(scratch)
	assert.True(t, os.IsNotExist(err))
}
