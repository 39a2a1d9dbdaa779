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

// Package cor (Chain of Responsibility) provides the fundamental building blocks
// for creating analysis workflows. This file defines the core interfaces that
// govern the behavior of all components within the pattern. Both detection
// pipelines (deepfake and narrative verification) are assembled from these
// pieces: each media or inference stage is a Command, and each pipeline is a
// Chain that pipes one stage's output into the next stage's input.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the well-known keys used to manage the primary data
// flow within a BaseChain.
const (
	// CtxIn is the default key for the primary input of a command. The BaseChain
	// populates this key with the output of the previous command.
	CtxIn = "__IN__"
	// CtxOut is the default key where a command should place its primary output.
	// The BaseChain picks the value up and feeds it to the next command.
	CtxOut = "__OUT__"
)

// Context defines the interface for the shared state object that is passed
// through a chain of commands. It acts as a property bag for a single pipeline
// invocation, carrying intermediate entities (frames, face crops, transcripts,
// articles), errors, and temporary artifacts between commands. Nothing stored
// in a Context outlives the invocation; callers are expected to defer Close so
// scratch files such as the extracted audio track are always removed.
type Context interface {
	// SetContext sets the standard Go `context.Context`, used for cancellation
	// signals, deadlines, and OpenTelemetry trace propagation.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go `context.Context`.
	GetContext() context.Context

	// Add stores a key-value pair in the context. This is the primary way
	// commands share data. It returns the Context for fluent chaining.
	Add(key string, value interface{}) Context

	// AddError records an error that occurred within a command. The key should
	// be the name of the command that produced the error.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the workflow, keyed by
	// command name.
	GetErrors() map[string]error

	// Get retrieves a value from the context by its key.
	Get(key string) interface{}

	// Remove deletes a key-value pair from the context.
	Remove(key string)

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool

	// AddTempFile tracks a temporary file created during the workflow so that
	// Close can delete it regardless of how the pipeline exits.
	AddTempFile(file string)

	// GetTempFiles returns all tracked temporary file paths.
	GetTempFiles() []string

	// Close deletes every tracked temporary file. It should be deferred at the
	// start of a workflow invocation.
	Close()
}

// Executable is the interface for any object with a core execution step.
type Executable interface {
	// Execute contains the primary business logic of the object. It reads its
	// inputs from the Context and writes its outputs back to it.
	Execute(context Context)
}

// Command represents an atomic, testable unit of work: one stage of a
// detection pipeline.
type Command interface {
	Executable

	// GetName returns the unique name of the command, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the context key the command reads its primary input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary output to.
	GetOutputParam() string

	// IsExecutable checks whether the command can run with the current state of
	// the Context. This is a precondition check before Execute is called.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns a metric counter for successful executions.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns a metric counter for failed executions.
	GetErrorCounter() metric.Int64Counter
}

// Chain represents an ordered sequence of commands. A Chain is itself a
// Command, so chains can be nested inside other chains.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after a
	// command records an error. Both detection pipelines leave this false:
	// every stage is data-dependent on its predecessor, so there is nothing
	// useful to run once a stage has failed.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
