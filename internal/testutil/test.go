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

// Package test provides utility functions and deterministic stub capabilities
// to support the application's test suite. It helps in setting up a consistent
// test environment, loading test-specific configurations, and substituting
// every remote inference capability with an in-memory fake.
package test

import (
	"image"
	"image/color"
	"image/jpeg"
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-media-verify/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are loaded only once per
// test binary.
type StateManager struct {
	config *cloud.Config
}

// state is a package-level variable that holds the singleton instance of StateManager.
var state = &StateManager{}

// HandleErr is a simple test helper that fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS configures the environment variables the configuration loader
// depends on, pointing it at the test-specific TOML files
// (configs/.env.test.toml overrides).
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration loaded from the
// TOML files. Tests that only exercise pipeline logic should prefer
// NewPipelineConfig, which needs no files on disk.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.config = config
	}
	return state.config
}

// NewPipelineConfig returns an in-memory configuration carrying the default
// numeric contracts of both pipelines, scaled nowhere. Unit tests use it so
// they never depend on the working directory.
func NewPipelineConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "media-verify-test"
	config.Application.ThreadPoolSize = 2
	config.Analysis = cloud.Analysis{
		FrameInterval:  15,
		SequenceLength: 108,
		CropSize:       224,
		KeywordCount:   5,
		TopK:           5,
	}
	config.Summaries = cloud.Summaries{
		TranscriptMaxLength: 70,
		TranscriptMinLength: 50,
		ArticleMaxLength:    100,
		ArticleMinLength:    100,
	}
	config.News = cloud.News{
		BaseURL:          "http://127.0.0.1:0",
		MaxResults:       50,
		PageSize:         100,
		SortBy:           "relevance",
		TimeoutInSeconds: 5,
	}
	config.Inference = cloud.Inference{
		ModelServerURL:   "http://127.0.0.1:0",
		WhisperURL:       "http://127.0.0.1:0",
		FeatureDim:       8,
		TimeoutInSeconds: 5,
	}
	return config
}

// NewTestImage returns a solid-color RGBA image of the given size.
func NewTestImage(width, height int, fill color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	return img
}

// WriteTestJPEG writes a solid-color JPEG of the given size to path.
func WriteTestJPEG(path string, width, height int, fill color.Color) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return jpeg.Encode(file, NewTestImage(width, height, fill), nil)
}
