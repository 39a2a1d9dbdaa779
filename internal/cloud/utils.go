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

// Package cloud provides configuration loading and external-service plumbing.
// This file implements the hierarchical configuration loader: a base TOML
// file is read first, then an environment-specific file (.env.local.toml,
// .env.test.toml, ...) overwrites its values. Secrets never live in the TOML
// files — they come from process environment variables, optionally seeded
// from a .env file via godotenv.
package cloud

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Constants for configuration loading and secret resolution.
const (
	ConfigFileBaseName  = ".env"              // Base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"             // Extension for configuration files.
	ConfigSeparator     = "."                 // Separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // Environment variable naming the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // Environment variable naming the runtime context (e.g., "local", "test").

	EnvNewsAPIKey   = "NEWSAPI_KEY"    // API key for the news-search service. Required.
	EnvCohereAPIKey = "COHERE_API_KEY" // API key for Cohere embeddings. Required only with the cohere provider.
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates baseConfig from the base TOML file and then overlays
// the environment-specific file on top of it. The config directory and the
// runtime name are taken from environment variables; the runtime defaults to
// "test" so the test suite is self-configuring.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	// Values in the environment-specific file overwrite the base values.
	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file %s with error: %s", envConfigFileName, err)
		}
	}
}

// LoadSecrets seeds process environment variables from a .env file when one
// is present and then resolves the news-search API key. The key check happens
// here, before any pipeline starts, so a misconfigured deployment fails fast
// instead of failing mid-analysis.
//
// Outputs:
//   - string: The news-search API key.
//   - error: A configuration error when the key is absent.
func LoadSecrets() (string, error) {
	// A missing .env file is fine; real deployments set variables directly.
	_ = godotenv.Load()

	key := os.Getenv(EnvNewsAPIKey)
	if key == "" {
		return "", fmt.Errorf("%s not set; add it to the environment or a .env file", EnvNewsAPIKey)
	}
	return key, nil
}
