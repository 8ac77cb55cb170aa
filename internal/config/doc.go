// Copyright (c) 2025 SM Gaming Studio
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management.
//
// Configuration comes from a TOML file under the application data directory
// (~/.sm-ai-partner/config.toml by default), with sensible built-in defaults
// and environment variable overrides for credentials. A .env file in the
// working directory is honored for local development. The config file can be
// watched for changes so edits take effect without a restart.
package config
