// Package config provides centralized configuration management for the exporter.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file (config.yaml, configs/config.yaml or --config)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BUSGOV_<SECTION>_<FIELD>:
//
//	BUSGOV_REGISTRY_BASE_URL=https://bus.gov.ru/public-rest/api
//	BUSGOV_REGISTRY_SELECTED_YEAR=2023
//	BUSGOV_FETCH_WORKERS=4
//	BUSGOV_EXPORT_OUTPUT_DIR=/tmp/exports
//	BUSGOV_LOGGING_LEVEL=debug
//
// # Validation
//
// Struct tags are checked with go-playground/validator at load time, so URLs,
// worker counts and log levels are known to be sane before any request is made.
//
// # Testing
//
// Use Default() for a configuration that needs no environment or files.
package config
