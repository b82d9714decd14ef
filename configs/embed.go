// Package configs provides the embedded configuration templates written by
// `wordex config init`.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/wordex/config.yaml)
//  3. Project config (.wordex.yaml)
//  4. Environment variables (WORDEX_*)
package configs

import _ "embed"

// UserConfigTemplate is written to the user config path.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written to .wordex.yaml in the project root.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
