// Package file provides filesystem-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML settings file (config.toml)
//   - PromptStore: user-editable prompt templates (prompts/*.txt)
package file
