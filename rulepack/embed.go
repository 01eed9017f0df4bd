// Package rulepack embeds the default YAML rule base for compile-time inclusion.
// This is a standalone package with no imports to avoid circular dependencies.
//
// Usage:
//
//	rules.LoadFromFS(rulepack.FS, "rules")
package rulepack

import "embed"

//go:embed rules/*.yaml
var FS embed.FS
