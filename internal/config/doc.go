// Package config provides the configuration for parsedit.
//
// Configuration is built in three layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← PARSEDIT_*
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/parsedit/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The settings file may be TOML or YAML; the extension decides. A missing
// file is not an error.
//
// # Sub-packages
//
//   - loader: Configuration file decoding (TOML, YAML)
//   - watcher: File watching for parser definition live reload
//
// # Basic Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	for _, dir := range cfg.Parsers.Dirs {
//	    ...
//	}
//
// # Example File
//
//	[log]
//	level = "debug"
//
//	[parsers]
//	dirs = ["~/.config/parsedit/parsers"]
//	watch = true
//
//	[[mappings]]
//	glob = "*.rexx"
//	parser = "rexx"
//
//	[colors]
//	scheme = "monokai"
//	[colors.roles]
//	keyword = "#ff8800 bold"
//	[colors.alternates]
//	a = "red"
package config
