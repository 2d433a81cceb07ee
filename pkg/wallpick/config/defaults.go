// Package config loads and persists the wallpick configuration file.
package config

import (
	"slices"

	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
)

// Default configuration values for wallpick.
const (
	// AppName names the config, state and data directories.
	AppName = "wallpick"

	// FileName is the config file name inside ConfigDir.
	FileName = "config.yaml"

	// DefaultStartFolder is browsed when no folder is given.
	DefaultStartFolder = "."

	// DefaultRetentionDays is how long history entries are kept.
	DefaultRetentionDays = 90

	// DefaultLogLevel is the level of the log file.
	DefaultLogLevel = "info"

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "10MB"
)

// DefaultFormats are the image extensions browsed by default.
var DefaultFormats = slices.Clone(navigator.DefaultFormats)

// DefaultIgnore is empty so listings match the directory exactly.
var DefaultIgnore = []string{}
