// Package main provides the entry point for the wallpick wallpaper browser.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
