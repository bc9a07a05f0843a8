//go:build !linux || wayland

package ui

import (
	"fyne.io/fyne/v2"

	"crtscope/internal/debug"
)

func applyMaximizeHint(fyne.Window, *debug.Logger) {}
