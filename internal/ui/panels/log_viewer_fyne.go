// Package panels holds the Fyne debug panels embedded in the control
// surface window.
package panels

import (
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"crtscope/internal/debug"
)

// LogViewerFyne creates a Fyne panel showing log entries.
// Returns both the container and an update function that should be called periodically.
func LogViewerFyne(logger *debug.Logger, window fyne.Window) (*fyne.Container, func()) {
	// Log display text (scrollable, selectable for copy/paste)
	logText := widget.NewMultiLineEntry()
	logText.Wrapping = fyne.TextWrapOff
	// Disable editing but allows text selection and copy (Ctrl+C works)
	logText.Disable()
	logScroll := container.NewScroll(logText)
	logScroll.SetMinSize(fyne.NewSize(600, 300))

	// Component filter checkboxes, one per pipeline stage
	components := []struct {
		name      string
		component debug.Component
	}{
		{"Sample", debug.ComponentSample},
		{"Physics", debug.ComponentPhysics},
		{"Interp", debug.ComponentInterp},
		{"Segment", debug.ComponentSegment},
		{"Phosphor", debug.ComponentPhosphor},
		{"Compositor", debug.ComponentCompositor},
		{"Renderer", debug.ComponentRenderer},
		{"Worker", debug.ComponentWorker},
		{"UI", debug.ComponentUI},
	}
	checks := make(map[debug.Component]*widget.Check, len(components))
	checkRow := container.NewHBox(widget.NewLabel("Components:"))
	for _, c := range components {
		check := widget.NewCheck(c.name, nil)
		check.SetChecked(true)
		checks[c.component] = check
		checkRow.Add(check)
	}

	// Level filter dropdown
	levelSelect := widget.NewSelect([]string{"None", "Error", "Warning", "Info", "Debug", "Trace"}, nil)
	levelSelect.SetSelected("Info")

	// Auto-scroll checkbox
	autoScrollCheck := widget.NewCheck("Auto-scroll", nil)
	autoScrollCheck.SetChecked(true)

	// Copy button - copy all visible text to clipboard
	copyBtn := widget.NewButton("Copy All", func() {
		text := logText.Text
		if text != "" && window != nil {
			window.Clipboard().SetContent(text)
		}
	})

	// Save to file button
	saveBtn := widget.NewButton("Save Logs", func() {
		timestamp := time.Now().Format("20060102_150405")
		filename := fmt.Sprintf("logs_%s.txt", timestamp)

		logContent := logText.Text
		if logContent == "" {
			logContent = "No log entries"
		}
		logContent = fmt.Sprintf("crtscope logs\nGenerated: %s\n\n%s",
			time.Now().Format("2006-01-02 15:04:05"), logContent)

		err := os.WriteFile(filename, []byte(logContent), 0644)
		if err != nil {
			fmt.Printf("Error saving logs: %v\n", err)
		} else {
			fmt.Printf("Logs saved to: %s\n", filename)
		}
	})

	filterContainer := container.NewVBox(
		checkRow,
		container.NewHBox(
			widget.NewLabel("Level:"),
			levelSelect,
			autoScrollCheck,
			widget.NewSeparator(),
			copyBtn,
			saveBtn,
		),
	)

	updateLogs := func() {
		if logger == nil {
			logText.SetText("Logger not available")
			return
		}

		componentFilter := make(map[debug.Component]bool, len(checks))
		for component, check := range checks {
			componentFilter[component] = check.Checked
		}

		var levelFilter debug.LogLevel
		switch levelSelect.Selected {
		case "None":
			levelFilter = debug.LogLevelNone
		case "Error":
			levelFilter = debug.LogLevelError
		case "Warning":
			levelFilter = debug.LogLevelWarning
		case "Info":
			levelFilter = debug.LogLevelInfo
		case "Debug":
			levelFilter = debug.LogLevelDebug
		case "Trace":
			levelFilter = debug.LogLevelTrace
		default:
			levelFilter = debug.LogLevelInfo
		}

		allEntries := logger.GetEntries()

		filtered := make([]debug.LogEntry, 0, len(allEntries))
		for _, entry := range allEntries {
			if !componentFilter[entry.Component] {
				continue
			}
			if entry.Level < levelFilter {
				continue
			}
			filtered = append(filtered, entry)
		}

		var text string
		if len(filtered) == 0 {
			text = "No log entries (filters may be too restrictive)"
		} else {
			// Show most recent entries if auto-scroll
			startIdx := 0
			maxEntries := 1000 // Limit to prevent UI lag
			if autoScrollCheck.Checked && len(filtered) > maxEntries {
				startIdx = len(filtered) - maxEntries
			}
			for i := startIdx; i < len(filtered); i++ {
				entry := filtered[i]
				text += entry.Format() + "\n"
			}
		}

		logText.SetText(text)

		if autoScrollCheck.Checked {
			logScroll.ScrollToBottom()
		}
	}

	mainContainer := container.NewBorder(
		filterContainer, // Top
		nil,             // Bottom
		nil,             // Left
		nil,             // Right
		logScroll,       // Center
	)

	return mainContainer, updateLogs
}
