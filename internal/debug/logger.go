package debug

import (
	"fmt"
	"sync"
	"time"
)

// Logger represents the centralized logging system
type Logger struct {
	// Circular buffer for log entries
	entries    []LogEntry
	entriesMu  sync.RWMutex
	maxEntries int
	writeIndex int
	entryCount int

	// Component enable/disable flags
	componentEnabled map[Component]bool
	componentMu      sync.RWMutex

	// Minimum log level (entries below this level are filtered)
	minLevel LogLevel
	levelMu  sync.RWMutex

	// Channel for thread-safe logging
	logChan chan LogEntry

	// Shutdown channel
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewLogger creates a new logger instance
func NewLogger(maxEntries int) *Logger {
	if maxEntries < 100 {
		maxEntries = 100 // Minimum buffer size
	}

	logger := &Logger{
		entries:          make([]LogEntry, maxEntries),
		maxEntries:       maxEntries,
		writeIndex:       0,
		entryCount:       0,
		componentEnabled: make(map[Component]bool),
		minLevel:         LogLevelInfo, // Default to Info level
		logChan:          make(chan LogEntry, 1000), // Buffered channel
		shutdown:         make(chan struct{}),
	}

	// Disable all components by default (logging is opt-in)
	logger.componentEnabled[ComponentSample] = false
	logger.componentEnabled[ComponentPhysics] = false
	logger.componentEnabled[ComponentInterp] = false
	logger.componentEnabled[ComponentSegment] = false
	logger.componentEnabled[ComponentPhosphor] = false
	logger.componentEnabled[ComponentCompositor] = false
	logger.componentEnabled[ComponentRenderer] = false
	logger.componentEnabled[ComponentWorker] = false
	logger.componentEnabled[ComponentUI] = false

	// Start log processing goroutine
	logger.wg.Add(1)
	go logger.processLogs()

	return logger
}

// processLogs processes log entries from the channel
func (l *Logger) processLogs() {
	defer l.wg.Done()

	for {
		select {
		case entry := <-l.logChan:
			l.addEntry(entry)
		case <-l.shutdown:
			// Drain remaining logs
			for {
				select {
				case entry := <-l.logChan:
					l.addEntry(entry)
				default:
					return
				}
			}
		}
	}
}

// addEntry adds a log entry to the circular buffer
func (l *Logger) addEntry(entry LogEntry) {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()

	// Add entry at current write index
	l.entries[l.writeIndex] = entry
	l.writeIndex = (l.writeIndex + 1) % l.maxEntries

	// Update entry count (don't exceed maxEntries)
	if l.entryCount < l.maxEntries {
		l.entryCount++
	}
}

// Log logs a message with the specified component and level
func (l *Logger) Log(component Component, level LogLevel, message string, data map[string]interface{}) {
	// Check if component is enabled
	l.componentMu.RLock()
	enabled := l.componentEnabled[component]
	l.componentMu.RUnlock()

	if !enabled {
		return
	}

	// Check if level is high enough
	l.levelMu.RLock()
	minLevel := l.minLevel
	l.levelMu.RUnlock()

	if level < minLevel {
		return
	}

	// Create log entry
	entry := LogEntry{
		Timestamp: time.Now(),
		Component: component,
		Level:     level,
		Message:   message,
		Data:      data,
	}

	// Send to channel (non-blocking if channel is full)
	select {
	case l.logChan <- entry:
	default:
		// Channel is full, drop entry (or could use a larger buffer)
		// For now, we'll drop it to prevent blocking
	}
}

// Logf logs a formatted message
func (l *Logger) Logf(component Component, level LogLevel, format string, args ...interface{}) {
	l.Log(component, level, fmt.Sprintf(format, args...), nil)
}

// Convenience methods for each component
func (l *Logger) LogSample(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentSample, level, message, data)
}

func (l *Logger) LogPhysics(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentPhysics, level, message, data)
}

func (l *Logger) LogInterp(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentInterp, level, message, data)
}

func (l *Logger) LogSegment(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentSegment, level, message, data)
}

func (l *Logger) LogPhosphor(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentPhosphor, level, message, data)
}

func (l *Logger) LogCompositor(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentCompositor, level, message, data)
}

func (l *Logger) LogRenderer(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentRenderer, level, message, data)
}

func (l *Logger) LogWorker(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentWorker, level, message, data)
}

func (l *Logger) LogUI(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentUI, level, message, data)
}

// Convenience methods with formatted strings
func (l *Logger) LogSamplef(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentSample, level, format, args...)
}

func (l *Logger) LogPhysicsf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentPhysics, level, format, args...)
}

func (l *Logger) LogInterpf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentInterp, level, format, args...)
}

func (l *Logger) LogSegmentf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentSegment, level, format, args...)
}

func (l *Logger) LogPhosphorf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentPhosphor, level, format, args...)
}

func (l *Logger) LogCompositorf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentCompositor, level, format, args...)
}

func (l *Logger) LogRendererf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentRenderer, level, format, args...)
}

func (l *Logger) LogWorkerf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentWorker, level, format, args...)
}

func (l *Logger) LogUIf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentUI, level, format, args...)
}

// GetEntries returns a copy of all log entries (oldest first)
func (l *Logger) GetEntries() []LogEntry {
	l.entriesMu.RLock()
	defer l.entriesMu.RUnlock()

	if l.entryCount == 0 {
		return []LogEntry{}
	}

	entries := make([]LogEntry, l.entryCount)

	if l.entryCount < l.maxEntries {
		// Buffer not full yet, return entries from 0 to entryCount
		copy(entries, l.entries[:l.entryCount])
	} else {
		// Buffer is full, return entries starting from writeIndex (oldest)
		// and wrapping around
		for i := 0; i < l.entryCount; i++ {
			idx := (l.writeIndex + i) % l.maxEntries
			entries[i] = l.entries[idx]
		}
	}

	return entries
}

// GetRecentEntries returns the most recent N entries
func (l *Logger) GetRecentEntries(count int) []LogEntry {
	allEntries := l.GetEntries()
	if count >= len(allEntries) {
		return allEntries
	}
	return allEntries[len(allEntries)-count:]
}

// Clear clears all log entries
func (l *Logger) Clear() {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()

	l.entryCount = 0
	l.writeIndex = 0
}

// SetComponentEnabled enables or disables logging for a component
func (l *Logger) SetComponentEnabled(component Component, enabled bool) {
	l.componentMu.Lock()
	defer l.componentMu.Unlock()
	l.componentEnabled[component] = enabled
}

// IsComponentEnabled returns whether a component is enabled
func (l *Logger) IsComponentEnabled(component Component) bool {
	l.componentMu.RLock()
	defer l.componentMu.RUnlock()
	return l.componentEnabled[component]
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level LogLevel) {
	l.levelMu.Lock()
	defer l.levelMu.Unlock()
	l.minLevel = level
}

// GetMinLevel returns the minimum log level
func (l *Logger) GetMinLevel() LogLevel {
	l.levelMu.RLock()
	defer l.levelMu.RUnlock()
	return l.minLevel
}

// Shutdown shuts down the logger and waits for all logs to be processed
func (l *Logger) Shutdown() {
	close(l.shutdown)
	l.wg.Wait()
}

