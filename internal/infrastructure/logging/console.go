// Package logging provides the console implementation of the application
// logger interface.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// ConsoleLogger writes structured lines to stderr, filtered by level
type ConsoleLogger struct {
	minLevel int
}

// NewConsoleLogger creates a console logger. Unknown levels log everything.
func NewConsoleLogger(level string) *ConsoleLogger {
	rank, ok := levelRank[strings.ToLower(level)]
	if !ok {
		rank = 0
	}
	return &ConsoleLogger{minLevel: rank}
}

// Log writes one line: timestamp, level, message, JSON metadata
func (l *ConsoleLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[strings.ToLower(level)]
	if ok && rank < l.minLevel {
		return
	}
	line := fmt.Sprintf("%s [%s] %s", time.Now().UTC().Format(time.RFC3339), strings.ToUpper(level), message)
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			line += " " + string(data)
		}
	}
	fmt.Fprintln(os.Stderr, line)
}
