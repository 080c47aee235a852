// Package logging wires tokenuze's diagnostic output to the standard
// library "log" package, gated by TOKENUZE_DEBUG — the same idiom
// cmd/openusage/main.go uses for OPENUSAGE_DEBUG: silent by default,
// verbose to stderr only when the operator asks for it.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

var logger = log.New(io.Discard, "", log.LstdFlags)

func init() {
	if os.Getenv("TOKENUZE_DEBUG") != "" {
		logger.SetOutput(os.Stderr)
	}
}

// Field is one key/value pair attached to a structured log line.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

func render(level, msg string, fields []Field) string {
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" ")
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

// Warn logs a record-level parse failure: {provider, path, line_index,
// error_name} per spec.md §4.4/§7. The pipeline continues regardless.
func Warn(msg string, fields ...Field) {
	logger.Print(render("warn", msg, fields))
}

// Info logs a non-fatal, expected condition such as a missing optional
// input (spec.md §7).
func Info(msg string, fields ...Field) {
	logger.Print(render("info", msg, fields))
}
