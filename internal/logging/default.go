package logging

import (
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var levelStyles = map[Level]lipgloss.Style{
	DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")),
	InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")),
	WarnLevel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00")),
	ErrorLevel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444")),
}

// DefaultLogger writes one line per entry: level tag, message, error and
// sorted key=value fields.
type DefaultLogger struct {
	out       *log.Logger
	level     *Level
	fields    Fields
	useColors bool
}

// NewDefaultLogger logs to stderr, colored when stderr is a terminal.
func NewDefaultLogger() *DefaultLogger {
	return NewLogger(os.Stderr, isTerminal(os.Stderr))
}

func NewLogger(w io.Writer, useColors bool) *DefaultLogger {
	level := InfoLevel
	return &DefaultLogger{
		out:       log.New(w, "", log.LstdFlags),
		level:     &level,
		fields:    make(Fields),
		useColors: useColors,
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (d *DefaultLogger) format(level Level, err error, msg string, fields ...Fields) string {
	all := make(Fields, len(d.fields))
	maps.Copy(all, d.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}

	tag := "[" + level.String() + "]"
	if d.useColors {
		tag = levelStyles[level].Render(tag)
	}

	var sb strings.Builder
	sb.WriteString(tag)
	sb.WriteByte(' ')
	sb.WriteString(msg)
	if err != nil {
		fmt.Fprintf(&sb, ": %v", err)
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, all[k])
	}
	return sb.String()
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields ...Fields) {
	if level < *d.level {
		return
	}
	d.out.Println(d.format(level, err, msg, fields...))
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.log(DebugLevel, nil, msg, fields...) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.log(InfoLevel, nil, msg, fields...) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.log(WarnLevel, nil, msg, fields...) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields...)
}

// WithFields shares the output and level with its parent.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(d.fields)+len(fields))
	maps.Copy(merged, d.fields)
	maps.Copy(merged, fields)
	return &DefaultLogger{
		out:       d.out,
		level:     d.level,
		fields:    merged,
		useColors: d.useColors,
	}
}

func (d *DefaultLogger) SetLevel(level Level) {
	*d.level = level
}
