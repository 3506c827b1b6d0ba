package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format returns a multi-line rendering for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString(color(colorRed+colorBold, "ERROR"))
	if e.Code != "" {
		b.WriteString(color(colorBold, " "+e.Code))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Detail != "" {
		b.WriteString("\n")
		writeWrapped(&b, e.Detail)
	}
	if tmpl, ok := registry[e.Code]; ok && tmpl.Detail != "" {
		b.WriteString("\n")
		writeWrapped(&b, color(colorGray, tmpl.Detail))
	}
	if e.Wrapped != nil {
		b.WriteString("\n  ")
		b.WriteString(color(colorGray, "cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		b.WriteString("\n  ")
		b.WriteString(color(colorCyan, "Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

// Fprint writes err to w, using Format for *Error values.
func Fprint(w io.Writer, err error) {
	var e *Error
	if stderrors.As(err, &e) {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "%s %s\n", color(colorRed+colorBold, "ERROR:"), err.Error())
}

func writeWrapped(b *strings.Builder, text string) {
	for _, line := range wrapText(text, 72) {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
