package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// Status and progress messages go to stderr so stdout carries only results.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stderr, colorize(colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stderr, colorize(colorRed, "✗ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stderr, colorize(colorYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func printStep(format string, args ...any) {
	fmt.Fprintln(stderr, colorize(colorCyan, "→ "+fmt.Sprintf(format, args...)))
}

func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(stderr, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}

// printWrapped writes text to w, breaking lines at width runes on word
// boundaries and preserving blank lines between paragraphs.
func printWrapped(w io.Writer, text string, width int) {
	for i, para := range strings.Split(text, "\n") {
		if i > 0 {
			fmt.Fprintln(w)
		}
		line := 0
		for j, word := range strings.Fields(para) {
			n := len([]rune(word))
			if j > 0 && line+1+n > width {
				fmt.Fprintln(w)
				line = 0
			} else if j > 0 {
				fmt.Fprint(w, " ")
				line++
			}
			fmt.Fprint(w, word)
			line += n
		}
	}
	fmt.Fprintln(w)
}
