package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompt handles interactive user prompts
type Prompt struct {
	reader *bufio.Reader
	input  io.Reader
	writer io.Writer
}

// NewPrompt creates a new prompt handler
func NewPrompt(r io.Reader, w io.Writer) *Prompt {
	return &Prompt{
		reader: bufio.NewReader(r),
		input:  r,
		writer: w,
	}
}

// AskLine shows question verbatim and returns one line of input.
// Only the line terminator ("\n" or "\r\n") is removed; surrounding spaces
// and an empty line are returned as typed. A final line without terminator
// is accepted. io.EOF is returned when the input ends before any byte.
func (p *Prompt) AskLine(question string) (string, error) {
	if input, output, ok := canUseTerminal(p.input, p.writer); ok {
		return editLine(question, input, output)
	}

	fmt.Fprint(p.writer, question)
	return ReadLine(p.reader)
}

// ReadLine reads one line from r and strips its terminator.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return "", err
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// Confirm asks a yes/no question
func (p *Prompt) Confirm(question string, defaultYes bool) (bool, error) {
	defaultHint := "[y/N]"
	if defaultYes {
		defaultHint = "[Y/n]"
	}

	fmt.Fprintf(p.writer, "%s %s %s ", StyleInfo.Render("?"), question, StyleMuted.Render(defaultHint))

	line, err := ReadLine(p.reader)
	if errors.Is(err, io.EOF) {
		return defaultYes, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultYes, nil
	}
}

// canUseTerminal reports whether both ends are terminals, so a bubbletea
// program can take over the screen.
func canUseTerminal(reader io.Reader, writer io.Writer) (*os.File, *os.File, bool) {
	input, okInput := reader.(*os.File)
	output, okOutput := writer.(*os.File)
	if !okInput || !okOutput {
		return nil, nil, false
	}
	if !term.IsTerminal(int(input.Fd())) || !term.IsTerminal(int(output.Fd())) {
		return nil, nil, false
	}
	return input, output, true
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Print helpers

// PrintHeader prints a styled header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render(title))
}

// PrintSubheader prints a styled subheader
func PrintSubheader(w io.Writer, title string) {
	fmt.Fprintln(w, StyleSubtitle.Render(title))
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", StyleSuccess.Render("✓"), message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", StyleError.Render("✗"), message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", StyleWarning.Render("!"), message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", StyleInfo.Render("ℹ"), message)
}

// PrintStep prints a step indicator
func PrintStep(w io.Writer, current, total int, message string) {
	step := StylePrimary.Render(fmt.Sprintf("[%d/%d]", current, total))
	fmt.Fprintf(w, "%s %s\n", step, message)
}
