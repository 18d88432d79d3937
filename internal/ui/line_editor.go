package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kokjohn0824/financial-researcher/internal/i18n"
)

// ErrInterrupted is returned when the user cancels a terminal prompt.
var ErrInterrupted = errors.New(i18n.MsgCancelled)

// lineEditor edits one line with the prompt rendered in front of the cursor.
type lineEditor struct {
	input  textinput.Model
	hint   string
	done   bool
	eof    bool
	cancel bool
}

func newLineEditor(prompt string, width int) lineEditor {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = i18n.MsgTextinputPlaceholder
	ti.PlaceholderStyle = StyleMuted
	ti.CharLimit = 0 // no limit
	ti.Width = width
	ti.Focus()
	return lineEditor{input: ti, hint: i18n.MsgTextinputSubmitHint}
}

func (m lineEditor) Init() tea.Cmd {
	return textinput.Blink
}

func (m lineEditor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.eof = true
				return m, tea.Quit
			}
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancel = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m lineEditor) View() string {
	if m.done || m.eof || m.cancel {
		// leave the answered prompt on screen like a plain read would
		return m.input.Prompt + m.input.Value() + "\n"
	}
	return m.input.View() + "\n" + StyleMuted.Render(m.hint) + "\n"
}

// result maps the final editor state to what AskLine returns.
func (m lineEditor) result() (string, error) {
	switch {
	case m.cancel:
		return "", ErrInterrupted
	case m.eof:
		return "", io.EOF
	}
	return m.input.Value(), nil
}

// editLine runs the line editor on a terminal. The value is returned exactly as typed.
func editLine(prompt string, input, output *os.File) (string, error) {
	width := 48
	if w, _, err := term.GetSize(int(output.Fd())); err == nil && w > len(prompt)+8 {
		width = w - len(prompt) - 2
	}

	final, err := tea.NewProgram(newLineEditor(prompt, width), tea.WithInput(input), tea.WithOutput(output)).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(lineEditor)
	if !ok {
		return "", fmt.Errorf("unexpected line editor model: %T", final)
	}
	return m.result()
}
