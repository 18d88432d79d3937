package ui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func sendKeys(m lineEditor, msgs ...tea.KeyMsg) lineEditor {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(lineEditor)
	}
	return m
}

func TestLineEditor(t *testing.T) {
	typed := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" Acme ")}

	tests := []struct {
		name    string
		keys    []tea.KeyMsg
		want    string
		wantErr error
	}{
		{"enter returns value as typed", []tea.KeyMsg{typed, {Type: tea.KeyEnter}}, " Acme ", nil},
		{"enter on empty line", []tea.KeyMsg{{Type: tea.KeyEnter}}, "", nil},
		{"ctrl+d on empty line is EOF", []tea.KeyMsg{{Type: tea.KeyCtrlD}}, "", io.EOF},
		{"esc cancels", []tea.KeyMsg{typed, {Type: tea.KeyEsc}}, "", ErrInterrupted},
		{"ctrl+c cancels", []tea.KeyMsg{{Type: tea.KeyCtrlC}}, "", ErrInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sendKeys(newLineEditor("Company: ", 40), tt.keys...)
			got, err := m.result()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("result() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("result() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineEditorKeepsLongInput(t *testing.T) {
	long := strings.Repeat("Acme Holdings ", 200)
	m := sendKeys(newLineEditor("Company: ", 40),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(long)},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	got, err := m.result()
	if err != nil {
		t.Fatalf("result() error = %v", err)
	}
	if got != long {
		t.Errorf("result() kept %d of %d runes", len([]rune(got)), len([]rune(long)))
	}
}

func TestLineEditorCtrlDWithTextKeepsEditing(t *testing.T) {
	m := sendKeys(newLineEditor("Company: ", 40),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Acme")},
		tea.KeyMsg{Type: tea.KeyCtrlD},
	)
	if m.eof || m.done {
		t.Fatal("ctrl+d with text on the line should not finish the prompt")
	}
}

func TestLineEditorView(t *testing.T) {
	m := newLineEditor("Company: ", 40)
	if view := m.View(); !strings.Contains(view, m.hint) {
		t.Errorf("View() while editing = %q, want the hint", view)
	}

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Acme")}, tea.KeyMsg{Type: tea.KeyEnter})
	if view := m.View(); view != "Company: Acme\n" {
		t.Errorf("View() after enter = %q, want the answered prompt", view)
	}
}
