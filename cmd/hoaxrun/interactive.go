package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hoaxlang/hoaxrt/shim"
	"github.com/hoaxlang/hoaxrt/word"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateEditInput modelState = iota
	stateShowResult
)

type inspectModel struct {
	err       error
	result    *shim.Result
	filename  string
	wasmBytes []byte
	memPages  uint32
	input     textinput.Model
	state     modelState
}

func newInspectModel(filename string, wasmBytes []byte, memPages uint32) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "bytes the program will read"
	ti.Prompt = "stdin: "
	ti.Width = 60
	ti.Focus()

	return &inspectModel{
		filename:  filename,
		wasmBytes: wasmBytes,
		memPages:  memPages,
		input:     ti,
		state:     stateEditInput,
	}
}

type evalMsg struct {
	err    error
	result *shim.Result
}

func (m *inspectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectModel) evaluate() tea.Msg {
	res, err := shim.Eval(context.Background(), m.wasmBytes,
		strings.NewReader(m.input.Value()),
		shim.Options{MemoryLimitPages: m.memPages})
	return evalMsg{err: err, result: res}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateShowResult {
				return m, tea.Quit
			}

		case "enter":
			switch m.state {
			case stateEditInput:
				return m, m.evaluate
			case stateShowResult:
				m.state = stateEditInput
				m.result = nil
				m.err = nil
				m.input.Focus()
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateEditInput
				m.result = nil
				m.err = nil
				m.input.Focus()
			}
		}

	case evalMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		m.input.Blur()
	}

	if m.state == stateEditInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hoaxrun inspect"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateEditInput:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • ctrl+c quit"))

	case stateShowResult:
		if m.result != nil && m.result.Output != "" {
			b.WriteString(labelStyle.Render("output"))
			b.WriteString("\n")
			b.WriteString(outputStyle.Render(m.result.Output))
			if !strings.HasSuffix(m.result.Output, "\n") {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}

		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
			b.WriteString("\n")
		} else {
			b.WriteString(labelStyle.Render("result"))
			b.WriteString("\n")
			rendered := m.result.Render
			if rendered == "" {
				rendered = "(void)"
			}
			b.WriteString(resultStyle.Render(rendered))
			b.WriteString("\n\n")
			b.WriteString(labelStyle.Render("word"))
			b.WriteString("\n")
			for _, row := range describeWord(m.result.Word) {
				b.WriteString("  " + row + "\n")
			}
		}

		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter run again • q quit"))
	}

	return b.String()
}

// describeWord breaks a tagged word into its raw bits, variant, and
// payload.
func describeWord(w word.Word) []string {
	rows := []string{
		fmt.Sprintf("raw      %#016x", uint64(w)),
		fmt.Sprintf("variant  %s", w.Tag()),
	}
	switch t := w.Tag(); {
	case t == word.TagInteger:
		rows = append(rows, fmt.Sprintf("payload  %d", w.Int()))
	case t == word.TagBoolean:
		rows = append(rows, fmt.Sprintf("payload  %t", w.Bool()))
	case t == word.TagCharacter:
		rows = append(rows, fmt.Sprintf("payload  U+%04X", w.Char()))
	case t.IsPointer():
		rows = append(rows, fmt.Sprintf("address  %#x", w.Addr()))
	}
	return rows
}

func runInspect(filename string, wasmBytes []byte, memPages uint32) error {
	p := tea.NewProgram(newInspectModel(filename, wasmBytes, memPages), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
