// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/unlock/lib/unlock"
)

// Submitter is the part of *unlock.Machine the form drives.
type Submitter interface {
	Submit(roomID, token string) error
	Current() unlock.Context
}

// ContextMsg carries a committed machine context into the program.
type ContextMsg unlock.Context

// submittedMsg reports what Submit returned.
type submittedMsg struct {
	err error
}

const (
	fieldRoom = iota
	fieldToken
	fieldCount
)

// defaultWidth is used until the first WindowSizeMsg arrives.
const defaultWidth = 60

// Form is the bubbletea model for the unlock form.
type Form struct {
	machine Submitter
	theme   Theme
	keys    KeyMap

	inputs  [fieldCount]textinput.Model
	focus   int
	spinner spinner.Model
	help    help.Model

	context unlock.Context

	// notice is the last refusal from Submit that the machine does not
	// reflect in its context (an attempt in flight, or already open).
	notice string

	width int
}

// NewForm returns a form over machine, initialized from its current
// context.
func NewForm(machine Submitter, theme Theme) Form {
	room := textinput.New()
	room.Prompt = ""
	room.Placeholder = "101"
	room.CharLimit = unlock.MaxRoomIDLength
	room.Focus()

	token := textinput.New()
	token.Prompt = ""
	token.Placeholder = "base64 capability token"
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'

	indicator := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	indicator.Style = lipgloss.NewStyle().Foreground(theme.StatusLoading)

	form := Form{
		machine: machine,
		theme:   theme,
		keys:    DefaultKeyMap,
		inputs:  [fieldCount]textinput.Model{room, token},
		spinner: indicator,
		help:    help.New(),
		context: machine.Current(),
		width:   defaultWidth,
	}
	form.resize()
	return form
}

// Context returns the last context the form received.
func (form Form) Context() unlock.Context {
	return form.context
}

// Init starts the cursor blink and the spinner.
func (form Form) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, form.spinner.Tick)
}

// Update handles one message.
func (form Form) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		form.width = message.Width
		form.resize()
		return form, nil

	case ContextMsg:
		form.context = unlock.Context(message)
		form.notice = ""
		return form, nil

	case submittedMsg:
		form.notice = form.noticeFor(message.err)
		return form, nil

	case spinner.TickMsg:
		var command tea.Cmd
		form.spinner, command = form.spinner.Update(message)
		return form, command

	case tea.KeyMsg:
		switch {
		case key.Matches(message, form.keys.Quit):
			return form, tea.Quit
		case key.Matches(message, form.keys.Submit):
			return form, form.submit()
		case key.Matches(message, form.keys.NextField):
			return form, form.moveFocus(1)
		case key.Matches(message, form.keys.PreviousField):
			return form, form.moveFocus(-1)
		}
	}

	var command tea.Cmd
	form.inputs[form.focus], command = form.inputs[form.focus].Update(message)
	return form, command
}

// submit returns a command that submits the current field values.
// Submit runs off the event loop because it delivers notifications
// synchronously, and those are sent back into this program.
func (form Form) submit() tea.Cmd {
	machine := form.machine
	roomID := strings.TrimSpace(form.inputs[fieldRoom].Value())
	token := form.inputs[fieldToken].Value()
	return func() tea.Msg {
		return submittedMsg{err: machine.Submit(roomID, token)}
	}
}

func (form *Form) moveFocus(delta int) tea.Cmd {
	form.inputs[form.focus].Blur()
	form.focus = (form.focus + delta + fieldCount) % fieldCount
	return form.inputs[form.focus].Focus()
}

func (form *Form) resize() {
	inputWidth := max(form.width-8, 10)
	for index := range form.inputs {
		form.inputs[index].Width = inputWidth
	}
	form.help.Width = form.width
}

// noticeFor explains a refused submit that the context alone does not
// show.
func (form Form) noticeFor(err error) string {
	switch {
	case errors.Is(err, unlock.ErrAttemptInFlight):
		return "Verification already in progress."
	case errors.Is(err, unlock.ErrFinished):
		return "The door is already open."
	case errors.Is(err, unlock.ErrInvalidSubmission) && form.context.Message != "":
		// Refused from error after a settled attempt: the banner still
		// holds that attempt's message, not the input hint.
		return fmt.Sprintf("Enter a room (at most %d characters) and a token.", unlock.MaxRoomIDLength)
	default:
		// Nil starts an attempt, and invalid input from idle moves the
		// machine to error where the banner shows the hint.
		return ""
	}
}

// View renders the form.
func (form Form) View() string {
	var builder strings.Builder

	header := lipgloss.NewStyle().Bold(true).Foreground(form.theme.HeaderForeground)
	builder.WriteString(header.Render("Unlock a room"))
	builder.WriteString("  ")
	builder.WriteString(form.statusPill())
	builder.WriteString("\n\n")

	builder.WriteString(form.field("Room", fieldRoom))
	builder.WriteString("\n")
	builder.WriteString(form.field("Token", fieldToken))
	builder.WriteString("\n\n")

	if banner := form.banner(); banner != "" {
		builder.WriteString(banner)
		builder.WriteString("\n\n")
	}

	builder.WriteString(form.help.View(form.keys))
	return builder.String()
}

func (form Form) statusPill() string {
	label := string(form.context.Status)
	if form.context.Status == unlock.StateLoading {
		label = strings.TrimSpace(form.spinner.View()) + " verifying"
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Background(form.theme.StatusColor(form.context.Status)).
		Foreground(form.theme.PillForeground).
		Render(label)
}

func (form Form) field(label string, index int) string {
	border := form.theme.BorderColor
	if index == form.focus {
		border = form.theme.FocusBorder
	}
	labelStyle := lipgloss.NewStyle().Foreground(form.theme.LabelForeground).Width(6)
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(border)
	return labelStyle.Render(label) + box.Render(form.inputs[index].View())
}

// banner renders the settled message, the rejection reason, and any
// notice, each truncated to the terminal width.
func (form Form) banner() string {
	var lines []string

	switch {
	case form.context.Status == unlock.StateLoading:
		// A retry keeps the previous message until it settles.
	case form.context.Message != "":
		style := lipgloss.NewStyle().Bold(true).Foreground(form.theme.StatusColor(form.context.Status))
		lines = append(lines, style.Render(form.context.Message))
	case form.context.Status == unlock.StateError:
		style := lipgloss.NewStyle().Foreground(form.theme.StatusError)
		lines = append(lines, style.Render("Enter a room and a token."))
	}

	faint := lipgloss.NewStyle().Foreground(form.theme.FaintText)
	if form.context.Status == unlock.StateError && form.context.Reason != nil &&
		!errors.Is(form.context.Reason, unlock.ErrInvalidSubmission) {
		lines = append(lines, faint.Render(ansi.Truncate(form.context.Reason.Error(), form.width, "…")))
	}
	if form.notice != "" {
		lines = append(lines, faint.Render(ansi.Truncate(form.notice, form.width, "…")))
	}
	return strings.Join(lines, "\n")
}
