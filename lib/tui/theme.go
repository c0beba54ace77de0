// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/unlock/lib/unlock"
)

// Theme defines the color palette for the unlock form. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Field labels and borders. The focused field uses FocusBorder.
	LabelForeground lipgloss.Color
	BorderColor     lipgloss.Color
	FocusBorder     lipgloss.Color

	// Status colors, one per machine state.
	StatusIdle    lipgloss.Color
	StatusLoading lipgloss.Color
	StatusError   lipgloss.Color
	StatusSuccess lipgloss.Color

	// PillForeground is the text color inside the status pill.
	PillForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	HelpText         lipgloss.Color
}

// StatusColor returns the color for a machine state, or FaintText for
// an unknown one.
func (theme Theme) StatusColor(state unlock.State) lipgloss.Color {
	switch state {
	case unlock.StateIdle:
		return theme.StatusIdle
	case unlock.StateLoading:
		return theme.StatusLoading
	case unlock.StateError:
		return theme.StatusError
	case unlock.StateSuccess:
		return theme.StatusSuccess
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	LabelForeground: lipgloss.Color("250"),
	BorderColor:     lipgloss.Color("240"),
	FocusBorder:     lipgloss.Color("75"), // blue

	StatusIdle:    lipgloss.Color("245"), // gray
	StatusLoading: lipgloss.Color("220"), // yellow/amber
	StatusError:   lipgloss.Color("196"), // red
	StatusSuccess: lipgloss.Color("114"), // green

	PillForeground: lipgloss.Color("16"),

	HeaderForeground: lipgloss.Color("255"),
	HelpText:         lipgloss.Color("241"),
}
