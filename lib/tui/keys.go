// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the form's key bindings. It implements help.KeyMap.
type KeyMap struct {
	NextField     key.Binding
	PreviousField key.Binding
	Submit        key.Binding
	Quit          key.Binding
}

// DefaultKeyMap is the built-in key binding set. Letters are left to
// the text inputs, so quitting needs a control key.
var DefaultKeyMap = KeyMap{
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PreviousField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open door"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

// ShortHelp returns the bindings shown in the footer.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Submit, keys.NextField, keys.Quit}
}

// FullHelp returns every binding, one group per row.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Submit, keys.Quit},
		{keys.NextField, keys.PreviousField},
	}
}
