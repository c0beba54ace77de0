// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui is the terminal form for the unlock client. Built on
// bubbletea (Elm architecture): [Form] owns two text inputs (room and
// token), a spinner shown while an attempt is in flight, and a status
// banner rendered from the latest [unlock.Context].
//
// The form never mutates machine state itself. Enter submits through
// a tea.Cmd so the machine's listeners run off the event loop; the
// caller forwards every committed context back into the program as a
// [ContextMsg]:
//
//	program := tea.NewProgram(tui.NewForm(machine, tui.DefaultTheme))
//	unsubscribe := machine.Subscribe(func(c unlock.Context) {
//	    program.Send(tui.ContextMsg(c))
//	})
//	defer unsubscribe()
package tui
