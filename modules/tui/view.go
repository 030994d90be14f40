// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tui implements the View Manager (§4.5): the parent/child view
// tree, focus tracking, split/full-screen layout, and the numeric-prefix
// key accumulator shared by every concrete view (log/diff/blame/tree/ref).
package tui

import "github.com/antgroup/gotview/modules/external"

// Key is one input event delivered to a view. Count is the accumulated
// numeric prefix (0 if none was entered) applied to Rune/Name per §4.5.
type Key struct {
	Rune  rune
	Name  string // named keys ("Tab", "Enter", "Backspace", "PageUp", ...)
	Count int
}

// Action is what a view asks the Manager to do after handling input.
type Action int

const (
	// ActionNone means the view consumed the key; nothing else happens.
	ActionNone Action = iota
	// ActionClose means the view wants to close (the `q` binding, §4.5).
	ActionClose
	// ActionOpenChild means the view is handing the Manager a new child
	// view to install per the open-from-parent/open-from-child rule.
	ActionOpenChild
	// ActionToggleLayout is the `F` split/full-screen toggle.
	ActionToggleLayout
	// ActionSwapFocus is `Tab`.
	ActionSwapFocus
	// ActionQuitAll is the global `Q`.
	ActionQuitAll
)

// Result is returned by View.Input.
type Result struct {
	Action Action
	Child  View // valid when Action == ActionOpenChild
}

// View is the flat, vtable-like set of five operations §4.5 assigns to
// every concrete view. Implementers hold their own type-specific state;
// the Manager only ever calls through this interface.
type View interface {
	// Show renders the view's current state into screen.
	Show(screen external.Screen, focused bool)
	// Input handles one key event and reports what the Manager should do
	// next.
	Input(key Key) Result
	// Close releases any resources (stops a background thread, closes a
	// store handle) the view owns.
	Close() error
	// SearchStart compiles pattern and begins (or restarts) a search.
	SearchStart(pattern string) error
	// SearchNext advances the search by one match in the given
	// direction, returning false if nothing changed (queue exhausted,
	// no match, ...).
	SearchNext(forward bool) bool
	// Title is shown on the view's top border/status line.
	Title() string
}

// Resizer is implemented by views that need to react to a terminal
// resize (SIGWINCH/SIGCONT propagate to every view per §4.5).
type Resizer interface {
	Resize(cols, rows int)
}
