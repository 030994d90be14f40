// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/antgroup/gotview/modules/external"
)

// prefixTimeout is the inter-key timeout for numeric-prefix
// accumulation (§4.5).
const prefixTimeout = 500 * time.Millisecond

// maxPrefixCount is the cap §4.5 places on the accumulated count.
const maxPrefixCount = 9_999_999

// minSplitCols is the minimum terminal width that permits split layout
// (§4.5's "Split is permitted only when terminal width ≥ 120 columns").
const minSplitCols = 120

// node is one entry in the view tree: either a parent (Parent == nil) or
// a child (exactly one parent).
type node struct {
	view   View
	parent *node
	child  *node
	// focusChild remembers, for a parent, whether its child should be
	// re-focused when focus returns to this parent (§4.5 "sticky bit").
	focusChild bool
}

// Manager implements §4.5's View Manager: the parent/child tree, the
// single focus bit, split/full-screen layout, and numeric-prefix input
// accumulation. M is the single process-wide mutex §5 describes; the UI
// thread holds it at all times except blocking input, thread join, or
// explicit search-progress yields.
type Manager struct {
	M    sync.Mutex
	cond *sync.Cond

	screen external.Screen
	log    *logrus.Entry

	parents []*node
	focus   *node

	fullScreen bool
	cols, rows int

	prefixDigits int
	prefixLast   time.Time

	quit     bool
	fatalErr error
}

// New constructs a Manager drawing into screen.
func New(screen external.Screen) *Manager {
	m := &Manager{screen: screen, log: logrus.WithField("component", "tui")}
	m.cond = sync.NewCond(&m.M)
	m.cols, m.rows = screen.Size()
	return m
}

// Open installs v as a new top-level parent view and focuses it.
func (m *Manager) Open(v View) {
	m.M.Lock()
	defer m.M.Unlock()
	n := &node{view: v}
	m.parents = append(m.parents, n)
	m.setFocusLocked(n)
}

// OpenChild installs child per §4.5's rule: opening from a parent
// replaces its (existing) child; opening from a child promotes the new
// view to a parent, appended to the tail of the parent list.
func (m *Manager) OpenChild(from View, child View) {
	m.M.Lock()
	defer m.M.Unlock()

	owner := m.findLocked(from)
	if owner == nil {
		return
	}
	n := &node{view: child}
	if owner.parent == nil {
		if owner.child != nil {
			_ = owner.child.view.Close()
		}
		n.parent = owner
		owner.child = n
		owner.focusChild = true
	} else {
		m.parents = append(m.parents, n)
	}
	m.setFocusLocked(n)
}

func (m *Manager) findLocked(v View) *node {
	for _, p := range m.parents {
		if p.view == v {
			return p
		}
		if p.child != nil && p.child.view == v {
			return p.child
		}
	}
	return nil
}

func (m *Manager) parentIndexLocked(p *node) int {
	for i, cur := range m.parents {
		if cur == p {
			return i
		}
	}
	return len(m.parents) - 1
}

func (m *Manager) setFocusLocked(n *node) {
	m.focus = n
}

// SwapFocus implements Tab: toggles focus between a parent and its
// child, if one exists.
func (m *Manager) SwapFocus() {
	m.M.Lock()
	defer m.M.Unlock()
	if m.focus == nil {
		return
	}
	if m.focus.parent == nil {
		if m.focus.child != nil {
			m.focus.focusChild = true
			m.setFocusLocked(m.focus.child)
		}
		return
	}
	parent := m.focus.parent
	parent.focusChild = false
	m.setFocusLocked(parent)
}

// ToggleLayout implements F: split is only honored when the terminal is
// wide enough (§4.5).
func (m *Manager) ToggleLayout() {
	m.M.Lock()
	defer m.M.Unlock()
	if m.fullScreen && m.cols < minSplitCols {
		return
	}
	m.fullScreen = !m.fullScreen
}

// SplitColumn returns the column at which the child pane begins when
// split layout is active, per §4.5's formula.
func (m *Manager) SplitColumn() int {
	half := m.cols / 2
	if half < 80 {
		half = 80
	}
	return m.cols - half
}

// Close implements q on the focused view: it is marked dying, closed,
// and focus moves per §4.5's picker (previous parent sibling if it was
// a parent, else its parent).
func (m *Manager) Close(v View) {
	m.M.Lock()
	defer m.M.Unlock()
	n := m.findLocked(v)
	if n == nil {
		return
	}
	_ = n.view.Close()

	if n.parent == nil {
		idx := m.parentIndexLocked(n)
		if n.child != nil {
			_ = n.child.view.Close()
		}
		m.parents = append(m.parents[:idx], m.parents[idx+1:]...)
		switch {
		case idx > 0:
			m.setFocusLocked(m.parents[idx-1])
		case len(m.parents) > 0:
			m.setFocusLocked(m.parents[0])
		default:
			m.setFocusLocked(nil)
		}
		return
	}

	n.parent.child = nil
	m.setFocusLocked(n.parent)
}

// QuitAll implements Q: ends the main loop after draining.
func (m *Manager) QuitAll() {
	m.M.Lock()
	defer m.M.Unlock()
	m.quit = true
	m.cond.Broadcast()
}

// SetFatal records a fatal signal (SIGINT/SIGPIPE/SIGTERM per §4.5) that
// ends the main loop.
func (m *Manager) SetFatal(err error) {
	m.M.Lock()
	defer m.M.Unlock()
	m.fatalErr = err
	m.cond.Broadcast()
}

// Resize propagates a terminal resize to every view (§4.5: on
// SIGWINCH/SIGCONT).
func (m *Manager) Resize(cols, rows int) {
	m.M.Lock()
	defer m.M.Unlock()
	m.cols, m.rows = cols, rows
	for _, p := range m.parents {
		if r, ok := p.view.(Resizer); ok {
			r.Resize(cols, rows)
		}
		if p.child != nil {
			if r, ok := p.child.view.(Resizer); ok {
				r.Resize(cols, rows)
			}
		}
	}
}

// Empty reports whether the view tree has no views left.
func (m *Manager) Empty() bool {
	m.M.Lock()
	defer m.M.Unlock()
	return len(m.parents) == 0
}

// Done reports whether the main loop should stop: no views remain, a
// global quit was requested, or a fatal signal arrived.
func (m *Manager) Done() bool {
	m.M.Lock()
	defer m.M.Unlock()
	return len(m.parents) == 0 || m.quit || m.fatalErr != nil
}

// FatalErr returns the fatal signal error, if any.
func (m *Manager) FatalErr() error {
	m.M.Lock()
	defer m.M.Unlock()
	return m.fatalErr
}

// Render draws every parent view back to front, then its child, as
// §4.5's main loop specifies, while holding M.
func (m *Manager) Render() {
	m.M.Lock()
	defer m.M.Unlock()
	for _, p := range m.parents {
		focused := m.focus == p
		p.view.Show(m.screen, focused)
		if p.child != nil {
			childFocused := m.focus == p.child
			p.view.Show(m.screen, focused && !childFocused)
			p.child.view.Show(m.screen, childFocused)
		}
	}
	m.screen.Refresh()
}

// ApplyDigit feeds one numeric-prefix digit (1-9 to start, 0-9 to
// continue) into the accumulator, resetting it if more than
// prefixTimeout has elapsed since the previous digit. It returns the
// accumulated count so far.
func (m *Manager) ApplyDigit(d int) int {
	now := time.Now()
	if m.prefixDigits == 0 || now.Sub(m.prefixLast) > prefixTimeout {
		m.prefixDigits = 0
	}
	m.prefixDigits = m.prefixDigits*10 + d
	if m.prefixDigits > maxPrefixCount {
		m.prefixDigits = maxPrefixCount
	}
	m.prefixLast = now
	return m.prefixDigits
}

// TakeCount returns the accumulated numeric prefix and resets it to 0,
// as the spec requires after the next non-digit command executes.
func (m *Manager) TakeCount() int {
	n := m.prefixDigits
	m.prefixDigits = 0
	return n
}

// Dispatch routes one key event to the focused view, handling the
// Manager-level actions (Tab/F/q/Q) itself and installing any child view
// the view's Input handler returns.
func (m *Manager) Dispatch(key Key) {
	m.M.Lock()
	focused := m.focus
	m.M.Unlock()
	if focused == nil {
		return
	}

	switch key.Name {
	case "Tab":
		m.SwapFocus()
		return
	case "F":
		m.ToggleLayout()
		return
	}
	if key.Rune == 'Q' {
		m.QuitAll()
		return
	}

	result := focused.view.Input(key)
	switch result.Action {
	case ActionClose:
		m.Close(focused.view)
	case ActionOpenChild:
		if result.Child != nil {
			m.OpenChild(focused.view, result.Child)
		}
	case ActionToggleLayout:
		m.ToggleLayout()
	case ActionSwapFocus:
		m.SwapFocus()
	case ActionQuitAll:
		m.QuitAll()
	}
}
