// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/external"
)

type fakeScreen struct {
	cols, rows int
	cleared    bool
}

func (s *fakeScreen) Size() (int, int)                   { return s.cols, s.rows }
func (s *fakeScreen) MoveTo(row, col int)                {}
func (s *fakeScreen) WriteStyled(string, external.Style) {}
func (s *fakeScreen) Refresh()                           {}
func (s *fakeScreen) Clear()                             { s.cleared = true }

type fakeView struct {
	title   string
	closed  bool
	onInput func(Key) Result
}

func (v *fakeView) Show(external.Screen, bool) {}
func (v *fakeView) Input(k Key) Result {
	if v.onInput != nil {
		return v.onInput(k)
	}
	return Result{}
}
func (v *fakeView) Close() error            { v.closed = true; return nil }
func (v *fakeView) SearchStart(string) error { return nil }
func (v *fakeView) SearchNext(bool) bool     { return false }
func (v *fakeView) Title() string            { return v.title }

func TestOpenAndFocus(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	a := &fakeView{title: "a"}
	m.Open(a)
	require.Equal(t, a, m.focus.view)
}

func TestOpenChildReplacesExistingChild(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	parent := &fakeView{title: "parent"}
	m.Open(parent)

	child1 := &fakeView{title: "child1"}
	m.OpenChild(parent, child1)
	require.Equal(t, child1, m.focus.view)

	child2 := &fakeView{title: "child2"}
	m.OpenChild(parent, child2)
	require.True(t, child1.closed)
	require.Equal(t, child2, m.focus.view)
}

func TestOpenChildPromotionAppendsToTailOfParents(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	a := &fakeView{title: "a"}
	b := &fakeView{title: "b"}
	m.Open(a)
	m.Open(b)

	childOfA := &fakeView{title: "childOfA"}
	m.OpenChild(a, childOfA)

	// Opening from the child promotes it to a parent appended at the
	// tail of the parent list, i.e. [a, b, childOfA], not spliced in
	// right after a.
	promoted := &fakeView{title: "promoted"}
	m.OpenChild(childOfA, promoted)

	require.Len(t, m.parents, 3)
	require.Equal(t, a, m.parents[0].view)
	require.Equal(t, b, m.parents[1].view)
	require.Equal(t, promoted, m.parents[2].view)
}

func TestSwapFocusTogglesParentAndChild(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	parent := &fakeView{title: "parent"}
	m.Open(parent)
	child := &fakeView{title: "child"}
	m.OpenChild(parent, child)
	require.Equal(t, child, m.focus.view)

	m.SwapFocus()
	require.Equal(t, parent, m.focus.view)

	m.SwapFocus()
	require.Equal(t, child, m.focus.view)
}

func TestToggleLayoutRequiresMinWidth(t *testing.T) {
	m := New(&fakeScreen{cols: 100, rows: 50})
	m.fullScreen = true
	m.ToggleLayout()
	require.True(t, m.fullScreen)

	m.cols = 140
	m.ToggleLayout()
	require.False(t, m.fullScreen)
}

func TestSplitColumnFormula(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	require.Equal(t, 100, m.SplitColumn())

	m.cols = 140
	require.Equal(t, 60, m.SplitColumn())
}

func TestCloseParentMovesFocusToPreviousSibling(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	first := &fakeView{title: "first"}
	second := &fakeView{title: "second"}
	m.Open(first)
	m.Open(second)
	require.Equal(t, second, m.focus.view)

	m.Close(second)
	require.True(t, second.closed)
	require.Equal(t, first, m.focus.view)
}

func TestQuitAllAndDone(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	m.Open(&fakeView{title: "only"})
	require.False(t, m.Done())
	m.QuitAll()
	require.True(t, m.Done())
}

func TestApplyDigitAccumulatesAndCaps(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	require.Equal(t, 1, m.ApplyDigit(1))
	require.Equal(t, 12, m.ApplyDigit(2))
	require.Equal(t, 123, m.ApplyDigit(3))
	require.Equal(t, 123, m.TakeCount())
	require.Equal(t, 0, m.TakeCount())
}

func TestDispatchRoutesToFocusedView(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	var gotKey Key
	v := &fakeView{title: "v", onInput: func(k Key) Result {
		gotKey = k
		return Result{Action: ActionClose}
	}}
	m.Open(v)
	m.Dispatch(Key{Rune: 'q'})
	require.Equal(t, rune('q'), gotKey.Rune)
	require.True(t, v.closed)
	require.True(t, m.Empty())
}
