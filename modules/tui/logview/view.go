// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logview

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/tui"
)

// GraphFactory constructs a fresh commit graph rooted at HEAD (or, if
// branchScoped, the current branch only), filtered to pathFilter when
// non-empty. The view calls it whenever the loader must be torn down
// and restarted (§4.6: Backspace/^L/B "stop the loader, reconstruct the
// graph, clear the queue, and restart").
type GraphFactory func(pathFilter string, branchScoped bool) (external.CommitGraph, error)

// OpenDiff is called when the view wants to show a diff of a commit
// against its first parent as a child view (Enter on a log row).
type OpenDiff func(commit, parent objects.ID) tui.View

const (
	minScreenForID = 120
	idPrefixCols   = 9
	dateCols       = 12
)

// View implements the log view (§4.6).
type View struct {
	mu   sync.Mutex
	cond *sync.Cond

	queue *commitQueue
	ld    *loader

	graphFactory GraphFactory
	body         CommitBody
	openDiff     OpenDiff

	pathFilter   string
	branchScoped bool

	firstDisplayed int
	selectedRow    int
	xOffset        int
	cols, rows     int

	searching      bool
	searchForward  bool
	searchPat      *matcher
	matchedEntry   int

	closed bool
}

// New constructs a log view rooted at the given graph, ready to Show.
func New(graphFactory GraphFactory, body CommitBody, openDiff OpenDiff) (*View, error) {
	v := &View{
		queue:        newCommitQueue(),
		graphFactory: graphFactory,
		body:         body,
		openDiff:     openDiff,
	}
	v.cond = sync.NewCond(&v.mu)
	v.mu.Lock()
	err := v.restartLocked()
	v.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// restartLocked implements §4.6's "stop the loader, reconstruct the
// graph, clear the queue, and restart" sequence. Callers must hold mu;
// it is briefly released only around the old loader's join, per §5's
// cancellation protocol.
func (v *View) restartLocked() error {
	if v.ld != nil {
		old := v.ld
		v.mu.Unlock()
		old.stop()
		v.mu.Lock()
	}
	v.queue.reset()
	v.firstDisplayed = 0
	v.selectedRow = 0

	graph, err := v.graphFactory(v.pathFilter, v.branchScoped)
	if err != nil {
		v.ld = nil
		return err
	}
	v.ld = newLoader(&v.mu, v.cond, v.queue, graph, v.body)
	v.ld.start()
	v.ld.requestMoreLocked(1)
	return nil
}

func (v *View) restart() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.restartLocked()
}

// SetPathFilter replaces the active path filter and restarts the
// loader against it, the entry point a tree view's "open log scoped to
// this path" operation uses.
func (v *View) SetPathFilter(pathFilter string) error {
	v.mu.Lock()
	v.pathFilter = pathFilter
	v.mu.Unlock()
	return v.restart()
}

// Resize implements tui.Resizer.
func (v *View) Resize(cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cols, v.rows = cols, rows
}

func (v *View) Title() string {
	if v.pathFilter == "" {
		return "log"
	}
	return "log: " + v.pathFilter
}

// Close stops the loader thread and releases its graph handle.
func (v *View) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	ld := v.ld
	v.mu.Unlock()
	if ld != nil {
		ld.stop()
	}
	return nil
}

// ensureLoadedLocked asks the loader for enough commits that the queue
// holds at least want entries, and waits (the cond_wait(commit_loaded)
// suspension point in §5) until it does or the loader has announced
// completion.
func (v *View) ensureLoadedLocked(want int) {
	for v.queue.len() < want && !v.ld.logComplete {
		v.ld.requestMoreLocked(want - v.queue.len())
		v.cond.Wait()
	}
}

func (v *View) bodyRows() int {
	if v.rows <= 2 {
		return 1
	}
	return v.rows - 2
}

// Input implements tui.View.
func (v *View) Input(key tui.Key) tui.Result {
	count := key.Count
	if count == 0 {
		count = 1
	}

	switch {
	case key.Name == "Down":
		v.moveSelection(count)
		return tui.Result{}
	case key.Rune == 'j':
		v.moveSelection(count)
		return tui.Result{}
	case key.Name == "Up":
		v.moveSelection(-count)
		return tui.Result{}
	case key.Rune == 'k':
		v.moveSelection(-count)
		return tui.Result{}
	case key.Rune == 0x04: // ^D
		v.moveSelection(v.bodyRows() / 2)
		return tui.Result{}
	case key.Rune == 0x15: // ^U
		v.moveSelection(-v.bodyRows() / 2)
		return tui.Result{}
	case key.Name == "PageDown":
		v.moveSelection(v.bodyRows())
		return tui.Result{}
	case key.Name == "PageUp":
		v.moveSelection(-v.bodyRows())
		return tui.Result{}
	case key.Name == "End":
		v.goEnd()
		return tui.Result{}
	case key.Name == "Home":
		v.goHome()
		return tui.Result{}
	case key.Name == "Backspace":
		v.popPathFilter()
		return tui.Result{}
	case key.Rune == 0x0c: // ^L
		_ = v.restart()
		return tui.Result{}
	case key.Rune == 'B':
		v.mu.Lock()
		v.branchScoped = !v.branchScoped
		v.mu.Unlock()
		_ = v.restart()
		return tui.Result{}
	case key.Rune == 'q':
		return tui.Result{Action: tui.ActionClose}
	case key.Name == "Enter":
		if child := v.openSelectedDiff(); child != nil {
			return tui.Result{Action: tui.ActionOpenChild, Child: child}
		}
		return tui.Result{}
	}
	return tui.Result{}
}

func (v *View) moveSelection(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	target := v.firstDisplayed + v.selectedRow + delta
	if target < 0 {
		target = 0
	}
	v.ensureLoadedLocked(target + 1)
	if target >= v.queue.len() {
		target = v.queue.len() - 1
	}
	if target < 0 {
		target = 0
	}

	rows := v.bodyRows()
	switch {
	case target < v.firstDisplayed:
		v.firstDisplayed = target
		v.selectedRow = 0
	case target >= v.firstDisplayed+rows:
		v.firstDisplayed = target - rows + 1
		v.selectedRow = rows - 1
	default:
		v.selectedRow = target - v.firstDisplayed
	}
}

func (v *View) goEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ld.requestAllLocked()
	for !v.ld.logComplete {
		v.cond.Wait()
	}
	rows := v.bodyRows()
	last := v.queue.len() - 1
	if last < 0 {
		last = 0
	}
	if last >= rows {
		v.firstDisplayed = last - rows + 1
		v.selectedRow = rows - 1
	} else {
		v.firstDisplayed = 0
		v.selectedRow = last
	}
}

func (v *View) goHome() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.firstDisplayed = 0
	v.selectedRow = 0
}

func (v *View) popPathFilter() {
	v.mu.Lock()
	if v.pathFilter == "" {
		v.mu.Unlock()
		return
	}
	v.pathFilter = path.Dir(v.pathFilter)
	if v.pathFilter == "." {
		v.pathFilter = ""
	}
	v.mu.Unlock()
	_ = v.restart()
}

func (v *View) selectedEntry() (CommitEntry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queue.at(v.firstDisplayed + v.selectedRow)
}

func (v *View) openSelectedDiff() tui.View {
	entry, ok := v.selectedEntry()
	if !ok || v.openDiff == nil || entry.Commit == nil {
		return nil
	}
	var parent objects.ID
	if len(entry.Commit.Parents) > 0 {
		parent = entry.Commit.Parents[0]
	}
	return v.openDiff(entry.ID, parent)
}

// SearchStart compiles pattern and begins a forward search (§4.6).
func (v *View) SearchStart(pattern string) error {
	m, err := newMatcher(pattern)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.searchPat = m
	v.searching = true
	v.matchedEntry = v.firstDisplayed + v.selectedRow
	return nil
}

// SearchNext advances to the next (forward) or previous (backward)
// matching commit, loading more commits as needed.
func (v *View) SearchNext(forward bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.searchPat == nil {
		return false
	}
	v.searchForward = forward

	start := v.matchedEntry
	if forward {
		for i := start + 1; ; i++ {
			if i >= v.queue.len() {
				if v.ld.logComplete {
					return false
				}
				v.ld.requestMoreLocked(1)
				v.cond.Wait()
				continue
			}
			entry, _ := v.queue.at(i)
			if v.searchPat.matches(entry) {
				v.matchedEntry = i
				v.jumpToLocked(i)
				return true
			}
		}
	}

	for i := start - 1; i >= 0; i-- {
		entry, _ := v.queue.at(i)
		if v.searchPat.matches(entry) {
			v.matchedEntry = i
			v.jumpToLocked(i)
			return true
		}
	}
	return false
}

func (v *View) jumpToLocked(idx int) {
	rows := v.bodyRows()
	if idx >= v.firstDisplayed && idx < v.firstDisplayed+rows {
		v.selectedRow = idx - v.firstDisplayed
		return
	}
	v.firstDisplayed = idx
	v.selectedRow = 0
}

// Show renders the visible window of commits (§4.6's rendering rule).
func (v *View) Show(screen external.Screen, focused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cols, rows := screen.Size()
	v.cols, v.rows = cols, rows
	showID := cols >= minScreenForID

	authorWidth := v.widestAuthorLocked()

	screen.MoveTo(0, 0)
	screen.WriteStyled(v.Title(), external.StyleMeta)

	bodyRows := v.bodyRows()
	for row := 0; row < bodyRows; row++ {
		entry, ok := v.queue.at(v.firstDisplayed + row)
		screen.MoveTo(row+1, 0)
		if !ok {
			continue
		}
		line := formatEntry(entry, showID, authorWidth, v.xOffset, cols)
		style := external.StyleNormal
		if focused && row == v.selectedRow {
			style = external.StyleInverse
		}
		screen.WriteStyled(line, style)
	}
}

func (v *View) widestAuthorLocked() int {
	width := 0
	n := v.queue.len()
	limit := v.firstDisplayed + v.bodyRows()
	if limit > n {
		limit = n
	}
	for i := v.firstDisplayed; i < limit; i++ {
		entry, ok := v.queue.at(i)
		if !ok || entry.Commit == nil {
			continue
		}
		if w := len(entry.Commit.Author.Name); w > width {
			width = w
		}
	}
	if width == 0 {
		width = 8
	}
	return width
}

// formatEntry renders one row per §4.6: 12-column date, optional
// 9-column truncated id, author grown to authorWidth, then the
// truncated, horizontally-scrolled, tab-expanded commit summary.
func formatEntry(entry CommitEntry, showID bool, authorWidth, xOffset, cols int) string {
	if entry.Commit == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s ", dateCols-1, entry.Commit.Committer.When.Format("2006-01-02"))
	if showID {
		fmt.Fprintf(&b, "%-*s ", idPrefixCols, truncate(entry.ID.String(), idPrefixCols))
	}
	fmt.Fprintf(&b, "%-*s ", authorWidth, truncate(entry.Commit.Author.Name, authorWidth))

	msg := expandTabs(entry.Commit.Summary())
	if xOffset > 0 && xOffset < len(msg) {
		msg = msg[xOffset:]
	} else if xOffset >= len(msg) {
		msg = ""
	}
	remaining := cols - b.Len()
	if remaining > 0 {
		msg = truncate(msg, remaining)
	}
	b.WriteString(msg)
	return b.String()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) <= width {
		return s
	}
	return s[:width]
}

func expandTabs(s string) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := 8 - (col % 8)
			for i := 0; i < n; i++ {
				b.WriteByte(' ')
			}
			col += n
			continue
		}
		if r == '\n' {
			break
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
