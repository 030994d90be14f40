// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package treeview implements the tree view (§4.9): breadcrumb
// navigation through a commit's directory structure, opening blame on
// files and the ref view on request.
package treeview

import (
	"strings"
	"sync"
	"unicode"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/tui"
)

// ResolveTree loads the decoded tree object id points at.
type ResolveTree func(id objects.ID) (*gitobj.Tree, error)

// ReadBlob returns the raw content of a blob (used to resolve symlink
// targets for display).
type ReadBlob func(id objects.ID) ([]byte, error)

// OpenBlame opens the blame view on path at the tree view's commit.
type OpenBlame func(path string) tui.View

// OpenLog opens the log view filtered to path.
type OpenLog func(path string) tui.View

// OpenRef opens the ref view.
type OpenRef func() tui.View

// breadcrumb records a parent tree's navigation state so popping back
// (Backspace) restores the cursor exactly where it left off.
type breadcrumb struct {
	tree           *gitobj.Tree
	firstDisplayed int
	selected       int
}

// View implements the tree view.
type View struct {
	mu sync.Mutex

	resolve   ResolveTree
	readBlob  ReadBlob
	openBlame OpenBlame
	openLog   OpenLog
	openRef   OpenRef

	commit objects.ID
	root   *gitobj.Tree
	cur    *gitobj.Tree
	path   string

	crumbs *arraystack.Stack

	firstDisplayed int
	selected       int
	cols, rows     int

	showID bool
}

// New constructs a tree view rooted at commit's tree.
func New(resolve ResolveTree, readBlob ReadBlob, openBlame OpenBlame, openLog OpenLog, openRef OpenRef, commit objects.ID, rootTreeID objects.ID) (*View, error) {
	root, err := resolve(rootTreeID)
	if err != nil {
		return nil, err
	}
	return &View{
		resolve:   resolve,
		readBlob:  readBlob,
		openBlame: openBlame,
		openLog:   openLog,
		openRef:   openRef,
		commit:    commit,
		root:      root,
		cur:       root,
		crumbs:    arraystack.New(),
	}, nil
}

// OpenPath drills into path segment by segment from the root, pushing a
// breadcrumb per directory descended exactly as Enter does, so Backspace
// still walks back out one level at a time. A path component that names
// a blob stops the descent one directory short, leaving that blob
// selected; an unresolvable component stops the descent at the deepest
// directory reached rather than failing the whole open, since landing
// near the requested path beats refusing to open the view at all.
func (v *View) OpenPath(path string) error {
	if path == "" {
		return nil
	}
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		v.mu.Lock()
		entry, ok := v.cur.ByName(name)
		v.mu.Unlock()
		if !ok {
			return nil
		}
		if !entry.Mode.IsDir() {
			v.selectByName(name)
			return nil
		}
		sub, err := v.resolve(entry.ID)
		if err != nil {
			return nil
		}
		v.mu.Lock()
		v.crumbs.Push(breadcrumb{tree: v.cur, firstDisplayed: v.firstDisplayed, selected: v.selected})
		v.cur = sub
		if v.path == "" {
			v.path = name
		} else {
			v.path = v.path + "/" + name
		}
		v.firstDisplayed = 0
		v.selected = 0
		v.mu.Unlock()
	}
	return nil
}

// selectByName moves the cursor onto the named entry in the current
// directory, if present.
func (v *View) selectByName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, e := range v.entries() {
		if e.Name == name {
			v.firstDisplayed = 0
			v.selected = i
			return
		}
	}
}

func (v *View) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.path == "" {
		return "tree: /"
	}
	return "tree: /" + v.path
}

func (v *View) Close() error             { return nil }
func (v *View) SearchStart(string) error { return nil }
func (v *View) SearchNext(bool) bool     { return false }

func (v *View) Resize(cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cols, v.rows = cols, rows
}

func (v *View) bodyRows() int {
	if v.rows <= 1 {
		return 1
	}
	return v.rows - 1
}

func (v *View) entries() []gitobj.TreeEntry {
	return v.cur.Sorted()
}

func (v *View) Input(key tui.Key) tui.Result {
	switch {
	case key.Name == "Down" || key.Rune == 'j':
		v.move(1)
	case key.Name == "Up" || key.Rune == 'k':
		v.move(-1)
	case key.Name == "PageDown":
		v.move(v.bodyRows())
	case key.Name == "PageUp":
		v.move(-v.bodyRows())
	case key.Name == "Enter":
		return v.activate()
	case key.Name == "Backspace":
		v.pop()
	case key.Rune == 'r':
		if v.openRef != nil {
			return tui.Result{Action: tui.ActionOpenChild, Child: v.openRef()}
		}
	case key.Rune == 'l':
		if child := v.openLogHere(); child != nil {
			return tui.Result{Action: tui.ActionOpenChild, Child: child}
		}
	case key.Rune == 'i':
		v.mu.Lock()
		v.showID = !v.showID
		v.mu.Unlock()
	case key.Rune == 'q':
		return tui.Result{Action: tui.ActionClose}
	}
	return tui.Result{}
}

func (v *View) move(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entries := v.entries()
	target := v.firstDisplayed + v.selected + delta
	if target < 0 {
		target = 0
	}
	if target >= len(entries) {
		target = len(entries) - 1
	}
	if target < 0 {
		target = 0
	}
	rows := v.bodyRows()
	switch {
	case target < v.firstDisplayed:
		v.firstDisplayed = target
		v.selected = 0
	case target >= v.firstDisplayed+rows:
		v.firstDisplayed = target - rows + 1
		v.selected = rows - 1
	default:
		v.selected = target - v.firstDisplayed
	}
}

func (v *View) selectedEntry() (gitobj.TreeEntry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entries := v.entries()
	i := v.firstDisplayed + v.selected
	if i < 0 || i >= len(entries) {
		return gitobj.TreeEntry{}, false
	}
	return entries[i], true
}

// activate implements Enter: pushes a breadcrumb and descends into a
// directory, or opens Blame on a regular blob (§4.9).
func (v *View) activate() tui.Result {
	entry, ok := v.selectedEntry()
	if !ok {
		return tui.Result{}
	}
	if entry.Mode.IsDir() {
		sub, err := v.resolve(entry.ID)
		if err != nil {
			return tui.Result{}
		}
		v.mu.Lock()
		v.crumbs.Push(breadcrumb{tree: v.cur, firstDisplayed: v.firstDisplayed, selected: v.selected})
		v.cur = sub
		if v.path == "" {
			v.path = entry.Name
		} else {
			v.path = v.path + "/" + entry.Name
		}
		v.firstDisplayed = 0
		v.selected = 0
		v.mu.Unlock()
		return tui.Result{}
	}
	if v.openBlame == nil {
		return tui.Result{}
	}
	v.mu.Lock()
	path := v.path
	v.mu.Unlock()
	full := entry.Name
	if path != "" {
		full = path + "/" + entry.Name
	}
	return tui.Result{Action: tui.ActionOpenChild, Child: v.openBlame(full)}
}

// pop implements Backspace: pops one breadcrumb.
func (v *View) pop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	top, ok := v.crumbs.Pop()
	if !ok {
		return
	}
	bc := top.(breadcrumb)
	v.cur = bc.tree
	v.firstDisplayed = bc.firstDisplayed
	v.selected = bc.selected
	if i := strings.LastIndexByte(v.path, '/'); i >= 0 {
		v.path = v.path[:i]
	} else {
		v.path = ""
	}
}

func (v *View) openLogHere() tui.View {
	if v.openLog == nil {
		return nil
	}
	v.mu.Lock()
	path := v.path
	v.mu.Unlock()
	return v.openLog(path)
}

// Show renders the current tree's entries, decorated per §4.9's mode
// suffix rule.
func (v *View) Show(screen external.Screen, focused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cols, rows := screen.Size()
	v.cols, v.rows = cols, rows

	screen.MoveTo(0, 0)
	title := "tree: /"
	if v.path != "" {
		title = "tree: /" + v.path
	}
	screen.WriteStyled(title, external.StyleMeta)

	entries := v.entries()
	bodyRows := v.bodyRows()
	for row := 0; row < bodyRows; row++ {
		i := v.firstDisplayed + row
		screen.MoveTo(row+1, 0)
		if i >= len(entries) {
			continue
		}
		line := v.renderEntry(entries[i])
		style := external.StyleNormal
		if focused && row == v.selected {
			style = external.StyleInverse
		}
		screen.WriteStyled(line, style)
	}
}

func (v *View) renderEntry(e gitobj.TreeEntry) string {
	var b strings.Builder
	if v.showID {
		b.WriteString(e.ID.String())
		b.WriteByte(' ')
	}
	b.WriteString(e.Name)
	b.WriteString(e.Mode.Decoration())
	if e.Mode.IsSymlink() && v.readBlob != nil {
		if target, err := v.readBlob(e.ID); err == nil {
			b.WriteString(" -> ")
			b.WriteString(sanitizeTarget(target))
		}
	}
	return b.String()
}

// sanitizeTarget replaces non-printable-ASCII characters in a symlink
// target with '?', per §4.9.
func sanitizeTarget(target []byte) string {
	var b strings.Builder
	for _, r := range string(target) {
		if r < 0x20 || r > 0x7e || !unicode.IsPrint(r) {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
