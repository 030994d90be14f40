// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package refview implements the ref view (§4.9): a filtered, sortable
// listing of the repository's named references.
package refview

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/tui"
)

// ReadCommit loads the decoded commit id points at, used to read a
// ref's commit timestamp for the by-date sort mode.
type ReadCommit func(id objects.ID) (*gitobj.Commit, error)

// OpenLog opens the log view scoped to ref.
type OpenLog func(ref string) tui.View

// OpenTree opens the tree view rooted at commit's tree.
type OpenTree func(commit objects.ID) tui.View

type sortMode int

const (
	sortByName sortMode = iota
	sortByDate
)

// refEntry is one resolved, listable reference: §4.9's "{ref, idx}".
type refEntry struct {
	name   string
	id     objects.ID
	when   time.Time
	backup bool
}

// View implements the ref view.
type View struct {
	mu sync.Mutex

	resolver   external.RefResolver
	readCommit ReadCommit
	openLog    OpenLog
	openTree   OpenTree

	entries []refEntry
	mode    sortMode

	showDate bool
	showID   bool

	selected       int
	firstDisplayed int
	cols, rows     int
}

// New lists and resolves every ref known to resolver, filters out
// refs/got/** (except refs/got/backup/**, per §4.9), and sorts by name
// with backup refs pushed to the bottom.
func New(resolver external.RefResolver, readCommit ReadCommit, openLog OpenLog, openTree OpenTree) (*View, error) {
	v := &View{resolver: resolver, readCommit: readCommit, openLog: openLog, openTree: openTree}
	if err := v.reload(); err != nil {
		return nil, err
	}
	return v, nil
}

func includeRef(name string) bool {
	if !strings.HasPrefix(name, "refs/got/") {
		return true
	}
	return strings.HasPrefix(name, "refs/got/backup/")
}

func (v *View) reload() error {
	names, err := v.resolver.List()
	if err != nil {
		return err
	}
	var entries []refEntry
	for _, name := range names {
		if !includeRef(name) {
			continue
		}
		id, err := v.resolver.Resolve(name)
		if err != nil {
			continue
		}
		var when time.Time
		if v.readCommit != nil {
			if c, err := v.readCommit(id); err == nil {
				when = c.Committer.When
			}
		}
		entries = append(entries, refEntry{
			name:   name,
			id:     id,
			when:   when,
			backup: strings.HasPrefix(name, "refs/got/backup/"),
		})
	}
	v.mu.Lock()
	v.entries = entries
	v.sortLocked()
	v.mu.Unlock()
	return nil
}

func (v *View) sortLocked() {
	switch v.mode {
	case sortByDate:
		sort.SliceStable(v.entries, func(i, j int) bool {
			return v.entries[i].when.After(v.entries[j].when)
		})
	default:
		sort.SliceStable(v.entries, func(i, j int) bool {
			if v.entries[i].backup != v.entries[j].backup {
				return !v.entries[i].backup
			}
			return v.entries[i].name < v.entries[j].name
		})
	}
}

func (v *View) Title() string { return "refs" }

func (v *View) Close() error             { return nil }
func (v *View) SearchStart(string) error { return nil }
func (v *View) SearchNext(bool) bool     { return false }

func (v *View) Resize(cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cols, v.rows = cols, rows
}

func (v *View) bodyRows() int {
	if v.rows <= 0 {
		return 1
	}
	return v.rows
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
	case key.Rune == 'o':
		v.toggleSort()
	case key.Rune == 'm':
		v.mu.Lock()
		v.showDate = !v.showDate
		v.mu.Unlock()
	case key.Rune == 'i':
		v.mu.Lock()
		v.showID = !v.showID
		v.mu.Unlock()
	case key.Name == "Enter":
		if child := v.openLogForSelected(); child != nil {
			return tui.Result{Action: tui.ActionOpenChild, Child: child}
		}
	case key.Rune == 't':
		if child := v.openTreeForSelected(); child != nil {
			return tui.Result{Action: tui.ActionOpenChild, Child: child}
		}
	case key.Rune == 'q':
		return tui.Result{Action: tui.ActionClose}
	}
	return tui.Result{}
}

func (v *View) toggleSort() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == sortByName {
		v.mode = sortByDate
	} else {
		v.mode = sortByName
	}
	v.sortLocked()
}

func (v *View) move(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	target := v.firstDisplayed + v.selected + delta
	if target < 0 {
		target = 0
	}
	if target >= len(v.entries) {
		target = len(v.entries) - 1
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

func (v *View) selectedEntry() (refEntry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.firstDisplayed + v.selected
	if i < 0 || i >= len(v.entries) {
		return refEntry{}, false
	}
	return v.entries[i], true
}

func (v *View) openLogForSelected() tui.View {
	entry, ok := v.selectedEntry()
	if !ok || v.openLog == nil {
		return nil
	}
	return v.openLog(entry.name)
}

func (v *View) openTreeForSelected() tui.View {
	entry, ok := v.selectedEntry()
	if !ok || v.openTree == nil {
		return nil
	}
	return v.openTree(entry.id)
}

// Show renders the ref list, one ref per row, with the date/id columns
// toggled by `m`/`i`.
func (v *View) Show(screen external.Screen, focused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cols, rows := screen.Size()
	v.cols, v.rows = cols, rows

	bodyRows := v.bodyRows()
	for row := 0; row < bodyRows; row++ {
		i := v.firstDisplayed + row
		screen.MoveTo(row, 0)
		if i >= len(v.entries) {
			continue
		}
		e := v.entries[i]
		var b strings.Builder
		if v.showDate {
			b.WriteString(e.when.Format("2006-01-02"))
			b.WriteByte(' ')
		}
		if v.showID {
			b.WriteString(e.id.String()[:8])
			b.WriteByte(' ')
		}
		b.WriteString(e.name)
		style := external.StyleNormal
		if focused && row == v.selected {
			style = external.StyleInverse
		}
		screen.WriteStyled(b.String(), style)
	}
}
