// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package blameview

import (
	"fmt"
	"strings"
	"sync"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/tui"
)

// ResolveBlob resolves path to its blob id at commit at (§4.8 step 1).
type ResolveBlob func(path string, at objects.ID) (objects.ID, error)

// ExtractBlob returns the raw content of a blob object.
type ExtractBlob func(id objects.ID) ([]byte, error)

// CommitParent returns commit's first parent, or ok=false at a root
// commit.
type CommitParent func(commit objects.ID) (parent objects.ID, ok bool, err error)

// OpenDiff opens a diff of commit against parent as a child view.
type OpenDiff func(commit, parent objects.ID) tui.View

// View implements the blame view (§4.8).
type View struct {
	mu sync.Mutex

	resolve ResolveBlob
	extract ExtractBlob
	parent  CommitParent
	openDiff OpenDiff
	blamer  external.Blamer

	path  string
	stack []objects.ID // head is stack[len(stack)-1]

	idx   *lineIndex
	lines []lineSlot

	blameComplete bool
	ann           *annotator

	selected   int
	firstRow   int
	cols, rows int

	lastErr error
}

// Open implements §4.8's Open sequence: resolve path to a blob id,
// extract and index it, and spawn the annotation thread.
func Open(blamer external.Blamer, resolve ResolveBlob, extract ExtractBlob, parent CommitParent, openDiff OpenDiff, path string, at objects.ID) (*View, error) {
	v := &View{
		resolve:  resolve,
		extract:  extract,
		parent:   parent,
		openDiff: openDiff,
		blamer:   blamer,
		path:     path,
		stack:    []objects.ID{at},
	}
	if err := v.runAt(at); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) runAt(at objects.ID) error {
	blobID, err := v.resolve(v.path, at)
	if err != nil {
		return err
	}
	data, err := v.extract(blobID)
	if err != nil {
		return err
	}
	idx, err := newLineIndex(data)
	if err != nil {
		return err
	}

	v.mu.Lock()
	prevAnn := v.ann
	prevIdx := v.idx
	v.mu.Unlock()
	if prevAnn != nil {
		_ = prevAnn.stop()
	}
	if prevIdx != nil {
		_ = prevIdx.close()
	}

	v.mu.Lock()
	v.idx = idx
	v.lines = make([]lineSlot, idx.lineCount())
	v.blameComplete = false
	v.selected = 0
	v.firstRow = 0
	ann := newAnnotator(&v.mu, v.blamer, v.path, at, v.lines)
	v.ann = ann
	v.mu.Unlock()

	ann.start()
	go func() {
		<-ann.finChan
		v.mu.Lock()
		v.blameComplete = true
		v.mu.Unlock()
	}()
	return nil
}

func (v *View) head() objects.ID {
	return v.stack[len(v.stack)-1]
}

func (v *View) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return "blame: " + v.path + "@" + v.head().String()[:8]
}

func (v *View) Resize(cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cols, v.rows = cols, rows
}

// Close stops the annotation thread and releases the temp file.
func (v *View) Close() error {
	v.mu.Lock()
	ann := v.ann
	idx := v.idx
	v.mu.Unlock()
	if ann != nil {
		_ = ann.stop()
	}
	if idx != nil {
		_ = idx.close()
	}
	return nil
}

func (v *View) bodyRows() int {
	if v.rows <= 2 {
		return 1
	}
	return v.rows - 2
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
	case key.Rune == 'c':
		if child := v.diffSelectedLine(); child != nil {
			return tui.Result{Action: tui.ActionOpenChild, Child: child}
		}
	case key.Name == "Enter":
		if child := v.diffSelectedLine(); child != nil {
			return tui.Result{Action: tui.ActionOpenChild, Child: child}
		}
	case key.Rune == 'p':
		v.popToLineParent()
	case key.Rune == 'C':
		v.popStack()
	case key.Rune == 'q':
		return tui.Result{Action: tui.ActionClose}
	}
	return tui.Result{}
}

func (v *View) move(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	target := v.firstRow + v.selected + delta
	n := v.idx.lineCount()
	if target < 0 {
		target = 0
	}
	if target >= n {
		target = n - 1
	}
	rows := v.bodyRows()
	switch {
	case target < v.firstRow:
		v.firstRow = target
		v.selected = 0
	case target >= v.firstRow+rows:
		v.firstRow = target - rows + 1
		v.selected = rows - 1
	default:
		v.selected = target - v.firstRow
	}
}

func (v *View) selectedCommit() (objects.ID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.firstRow + v.selected
	if i < 0 || i >= len(v.lines) || !v.lines[i].annotated {
		return objects.ZeroID, false
	}
	return v.lines[i].id, true
}

// diffSelectedLine opens a diff of the selected line's commit against
// its first parent, per `c` and `Enter` (§4.8).
func (v *View) diffSelectedLine() tui.View {
	if v.openDiff == nil {
		return nil
	}
	commit, ok := v.selectedCommit()
	if !ok {
		return nil
	}
	parent, hasParent, err := v.parent(commit)
	if err != nil {
		return nil
	}
	if !hasParent {
		parent = objects.ZeroID
	}
	return v.openDiff(commit, parent)
}

// popToLineParent re-runs blame at the selected line's commit's parent,
// per `p`: "pop to the parent of the current line's commit ... abort if
// the path has no history there."
func (v *View) popToLineParent() {
	commit, ok := v.selectedCommit()
	if !ok {
		return
	}
	parent, hasParent, err := v.parent(commit)
	if err != nil || !hasParent {
		return
	}
	if _, err := v.resolve(v.path, parent); err != nil {
		return
	}
	v.mu.Lock()
	v.stack = append(v.stack, parent)
	at := parent
	v.mu.Unlock()
	_ = v.runAt(at)
}

// popStack pops one entry from the blamed-commit stack and re-runs
// blame at the previous commit (`C`); no-op at the initial commit.
func (v *View) popStack() {
	v.mu.Lock()
	if len(v.stack) <= 1 {
		v.mu.Unlock()
		return
	}
	v.stack = v.stack[:len(v.stack)-1]
	at := v.head()
	v.mu.Unlock()
	_ = v.runAt(at)
}

func (v *View) SearchStart(string) error { return nil }
func (v *View) SearchNext(bool) bool     { return false }

// Show renders the view per §4.8's display rule.
func (v *View) Show(screen external.Screen, focused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	cols, rows := screen.Size()
	v.cols, v.rows = cols, rows

	screen.MoveTo(0, 0)
	screen.WriteStyled(v.head().String(), external.StyleMeta)

	annotated := 0
	for _, l := range v.lines {
		if l.annotated {
			annotated++
		}
	}
	screen.MoveTo(1, 0)
	screen.WriteStyled(fmt.Sprintf("[%d/%d] %d/%d annotated %s", v.firstRow+v.selected+1, len(v.lines), annotated, len(v.lines), v.path), external.StyleMeta)

	bodyRows := v.bodyRows()
	var prevID objects.ID
	havePrev := false
	for row := 0; row < bodyRows; row++ {
		i := v.firstRow + row
		screen.MoveTo(row+2, 0)
		if i >= len(v.lines) {
			continue
		}
		prefix := "........"
		if v.lines[i].annotated {
			if havePrev && prevID == v.lines[i].id {
				prefix = "        "
			} else {
				prefix = v.lines[i].id.String()[:8]
			}
			prevID = v.lines[i].id
			havePrev = true
		} else {
			havePrev = false
		}
		text, _ := v.idx.line(i)
		line := prefix + " " + expandTabs(text)
		style := external.StyleNormal
		if focused && row == v.selected {
			style = external.StyleInverse
		}
		screen.WriteStyled(line, style)
	}
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
		b.WriteRune(r)
		col++
	}
	return b.String()
}
