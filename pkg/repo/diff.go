// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
)

// DiffProducer implements external.DiffProducer: a commits-vs-parent
// diff, built by recursively comparing the two trees for changed blobs
// and running the Myers edit-script algorithm over each pair. a is the
// newer commit; b (possibly objects.ZeroID, meaning "against nothing",
// the root-commit case) is its parent.
type DiffProducer struct {
	repo *Repo
}

// NewDiffProducer wraps repo as an external.DiffProducer.
func NewDiffProducer(repo *Repo) *DiffProducer {
	return &DiffProducer{repo: repo}
}

type fileChange struct {
	path             string
	oldID, newID     objects.ID
	oldMode, newMode gitobj.FileMode
}

// Diff implements external.DiffProducer.
func (p *DiffProducer) Diff(a, b objects.ID, contextLines int, ignoreWhitespace, forceText bool) (string, []int64, error) {
	commitA, err := p.repo.ReadCommit(a)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	writePreamble(&buf, commitA, b)

	var parentTree objects.ID
	if !b.IsZero() {
		commitB, err := p.repo.ReadCommit(b)
		if err != nil {
			return "", nil, err
		}
		parentTree = commitB.Tree
	}

	changes, err := p.diffTrees("", parentTree, commitA.Tree)
	if err != nil {
		return "", nil, err
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].path < changes[j].path })

	for _, fc := range changes {
		if err := p.writeFileDiff(&buf, fc, contextLines, ignoreWhitespace, forceText); err != nil {
			return "", nil, err
		}
	}

	return indexLines(buf.String())
}

// writePreamble renders the commit/parent/from/via/date header §4.7's
// color rules key off of.
func writePreamble(buf *bytes.Buffer, commit *gitobj.Commit, parent objects.ID) {
	fmt.Fprintf(buf, "commit %s\n", commit.ID)
	if parent.IsZero() {
		fmt.Fprintln(buf, "parent (none)")
	} else {
		fmt.Fprintf(buf, "parent %s\n", parent)
	}
	fmt.Fprintf(buf, "tree %s\n", commit.Tree)
	fmt.Fprintf(buf, "from: %s <%s>\n", commit.Author.Name, commit.Author.Email)
	fmt.Fprintf(buf, "via: %s <%s>\n", commit.Committer.Name, commit.Committer.Email)
	fmt.Fprintf(buf, "date: %s\n", commit.Committer.When.Format("2006-01-02 15:04:05 -0700"))
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, commit.Message)
}

// diffTrees recursively compares two (possibly absent, via ZeroID)
// trees, returning every leaf entry whose id or mode differs.
func (p *DiffProducer) diffTrees(prefix string, aID, bID objects.ID) ([]fileChange, error) {
	if aID == bID {
		return nil, nil
	}

	aEntries, err := p.readTreeMap(aID)
	if err != nil {
		return nil, err
	}
	bEntries, err := p.readTreeMap(bID)
	if err != nil {
		return nil, err
	}

	names := map[string]bool{}
	for name := range aEntries {
		names[name] = true
	}
	for name := range bEntries {
		names[name] = true
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var out []fileChange
	for _, name := range sorted {
		ae, aok := aEntries[name]
		be, bok := bEntries[name]
		childPath := name
		if prefix != "" {
			childPath = prefix + "/" + name
		}

		aIsDir := aok && ae.Mode.IsDir()
		bIsDir := bok && be.Mode.IsDir()

		if aIsDir || bIsDir {
			var aTreeID, bTreeID objects.ID
			if aIsDir {
				aTreeID = ae.ID
			}
			if bIsDir {
				bTreeID = be.ID
			}
			sub, err := p.diffTrees(childPath, aTreeID, bTreeID)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			if aok && !aIsDir {
				out = append(out, fileChange{path: childPath, oldID: ae.ID, oldMode: ae.Mode})
			}
			if bok && !bIsDir {
				out = append(out, fileChange{path: childPath, newID: be.ID, newMode: be.Mode})
			}
			continue
		}

		if aok && bok && ae.ID == be.ID && ae.Mode == be.Mode {
			continue
		}
		fc := fileChange{path: childPath}
		if aok {
			fc.oldID, fc.oldMode = ae.ID, ae.Mode
		}
		if bok {
			fc.newID, fc.newMode = be.ID, be.Mode
		}
		out = append(out, fc)
	}
	return out, nil
}

func (p *DiffProducer) readTreeMap(id objects.ID) (map[string]gitobj.TreeEntry, error) {
	out := map[string]gitobj.TreeEntry{}
	if id.IsZero() {
		return out, nil
	}
	tree, err := p.repo.ReadTree(id)
	if err != nil {
		return nil, err
	}
	for _, e := range tree.Entries {
		out[e.Name] = e
	}
	return out, nil
}

// writeFileDiff renders one file's "file "/"blob " header plus its
// unified hunks (or a binary notice) to buf.
func (p *DiffProducer) writeFileDiff(buf *bytes.Buffer, fc fileChange, contextLines int, ignoreWhitespace, forceText bool) error {
	fmt.Fprintf(buf, "file %s\n", fc.path)
	fmt.Fprintf(buf, "blob %s %s\n", blobLabel(fc.oldID), blobLabel(fc.newID))

	var oldData, newData []byte
	var err error
	if !fc.oldID.IsZero() {
		oldData, err = p.repo.ReadBlob(fc.oldID)
		if err != nil {
			return err
		}
	}
	if !fc.newID.IsZero() {
		newData, err = p.repo.ReadBlob(fc.newID)
		if err != nil {
			return err
		}
	}

	if !forceText && (looksBinary(oldData) || looksBinary(newData)) {
		fmt.Fprintln(buf, "Binary files differ")
		fmt.Fprintln(buf)
		return nil
	}

	oldLines := splitLines(oldData)
	newLines := splitLines(newData)
	hunks := unifiedHunks(oldLines, newLines, contextLines, ignoreWhitespace)
	buf.WriteString(hunks)
	fmt.Fprintln(buf)
	return nil
}

func blobLabel(id objects.ID) string {
	if id.IsZero() {
		return "000000000000"
	}
	return id.String()[:12]
}

// looksBinary applies git's own heuristic: a NUL byte anywhere in the
// first 8000 bytes marks content as binary.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := string(data)
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// normalizeWhitespace collapses runs of whitespace for the
// ignore-whitespace comparison key, per §4.7's `w` toggle.
func normalizeWhitespace(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// unifiedHunks renders a through-b as one or more "@@ ... @@" sections
// with contextLines of unchanged lines around each changed run,
// adjacent runs within 2*contextLines of each other merged into a
// single hunk per the usual unified-diff convention.
func unifiedHunks(a, b []string, contextLines int, ignoreWhitespace bool) string {
	keyA, keyB := a, b
	if ignoreWhitespace {
		keyA = mapSlice(a, normalizeWhitespace)
		keyB = mapSlice(b, normalizeWhitespace)
	}
	changes := myersDiff(keyA, keyB)
	if len(changes) == 0 {
		return ""
	}

	type hunk struct {
		changes        []change
		startA, startB int
	}
	var hunks []hunk
	for _, c := range changes {
		if len(hunks) > 0 {
			last := &hunks[len(hunks)-1]
			lastEndA := last.changes[len(last.changes)-1].P1 + last.changes[len(last.changes)-1].Del
			if c.P1-lastEndA <= 2*contextLines {
				last.changes = append(last.changes, c)
				continue
			}
		}
		hunks = append(hunks, hunk{changes: []change{c}})
	}

	var buf bytes.Buffer
	for _, h := range hunks {
		first := h.changes[0]
		last := h.changes[len(h.changes)-1]
		startA := first.P1 - contextLines
		if startA < 0 {
			startA = 0
		}
		endA := last.P1 + last.Del + contextLines
		if endA > len(a) {
			endA = len(a)
		}
		startB := first.P2 - contextLines
		if startB < 0 {
			startB = 0
		}
		endB := last.P2 + last.Ins + contextLines
		if endB > len(b) {
			endB = len(b)
		}

		fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", startA+1, endA-startA, startB+1, endB-startB)

		pa, pb := startA, startB
		for _, c := range h.changes {
			for pa < c.P1 && pb < c.P2 {
				fmt.Fprintf(&buf, " %s\n", a[pa])
				pa++
				pb++
			}
			for pa < c.P1+c.Del {
				fmt.Fprintf(&buf, "-%s\n", a[pa])
				pa++
			}
			for pb < c.P2+c.Ins {
				fmt.Fprintf(&buf, "+%s\n", b[pb])
				pb++
			}
		}
		for pa < endA && pb < endB {
			fmt.Fprintf(&buf, " %s\n", a[pa])
			pa++
			pb++
		}
	}
	return buf.String()
}

func mapSlice(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}

// indexLines builds the byte-offset-per-line index diffview's line-
// addressed scrolling/search needs.
func indexLines(text string) (string, []int64, error) {
	var offsets []int64
	var pos int64
	start := int64(0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, start)
			start = int64(i) + 1
		}
	}
	pos = int64(len(text))
	if start < pos {
		offsets = append(offsets, start)
	}
	return text, offsets, nil
}
