// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package gitobj

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/antgroup/gotview/modules/objects"
)

// TreeEntry is one directory entry: a name, its mode, and the id of the
// blob/tree/commit (submodule) it names.
type TreeEntry struct {
	Name string
	Mode FileMode
	ID   objects.ID
}

// Tree is the decoded form of a tree object: an ordered list of entries.
// Entries are kept in on-disk order, which git already stores sorted by
// name (directories sort as if their name had a trailing '/').
type Tree struct {
	ID      objects.ID
	Entries []TreeEntry
}

// ByName returns the entry named name, or (TreeEntry{}, false).
func (t *Tree) ByName(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// Sorted returns a copy of Entries ordered the way the tree view lists
// them: directories first, then files, each alphabetically — a
// presentation concern distinct from the on-disk git sort order.
func (t *Tree) Sorted() []TreeEntry {
	out := make([]TreeEntry, len(t.Entries))
	copy(out, t.Entries)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Mode.IsDir(), out[j].Mode.IsDir()
		if di != dj {
			return di
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DecodeTree parses the binary tree object body: a sequence of
// "<octal-mode> <name>\x00<20-byte-id>" records.
func DecodeTree(id objects.ID, body []byte) (*Tree, error) {
	t := &Tree{ID: id}
	for len(body) > 0 {
		sp := bytes.IndexByte(body, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("tog: malformed tree entry: missing space")
		}
		mode, err := ParseFileMode(string(body[:sp]))
		if err != nil {
			return nil, fmt.Errorf("tog: malformed tree entry mode: %w", err)
		}
		body = body[sp+1:]

		nul := bytes.IndexByte(body, 0)
		if nul < 0 {
			return nil, fmt.Errorf("tog: malformed tree entry: missing NUL terminator")
		}
		name := string(body[:nul])
		body = body[nul+1:]

		if len(body) < objects.IDSize {
			return nil, fmt.Errorf("tog: malformed tree entry: truncated id")
		}
		var entryID objects.ID
		copy(entryID[:], body[:objects.IDSize])
		body = body[objects.IDSize:]

		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: mode, ID: entryID})
	}
	return t, nil
}

// Encode renders t back into its binary tree object body.
func (t *Tree) Encode() []byte {
	var b bytes.Buffer
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "%s %s\x00", e.Mode, e.Name)
		b.Write(e.ID[:])
	}
	return b.Bytes()
}
