// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
)

func TestDiffProducerRendersPreambleAndHunk(t *testing.T) {
	r, loose := testRepo()

	oldBlob := idN(1)
	putBlob(loose, oldBlob, "one\ntwo\nthree\n")
	newBlob := idN(2)
	putBlob(loose, newBlob, "one\nTWO\nthree\n")

	oldTree := idN(3)
	putTree(loose, oldTree, []gitobj.TreeEntry{{Name: "a.txt", Mode: gitobj.ModeFile, ID: oldBlob}})
	newTree := idN(4)
	putTree(loose, newTree, []gitobj.TreeEntry{{Name: "a.txt", Mode: gitobj.ModeFile, ID: newBlob}})

	parent := idN(5)
	putCommit(loose, parent, oldTree, nil, "base")
	child := idN(6)
	putCommit(loose, child, newTree, []objects.ID{parent}, "change TWO")

	p := NewDiffProducer(r)
	text, offsets, err := p.Diff(child, parent, 1, false, false)
	require.NoError(t, err)
	require.NotEmpty(t, offsets)
	require.Contains(t, text, "commit "+child.String())
	require.Contains(t, text, "parent "+parent.String())
	require.Contains(t, text, "file a.txt")
	require.Contains(t, text, "from: Ada Lovelace")
	require.Contains(t, text, "via: Ada Lovelace")
	require.Contains(t, text, "date: 2026-01-02")
	require.Contains(t, text, "-two")
	require.Contains(t, text, "+TWO")
}

func TestDiffProducerRootCommitDiffsAgainstNothing(t *testing.T) {
	r, loose := testRepo()
	blob := idN(1)
	putBlob(loose, blob, "hello\n")
	tree := idN(2)
	putTree(loose, tree, []gitobj.TreeEntry{{Name: "a.txt", Mode: gitobj.ModeFile, ID: blob}})
	root := idN(3)
	putCommit(loose, root, tree, nil, "root")

	p := NewDiffProducer(r)
	text, _, err := p.Diff(root, objects.ZeroID, 3, false, false)
	require.NoError(t, err)
	require.Contains(t, text, "parent (none)")
	require.Contains(t, text, "+hello")
}

func TestDiffProducerIgnoreWhitespace(t *testing.T) {
	r, loose := testRepo()
	oldBlob := idN(1)
	putBlob(loose, oldBlob, "one  two\n")
	newBlob := idN(2)
	putBlob(loose, newBlob, "one two\n")
	oldTree := idN(3)
	putTree(loose, oldTree, []gitobj.TreeEntry{{Name: "a.txt", Mode: gitobj.ModeFile, ID: oldBlob}})
	newTree := idN(4)
	putTree(loose, newTree, []gitobj.TreeEntry{{Name: "a.txt", Mode: gitobj.ModeFile, ID: newBlob}})
	parent := idN(5)
	putCommit(loose, parent, oldTree, nil, "base")
	child := idN(6)
	putCommit(loose, child, newTree, []objects.ID{parent}, "whitespace only")

	p := NewDiffProducer(r)
	text, _, err := p.Diff(child, parent, 1, true, false)
	require.NoError(t, err)
	require.False(t, strings.Contains(text, "@@"), "whitespace-only change should produce no hunk when ignored")
}

func TestDiffProducerBinaryNoticeWithoutForceText(t *testing.T) {
	r, loose := testRepo()
	oldBlob := idN(1)
	putBlob(loose, oldBlob, "text\n")
	newBlob := idN(2)
	loose.put(newBlob, objects.KindBlob, []byte{0x00, 0x01, 0x02})
	oldTree := idN(3)
	putTree(loose, oldTree, []gitobj.TreeEntry{{Name: "a.bin", Mode: gitobj.ModeFile, ID: oldBlob}})
	newTree := idN(4)
	putTree(loose, newTree, []gitobj.TreeEntry{{Name: "a.bin", Mode: gitobj.ModeFile, ID: newBlob}})
	parent := idN(5)
	putCommit(loose, parent, oldTree, nil, "base")
	child := idN(6)
	putCommit(loose, child, newTree, []objects.ID{parent}, "binary change")

	p := NewDiffProducer(r)
	text, _, err := p.Diff(child, parent, 3, false, false)
	require.NoError(t, err)
	require.Contains(t, text, "Binary files differ")
}
