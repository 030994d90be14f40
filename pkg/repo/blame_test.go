// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
)

func commitWithFile(loose *fakeLoose, id objects.ID, parents []objects.ID, name, content string) {
	blobID := id // reuse the commit's own id byte as a distinct, deterministic blob id tag
	blobID[0] = 0xBB
	putBlob(loose, blobID, content)
	treeID := id
	treeID[0] = 0xCC
	putTree(loose, treeID, []gitobj.TreeEntry{{Name: name, Mode: gitobj.ModeFile, ID: blobID}})
	putCommit(loose, id, treeID, parents, "c")
}

func TestBlamerAttributesUnchangedFileToRootCommit(t *testing.T) {
	r, loose := testRepo()
	root := idN(1)
	commitWithFile(loose, root, nil, "a.txt", "one\ntwo\n")

	b := NewBlamer(r)
	var lines []int
	var commits []objects.ID
	err := b.Blame("a.txt", root, func(lineno int, commit objects.ID) error {
		lines = append(lines, lineno)
		commits = append(commits, commit)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, lines)
	require.Equal(t, root, commits[0])
	require.Equal(t, root, commits[1])
}

func TestBlamerAttributesAddedLineToChildCommit(t *testing.T) {
	r, loose := testRepo()
	root := idN(1)
	commitWithFile(loose, root, nil, "a.txt", "one\ntwo\n")
	child := idN(2)
	commitWithFile(loose, child, []objects.ID{root}, "a.txt", "one\ntwo\nthree\n")

	b := NewBlamer(r)
	attribution := map[int]objects.ID{}
	err := b.Blame("a.txt", child, func(lineno int, commit objects.ID) error {
		attribution[lineno] = commit
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, root, attribution[1])
	require.Equal(t, root, attribution[2])
	require.Equal(t, child, attribution[3])
}
