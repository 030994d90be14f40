// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

func putCommitAt(loose *fakeLoose, id, tree objects.ID, parents []objects.ID, when time.Time) {
	sig := gitobj.Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: when}
	c := &gitobj.Commit{ID: id, Tree: tree, Parents: parents, Author: sig, Committer: sig, Message: "m"}
	loose.put(id, objects.KindCommit, c.Encode())
}

func TestCommitGraphWalksNewestFirst(t *testing.T) {
	r, loose := testRepo()
	treeID := idN(1)
	putTree(loose, treeID, nil)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root := idN(2)
	putCommitAt(loose, root, treeID, nil, base)
	mid := idN(3)
	putCommitAt(loose, mid, treeID, []objects.ID{root}, base.Add(time.Hour))
	tip := idN(4)
	putCommitAt(loose, tip, treeID, []objects.ID{mid}, base.Add(2*time.Hour))

	g, err := r.NewCommitGraph(tip, "")
	require.NoError(t, err)

	first, err := g.Next()
	require.NoError(t, err)
	require.Equal(t, tip, first)

	second, err := g.Next()
	require.NoError(t, err)
	require.Equal(t, mid, second)

	third, err := g.Next()
	require.NoError(t, err)
	require.Equal(t, root, third)

	_, err = g.Next()
	require.True(t, togerr.Is(err, togerr.IterCompleted))
}

func TestCommitGraphSkipsMissingParents(t *testing.T) {
	r, loose := testRepo()
	treeID := idN(1)
	putTree(loose, treeID, nil)
	ghostParent := idN(9)
	tip := idN(2)
	putCommitAt(loose, tip, treeID, []objects.ID{ghostParent}, time.Now().UTC())

	g, err := r.NewCommitGraph(tip, "")
	require.NoError(t, err)

	first, err := g.Next()
	require.NoError(t, err)
	require.Equal(t, tip, first)

	_, err = g.Next()
	require.True(t, togerr.Is(err, togerr.IterCompleted))
}

func TestCommitGraphPathFilterSkipsUntouchedCommits(t *testing.T) {
	r, loose := testRepo()

	blobID := idN(1)
	putBlob(loose, blobID, "v1\n")
	blobID2 := idN(2)
	putBlob(loose, blobID2, "v2\n")

	treeWithFile := idN(3)
	putTree(loose, treeWithFile, []gitobj.TreeEntry{{Name: "a.txt", Mode: gitobj.ModeFile, ID: blobID}})
	treeChanged := idN(4)
	putTree(loose, treeChanged, []gitobj.TreeEntry{{Name: "a.txt", Mode: gitobj.ModeFile, ID: blobID2}})
	treeUnrelated := idN(5)
	putTree(loose, treeUnrelated, []gitobj.TreeEntry{
		{Name: "a.txt", Mode: gitobj.ModeFile, ID: blobID2},
		{Name: "b.txt", Mode: gitobj.ModeFile, ID: blobID},
	})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root := idN(10)
	putCommitAt(loose, root, treeWithFile, nil, base)
	touches := idN(11)
	putCommitAt(loose, touches, treeChanged, []objects.ID{root}, base.Add(time.Hour))
	untouched := idN(12)
	putCommitAt(loose, untouched, treeUnrelated, []objects.ID{touches}, base.Add(2*time.Hour))

	g, err := r.NewCommitGraph(untouched, "a.txt")
	require.NoError(t, err)

	first, err := g.Next()
	require.NoError(t, err)
	require.Equal(t, touches, first)

	second, err := g.Next()
	require.NoError(t, err)
	require.Equal(t, root, second)

	_, err = g.Next()
	require.True(t, togerr.Is(err, togerr.IterCompleted))
}
