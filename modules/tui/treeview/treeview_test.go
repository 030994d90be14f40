// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package treeview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/tui"
)

func idN(b byte) objects.ID {
	var id objects.ID
	id[0] = b
	return id
}

func newTestView(t *testing.T) *View {
	t.Helper()
	root := &gitobj.Tree{
		ID: idN(1),
		Entries: []gitobj.TreeEntry{
			{Name: "zeta.go", Mode: gitobj.ModeFile, ID: idN(2)},
			{Name: "src", Mode: gitobj.ModeDir, ID: idN(3)},
			{Name: "link", Mode: gitobj.ModeSymlink, ID: idN(4)},
		},
	}
	sub := &gitobj.Tree{
		ID: idN(3),
		Entries: []gitobj.TreeEntry{
			{Name: "main.go", Mode: gitobj.ModeFile, ID: idN(5)},
		},
	}
	trees := map[objects.ID]*gitobj.Tree{
		idN(1): root,
		idN(3): sub,
	}
	resolve := func(id objects.ID) (*gitobj.Tree, error) {
		return trees[id], nil
	}
	readBlob := func(id objects.ID) ([]byte, error) {
		return []byte("../target\x01"), nil
	}
	var openedBlame string
	openBlame := func(path string) tui.View {
		openedBlame = path
		return nil
	}
	var openedLog string
	openLog := func(path string) tui.View {
		openedLog = path
		return nil
	}
	v, err := New(resolve, readBlob, openBlame, openLog, nil, idN(9), idN(1))
	require.NoError(t, err)
	v.Resize(80, 10)
	_ = openedBlame
	_ = openedLog
	return v
}

func TestTreeViewEntriesSortedDirsFirst(t *testing.T) {
	v := newTestView(t)
	entries := v.entries()
	require.Equal(t, "src", entries[0].Name)
}

func TestTreeViewEnterDirPushesBreadcrumb(t *testing.T) {
	v := newTestView(t)
	v.activate() // selected is 0, which sorts to "src" (dirs first)
	require.Equal(t, "src", v.path)
	require.Equal(t, 1, v.crumbs.Size())
}

func TestTreeViewBackspacePopsBreadcrumb(t *testing.T) {
	v := newTestView(t)
	v.activate() // descend into "src"
	v.pop()
	require.Equal(t, "", v.path)
	require.Equal(t, 0, v.crumbs.Size())
}

func TestTreeViewEnterOnBlobOpensBlame(t *testing.T) {
	v := newTestView(t)
	v.move(2) // "zeta.go" sorts after dirs
	entry, ok := v.selectedEntry()
	require.True(t, ok)
	require.Equal(t, "zeta.go", entry.Name)
	result := v.activate()
	require.Equal(t, tui.ActionOpenChild, result.Action)
}

func TestTreeViewSanitizeTargetReplacesNonPrintable(t *testing.T) {
	out := sanitizeTarget([]byte("ok\x01bad"))
	require.Equal(t, "ok?bad", out)
}

func TestTreeViewOpenPathDescendsIntoDirectory(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.OpenPath("src"))
	require.Equal(t, "src", v.path)
	require.Equal(t, 1, v.crumbs.Size())
}

func TestTreeViewOpenPathSelectsBlobWithoutDescending(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.OpenPath("zeta.go"))
	require.Equal(t, "", v.path)
	entry, ok := v.selectedEntry()
	require.True(t, ok)
	require.Equal(t, "zeta.go", entry.Name)
}

func TestTreeViewOpenPathDescendsThenSelectsNestedBlob(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.OpenPath("src/main.go"))
	require.Equal(t, "src", v.path)
	entry, ok := v.selectedEntry()
	require.True(t, ok)
	require.Equal(t, "main.go", entry.Name)
}

func TestTreeViewOpenPathUnknownComponentStopsAtDeepest(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.OpenPath("nope"))
	require.Equal(t, "", v.path)
}

func TestTreeViewToggleShowID(t *testing.T) {
	v := newTestView(t)
	require.False(t, v.showID)
	v.Input(tui.Key{Rune: 'i'})
	require.True(t, v.showID)
}
