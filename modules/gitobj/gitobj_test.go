// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package gitobj

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/objects"
)

func TestCommitRoundTrip(t *testing.T) {
	parent := objects.NewID("111111111111111111111111111111111111111a")
	tree := objects.NewID("222222222222222222222222222222222222222b")
	c := &Commit{
		Tree:    tree,
		Parents: []objects.ID{parent},
		Author: Signature{
			Name: "Jane Doe", Email: "jane@example.com",
		},
		Committer: Signature{
			Name: "Jane Doe", Email: "jane@example.com",
		},
		ExtraHeaders: []ExtraHeader{{K: "encoding", V: "UTF-8"}},
		Message:      "add feature\n\nlonger body here\n",
	}
	body := c.Encode()

	id := objects.NewID("333333333333333333333333333333333333333c")
	got, err := DecodeCommit(id, body)
	require.NoError(t, err)
	require.Equal(t, tree, got.Tree)
	require.Equal(t, []objects.ID{parent}, got.Parents)
	require.Equal(t, "Jane Doe", got.Author.Name)
	require.Equal(t, "jane@example.com", got.Author.Email)
	require.Equal(t, []ExtraHeader{{K: "encoding", V: "UTF-8"}}, got.ExtraHeaders)
	require.Equal(t, c.Message, got.Message)
	require.Equal(t, "add feature", got.Summary())
}

func TestTreeRoundTrip(t *testing.T) {
	blobID := objects.NewID("444444444444444444444444444444444444444d")
	dirID := objects.NewID("555555555555555555555555555555555555555e")
	tr := &Tree{Entries: []TreeEntry{
		{Name: "zeta.txt", Mode: ModeFile, ID: blobID},
		{Name: "alpha", Mode: ModeDir, ID: dirID},
	}}
	body := tr.Encode()

	id := objects.NewID("666666666666666666666666666666666666666f")
	got, err := DecodeTree(id, body)
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)

	entry, ok := got.ByName("alpha")
	require.True(t, ok)
	require.Equal(t, "/", entry.Mode.Decoration())

	sorted := got.Sorted()
	require.Equal(t, "alpha", sorted[0].Name) // directories sort first
}

func TestDecodeTagAndDispatch(t *testing.T) {
	obj := objects.NewID("777777777777777777777777777777777777777a")
	tag := &Tag{
		Object:     obj,
		ObjectKind: "commit",
		Name:       "v1.0.0",
		Tagger:     Signature{Name: "R", Email: "r@example.com"},
		Message:    "release\n",
	}
	body := tag.Encode()

	id := objects.NewID("888888888888888888888888888888888888888b")
	decoded, err := Decode(id, objects.KindTag, body)
	require.NoError(t, err)
	got, ok := decoded.(*Tag)
	require.True(t, ok)
	require.Equal(t, "v1.0.0", got.Name)
	require.Equal(t, obj, got.Object)
}

func TestAsCommitRejectsWrongKind(t *testing.T) {
	_, err := AsCommit(objects.ZeroID, objects.KindTree, nil)
	require.Error(t, err)
}
