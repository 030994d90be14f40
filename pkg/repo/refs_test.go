// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

func writeRef(t *testing.T, repoPath, name, content string) {
	t.Helper()
	full := filepath.Join(repoPath, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content+"\n"), 0o644))
}

func TestRefResolverResolvesLooseRef(t *testing.T) {
	r, loose := testRepo()
	treeID := idN(1)
	putTree(loose, treeID, nil)
	commitID := idN(2)
	putCommit(loose, commitID, treeID, nil, "c")

	dir := t.TempDir()
	writeRef(t, dir, "refs/heads/main", commitID.String())

	resolver := NewRefResolver(r, dir)
	got, err := resolver.Resolve("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, commitID, got)
}

func TestRefResolverFollowsSymbolicHEAD(t *testing.T) {
	r, loose := testRepo()
	treeID := idN(1)
	putTree(loose, treeID, nil)
	commitID := idN(2)
	putCommit(loose, commitID, treeID, nil, "c")

	dir := t.TempDir()
	writeRef(t, dir, "refs/heads/main", commitID.String())
	writeRef(t, dir, "HEAD", "ref: refs/heads/main")

	resolver := NewRefResolver(r, dir)
	got, err := resolver.Head()
	require.NoError(t, err)
	require.Equal(t, commitID, got)
}

func TestRefResolverDereferencesAnnotatedTag(t *testing.T) {
	r, loose := testRepo()
	treeID := idN(1)
	putTree(loose, treeID, nil)
	commitID := idN(2)
	putCommit(loose, commitID, treeID, nil, "c")

	tagID := idN(3)
	tag := &gitobj.Tag{
		ID:         tagID,
		Object:     commitID,
		ObjectKind: "commit",
		Name:       "v1.0.0",
		Tagger:     gitobj.Signature{Name: "Ada", Email: "ada@example.com"},
		Message:    "release",
	}
	loose.put(tagID, objects.KindTag, tag.Encode())

	dir := t.TempDir()
	writeRef(t, dir, "refs/tags/v1.0.0", tagID.String())

	resolver := NewRefResolver(r, dir)
	got, err := resolver.Resolve("refs/tags/v1.0.0")
	require.NoError(t, err)
	require.Equal(t, commitID, got)
}

func TestRefResolverListReadsLooseAndPacked(t *testing.T) {
	r, loose := testRepo()
	treeID := idN(1)
	putTree(loose, treeID, nil)
	commitID := idN(2)
	putCommit(loose, commitID, treeID, nil, "c")

	dir := t.TempDir()
	writeRef(t, dir, "refs/heads/main", commitID.String())
	packed := "# pack-refs with: sorted\n" + commitID.String() + " refs/heads/packed-branch\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "packed-refs"), []byte(packed), 0o644))

	resolver := NewRefResolver(r, dir)
	names, err := resolver.List()
	require.NoError(t, err)
	require.Contains(t, names, "refs/heads/main")
	require.Contains(t, names, "refs/heads/packed-branch")
}

func TestRefResolverNonCommitTargetErrors(t *testing.T) {
	r, loose := testRepo()
	blobID := idN(1)
	putBlob(loose, blobID, "not a commit")

	dir := t.TempDir()
	writeRef(t, dir, "refs/heads/odd", blobID.String())

	resolver := NewRefResolver(r, dir)
	_, err := resolver.Resolve("refs/heads/odd")
	require.Error(t, err)
	require.True(t, togerr.Is(err, togerr.NotImplemented))
}
