// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/objects"
)

func writeLooseObject(t *testing.T, repoPath string, id objects.ID, kind string, content []byte) {
	t.Helper()
	hexStr := id.String()
	dir := filepath.Join(repoPath, "objects", hexStr[:2])
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var raw bytes.Buffer
	fmt.Fprintf(&raw, "%s %d\x00", kind, len(content))
	raw.Write(content)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, hexStr[2:]), compressed.Bytes(), 0o644))
}

func TestLooseBackendReadsBlob(t *testing.T) {
	dir := t.TempDir()
	id := idN(7)
	writeLooseObject(t, dir, id, "blob", []byte("hello\n"))

	b := NewLooseBackend(dir)
	kind, data, found, err := b.Open(id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, objects.KindBlob, kind)
	require.Equal(t, []byte("hello\n"), data)
}

func TestLooseBackendMissingObjectNotFound(t *testing.T) {
	dir := t.TempDir()
	b := NewLooseBackend(dir)
	_, _, found, err := b.Open(idN(9))
	require.NoError(t, err)
	require.False(t, found)
}

func TestLooseBackendRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	id := idN(8)
	writeLooseObject(t, dir, id, "bogus", []byte("x"))

	b := NewLooseBackend(dir)
	_, _, _, err := b.Open(id)
	require.Error(t, err)
}
