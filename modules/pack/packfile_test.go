// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenPackfileRejectsBadSignature(t *testing.T) {
	dir, _, _ := writeTestPack(t)
	packPath := filepath.Join(dir, "pack-test.pack")
	idxPath := filepath.Join(dir, "pack-test.idx")

	raw, err := os.ReadFile(packPath)
	require.NoError(t, err)
	raw[0] = 'X'
	require.NoError(t, os.WriteFile(packPath, raw, 0o644))

	_, err = OpenPackfile(packPath, idxPath)
	require.Error(t, err)
}

func TestOpenPackfileRejectsBadVersion(t *testing.T) {
	dir, _, _ := writeTestPack(t)
	packPath := filepath.Join(dir, "pack-test.pack")
	idxPath := filepath.Join(dir, "pack-test.idx")

	raw, err := os.ReadFile(packPath)
	require.NoError(t, err)
	raw[7] = 3 // version field, big-endian u32 at bytes 4-7
	require.NoError(t, os.WriteFile(packPath, raw, 0o644))

	_, err = OpenPackfile(packPath, idxPath)
	require.Error(t, err)
}

func TestOpenPackfileRejectsNobjectsMismatch(t *testing.T) {
	dir, _, _ := writeTestPack(t)
	packPath := filepath.Join(dir, "pack-test.pack")
	idxPath := filepath.Join(dir, "pack-test.idx")

	raw, err := os.ReadFile(packPath)
	require.NoError(t, err)
	raw[11] = 9 // nobjects field, big-endian u32 at bytes 8-11
	require.NoError(t, os.WriteFile(packPath, raw, 0o644))

	_, err = OpenPackfile(packPath, idxPath)
	require.Error(t, err)
}

func TestOpenPackfileRejectsBadTrailer(t *testing.T) {
	dir, _, _ := writeTestPack(t)
	packPath := filepath.Join(dir, "pack-test.pack")
	idxPath := filepath.Join(dir, "pack-test.idx")

	raw, err := os.ReadFile(packPath)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(packPath, raw, 0o644))

	_, err = OpenPackfile(packPath, idxPath)
	require.Error(t, err)
}
