// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/objects"
)

func TestObjectHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		kind objects.Kind
		size uint64
	}{
		{objects.KindBlob, 0},
		{objects.KindBlob, 15},
		{objects.KindCommit, 16},
		{objects.KindTree, 1 << 20},
		{objects.KindTag, 1<<35 + 7},
		{objects.KindOffsetDelta, 300},
		{objects.KindRefDelta, 4096},
	}
	for _, c := range cases {
		enc := encodeObjectHeader(c.kind, c.size)
		kind, size, n, err := decodeObjectHeader(enc)
		require.NoError(t, err)
		require.Equal(t, c.kind, kind)
		require.Equal(t, c.size, size)
		require.Equal(t, len(enc), n)
	}
}

func TestDecodeObjectHeaderRejectsInvalidKind(t *testing.T) {
	_, _, _, err := decodeObjectHeader([]byte{0x50})
	require.Error(t, err)
}

func TestDecodeOffsetDeltaBase(t *testing.T) {
	// Single-byte encoding: the low 7 bits are the value directly.
	dist, n, err := decodeOffsetDeltaBase([]byte{0x05})
	require.NoError(t, err)
	require.EqualValues(t, 5, dist)
	require.Equal(t, 1, n)

	// Two-byte encoding follows the "+1 on continue" rule: a leading
	// 0x80-flagged byte of 0x01 contributes (1+1)<<7 before the low
	// byte is added in.
	dist, n, err = decodeOffsetDeltaBase([]byte{0x81, 0x00})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.EqualValues(t, (1+1)<<7, dist)
}
