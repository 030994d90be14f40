// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"github.com/antgroup/gotview/modules/objects"
)

// decodeObjectHeader decodes a pack object record header: the kind in the
// top three bits of the first byte (after the continuation bit) and the
// uncompressed size as a little-endian base-128 varint spread across the
// low four bits of the first byte and seven bits of every following byte
// that has its continuation bit set. It returns the kind, the decoded
// size, and the number of header bytes consumed.
func decodeObjectHeader(b []byte) (objects.Kind, uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, 0, errBadPack("decodeObjectHeader", "empty object header")
	}
	c := b[0]
	kind := objects.Kind((c >> 4) & 0x7)
	size := uint64(c & 0x0f)
	shift := uint(4)
	n := 1
	for c&0x80 != 0 {
		if n >= 9 {
			return 0, 0, 0, errOverflow("decodeObjectHeader", "object size varint longer than 9 bytes")
		}
		if n >= len(b) {
			return 0, 0, 0, errBadPack("decodeObjectHeader", "truncated object header")
		}
		c = b[n]
		size |= uint64(c&0x7f) << shift
		shift += 7
		n++
	}
	if !kind.Valid() {
		return 0, 0, 0, errBadPack("decodeObjectHeader", "unrecognized object kind %d", uint8(kind))
	}
	return kind, size, n, nil
}

// decodeOffsetDeltaBase decodes the negative offset that follows an
// offset-delta object header: a big-endian base-128 varint where every
// continuation adds one before shifting, matching the pack format's
// "+1 on continue" rule so that no encoding of a given distance is ever
// ambiguous with a shorter one.
func decodeOffsetDeltaBase(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, errBadPack("decodeOffsetDeltaBase", "empty offset-delta base")
	}
	c := b[0]
	offset := uint64(c & 0x7f)
	n := 1
	for c&0x80 != 0 {
		if n >= len(b) {
			return 0, 0, errBadPack("decodeOffsetDeltaBase", "truncated offset-delta base")
		}
		c = b[n]
		offset++
		offset = (offset << 7) + uint64(c&0x7f)
		n++
	}
	return offset, n, nil
}

// encodeObjectHeader is the inverse of decodeObjectHeader, used by tests to
// check the decoder against hand-built fixtures rather than real pack
// files.
func encodeObjectHeader(kind objects.Kind, size uint64) []byte {
	first := byte(kind&0x7) << 4
	first |= byte(size & 0x0f)
	size >>= 4
	out := []byte{first}
	if size == 0 {
		return out
	}
	out[0] |= 0x80
	for size != 0 {
		b := byte(size & 0x7f)
		size >>= 7
		if size != 0 {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}
