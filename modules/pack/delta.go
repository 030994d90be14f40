// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"math/bits"

	"github.com/antgroup/gotview/modules/objects"
)

// maxChainDepth bounds delta-chain recursion so that malformed data
// containing a ref-delta cycle fails instead of looping forever (§4.3).
const maxChainDepth = 50

// DeltaEntry is one link in a resolved delta chain: the pack it lives in
// and the byte range of its (still-deflated-on-disk) record.
type DeltaEntry struct {
	Pack   *Packfile
	Offset int64
	Header *ObjectHeader
}

// DeltaChain is the result of walking from a delta record down to its
// terminal plain object, per §4.3. Entries are ordered leaf-first: the
// object originally requested comes first, its base's base comes last.
type DeltaChain struct {
	Entries  []DeltaEntry
	BaseType objects.Kind
	BasePack *Packfile
	Base     DeltaEntry
}

// Resolver walks delta chains across every pack in a directory, following
// ref-delta bases into whichever pack actually contains them.
type Resolver struct {
	set Set
}

// NewResolver returns a Resolver that looks up ref-delta bases via set.
func NewResolver(set Set) *Resolver {
	return &Resolver{set: set}
}

// Resolve walks the delta chain starting at (pack, offset), which must
// already have been confirmed to be a delta record.
func (r *Resolver) Resolve(pack *Packfile, offset int64, header *ObjectHeader) (*DeltaChain, error) {
	const op = "Resolve"
	chain := &DeltaChain{}
	seen := make(map[string]bool)

	for depth := 0; ; depth++ {
		if depth >= maxChainDepth {
			return nil, errBadPack(op, "delta chain exceeds max depth %d", maxChainDepth)
		}
		var baseOffset int64
		var basePack = pack

		switch header.Kind {
		case objects.KindOffsetDelta:
			baseOffset = offset - int64(header.OffsetBaseDist)
			if header.OffsetBaseDist == 0 || baseOffset < 0 {
				return nil, errBadPack(op, "offset-delta base distance %d invalid at offset %d", header.OffsetBaseDist, offset)
			}
			key := basePack.Path() + ":" + itoa(baseOffset)
			if seen[key] {
				return nil, errBadPack(op, "delta chain cycle detected at %s", key)
			}
			seen[key] = true
		case objects.KindRefDelta:
			found, foundPack, err := r.set.FindOffset(header.RefBase)
			if err != nil {
				return nil, err
			}
			basePack = foundPack
			baseOffset = found
			key := basePack.Path() + ":" + itoa(baseOffset)
			if seen[key] {
				return nil, errBadPack(op, "delta chain cycle detected at %s", key)
			}
			seen[key] = true
		default:
			chain.BaseType = header.Kind
			chain.BasePack = pack
			chain.Base = DeltaEntry{Pack: pack, Offset: offset, Header: header}
			return chain, nil
		}
		chain.Entries = append(chain.Entries, DeltaEntry{Pack: pack, Offset: offset, Header: header})

		baseHeader, err := basePack.ReadHeader(baseOffset)
		if err != nil {
			return nil, err
		}
		pack = basePack
		offset = baseOffset
		header = baseHeader
	}
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ApplyDelta applies a single deflated-then-inflated delta payload
// against base, producing the target object bytes. It implements the
// standard copy/insert instruction stream described in §4.4.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	const op = "ApplyDelta"
	if len(delta) < 2 {
		return nil, errBadPack(op, "delta payload too short")
	}

	sourceSize, n, err := readDeltaVarint(delta)
	if err != nil {
		return nil, err
	}
	delta = delta[n:]
	targetSize, n, err := readDeltaVarint(delta)
	if err != nil {
		return nil, err
	}
	delta = delta[n:]

	if uint64(len(base)) != sourceSize {
		return nil, errBadPack(op, "base size mismatch: delta expects %d, got %d", sourceSize, len(base))
	}

	result := make([]byte, 0, targetSize)
	i := 0
	for i < len(delta) {
		instr := delta[i]
		i++

		if instr&0x80 != 0 {
			var offset, size uint64
			if i+bits.OnesCount8(instr&0x7f) > len(delta) {
				return nil, errBadPack(op, "copy instruction runs past end of delta")
			}
			if instr&0x01 != 0 {
				offset |= uint64(delta[i])
				i++
			}
			if instr&0x02 != 0 {
				offset |= uint64(delta[i]) << 8
				i++
			}
			if instr&0x04 != 0 {
				offset |= uint64(delta[i]) << 16
				i++
			}
			if instr&0x08 != 0 {
				offset |= uint64(delta[i]) << 24
				i++
			}
			if instr&0x10 != 0 {
				size |= uint64(delta[i])
				i++
			}
			if instr&0x20 != 0 {
				size |= uint64(delta[i]) << 8
				i++
			}
			if instr&0x40 != 0 {
				size |= uint64(delta[i]) << 16
				i++
			}
			if size == 0 {
				size = 0x10000
			}
			if offset+size > uint64(len(base)) {
				return nil, errBadPack(op, "copy out of bounds: offset=%d size=%d base_len=%d", offset, size, len(base))
			}
			result = append(result, base[offset:offset+size]...)
		} else if instr > 0 {
			size := int(instr)
			if i+size > len(delta) {
				return nil, errBadPack(op, "insert instruction runs past end of delta")
			}
			result = append(result, delta[i:i+size]...)
			i += size
		} else {
			return nil, errBadPack(op, "reserved delta instruction 0")
		}
	}

	if uint64(len(result)) != targetSize {
		return nil, errBadPack(op, "delta result size mismatch: expected %d got %d", targetSize, len(result))
	}
	return result, nil
}

// readDeltaVarint reads the little-endian base-128 size varint that
// prefixes a delta payload (used for both the source and target size).
func readDeltaVarint(b []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, c := range b {
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
		if shift > 63 {
			return 0, 0, errOverflow("readDeltaVarint", "delta size varint overflow")
		}
	}
	return 0, 0, errBadPack("readDeltaVarint", "truncated delta size varint")
}
