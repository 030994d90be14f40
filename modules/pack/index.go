// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"io"
	"sort"

	"github.com/antgroup/gotview/modules/objects"
)

const (
	indexMagic   = uint32(0xff744f63)
	indexVersion = uint32(2)

	indexHeaderWidth  = 8 // magic + version
	indexFanoutWidth  = 256 * 4
	indexOffsetsStart = indexHeaderWidth + indexFanoutWidth

	idEntryWidth     = objects.IDSize
	crcEntryWidth    = 4
	offsetEntryWidth = 4
	largeEntryWidth  = 8
	trailerWidth     = objects.IDSize * 2

	// largeOffsetFlag marks an offsets-table slot as an index into the
	// large_offsets table rather than a literal 31-bit value.
	largeOffsetFlag = uint32(1) << 31
)

var indexMagicBytes = [4]byte{0xff, 0x74, 0x4f, 0x63}

// Index is the parsed, immutable form of a pack-<id>.idx file: the §4.1
// fan-out table plus lazy accessors into the sorted id, CRC and offset
// tables. It never eagerly materializes the full id list.
type Index struct {
	r      io.ReaderAt
	fanout [256]uint32

	idsStart     int64
	crcStart     int64
	offsetsStart int64
	largeStart   int64

	count      int
	hasLarge   bool
	largeCount int

	packID   objects.ID
	indexID  objects.ID
}

// Count returns the number of objects this index describes.
func (idx *Index) Count() int { return idx.count }

// PackID returns the id of the pack file this index was built for, as
// recorded in its trailer.
func (idx *Index) PackID() objects.ID { return idx.packID }

// DecodeIndex parses the pack index read from r. packSize is the size in
// bytes of the companion pack file; it determines whether the
// large_offsets table must be present (§4.1 step 4). Only the header,
// fan-out table and trailer are read eagerly — id/crc/offset lookups
// read through r on demand.
func DecodeIndex(r io.ReaderAt, packSize int64) (*Index, error) {
	const op = "DecodeIndex"

	var hdr [indexHeaderWidth]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, errBadIndex(op, "read header: %w", err)
	}
	if !bytes.Equal(hdr[:4], indexMagicBytes[:]) {
		return nil, errBadIndex(op, "bad magic %x", hdr[:4])
	}
	if v := binary.BigEndian.Uint32(hdr[4:8]); v != indexVersion {
		return nil, errBadIndex(op, "unsupported index version %d", v)
	}

	var fanoutRaw [indexFanoutWidth]byte
	if _, err := r.ReadAt(fanoutRaw[:], indexHeaderWidth); err != nil {
		return nil, errBadIndex(op, "read fanout table: %w", err)
	}
	idx := &Index{r: r}
	var prev uint32
	for i := 0; i < 256; i++ {
		v := binary.BigEndian.Uint32(fanoutRaw[i*4:])
		if v < prev {
			return nil, errBadIndex(op, "fanout table not monotonic at byte %d", i)
		}
		idx.fanout[i] = v
		prev = v
	}
	idx.count = int(idx.fanout[255])

	idx.idsStart = indexOffsetsStart
	idx.crcStart = idx.idsStart + int64(idx.count)*idEntryWidth
	idx.offsetsStart = idx.crcStart + int64(idx.count)*crcEntryWidth
	idx.largeStart = idx.offsetsStart + int64(idx.count)*offsetEntryWidth
	trailerStart := idx.largeStart

	if packSize > (1 << 31) {
		idx.hasLarge = true
		idx.largeCount = idx.count
		trailerStart = idx.largeStart + int64(idx.largeCount)*largeEntryWidth
	}

	var trailer [trailerWidth]byte
	if _, err := r.ReadAt(trailer[:], trailerStart); err != nil {
		return nil, errBadIndex(op, "read trailer: %w", err)
	}
	copy(idx.packID[:], trailer[:objects.IDSize])
	copy(idx.indexID[:], trailer[objects.IDSize:])

	if err := idx.verifyChecksum(trailerStart); err != nil {
		return nil, err
	}

	return idx, nil
}

// verifyChecksum recomputes the SHA-1 over every byte preceding the
// index_id half of the trailer (i.e. through pack_id inclusive) and
// compares it with the recorded index_id, per §4.1 step 5.
func (idx *Index) verifyChecksum(trailerStart int64) error {
	const op = "verifyChecksum"
	h := sha1.New()
	buf := make([]byte, 64*1024)
	remaining := trailerStart + objects.IDSize
	var pos int64
	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		read, err := idx.r.ReadAt(buf[:n], pos)
		if read > 0 {
			h.Write(buf[:read])
		}
		if err != nil && !(err == io.EOF && int64(read) == n) {
			return errBadIndex(op, "rehash index: %w", err)
		}
		pos += int64(read)
		remaining -= int64(read)
	}
	var sum objects.ID
	copy(sum[:], h.Sum(nil))
	if sum != idx.indexID {
		return errChecksum(op, "index trailer mismatch: got %s want %s", sum, idx.indexID)
	}
	return nil
}

// idAt reads the id stored at absolute entry position pos.
func (idx *Index) idAt(pos int) (objects.ID, error) {
	var id objects.ID
	if _, err := idx.r.ReadAt(id[:], idx.idsStart+int64(pos)*idEntryWidth); err != nil {
		return id, errBadIndex("idAt", "read id %d: %w", pos, err)
	}
	return id, nil
}

// Find performs the §4.1 fan-out-bounded binary search for id, returning
// its absolute entry position and true on a hit.
func (idx *Index) Find(id objects.ID) (int, bool) {
	b := id[0]
	var lo int
	if b != 0 {
		lo = int(idx.fanout[b-1])
	}
	hi := int(idx.fanout[b])

	pos := sort.Search(hi-lo, func(i int) bool {
		got, err := idx.idAt(lo + i)
		if err != nil {
			return true
		}
		return !got.Less(id)
	}) + lo

	if pos >= hi {
		return 0, false
	}
	got, err := idx.idAt(pos)
	if err != nil || got != id {
		return 0, false
	}
	return pos, true
}

// CRC32At returns the stored CRC-32 of the compressed object record at
// entry position pos.
func (idx *Index) CRC32At(pos int) (uint32, error) {
	var b [crcEntryWidth]byte
	if _, err := idx.r.ReadAt(b[:], idx.crcStart+int64(pos)*crcEntryWidth); err != nil {
		return 0, errBadIndex("CRC32At", "read crc %d: %w", pos, err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// OffsetAt decodes the pack offset stored at entry position pos,
// resolving through the large_offsets table when the high bit of the raw
// 31-bit slot is set (§4.1 offset decode).
func (idx *Index) OffsetAt(pos int) (uint64, error) {
	var b [offsetEntryWidth]byte
	if _, err := idx.r.ReadAt(b[:], idx.offsetsStart+int64(pos)*offsetEntryWidth); err != nil {
		return 0, errBadIndex("OffsetAt", "read offset %d: %w", pos, err)
	}
	raw := binary.BigEndian.Uint32(b[:])
	if raw&largeOffsetFlag == 0 {
		return uint64(raw), nil
	}
	if !idx.hasLarge {
		return 0, errBadIndex("OffsetAt", "large offset bit set but index has no large_offsets table")
	}
	slot := int(raw &^ largeOffsetFlag)
	if slot >= idx.largeCount {
		return 0, errBadIndex("OffsetAt", "large offset slot %d out of range", slot)
	}
	var lb [largeEntryWidth]byte
	if _, err := idx.r.ReadAt(lb[:], idx.largeStart+int64(slot)*largeEntryWidth); err != nil {
		return 0, errBadIndex("OffsetAt", "read large offset %d: %w", slot, err)
	}
	v := binary.BigEndian.Uint64(lb[:])
	if v > (1<<63 - 1) {
		return 0, errOverflow("OffsetAt", "large offset %d exceeds int63 range", v)
	}
	return v, nil
}

// IDAt is the exported form of idAt, used by set.go and by ref-delta base
// resolution when an entry position (rather than an id) is already known.
func (idx *Index) IDAt(pos int) (objects.ID, error) {
	return idx.idAt(pos)
}

// Entries returns, in ascending id order, every id this index contains.
// It is used by the tree/ref-free object-set tooling and by tests; it is
// not on the hot lookup path.
func (idx *Index) Entries() ([]objects.ID, error) {
	ids := make([]objects.ID, idx.count)
	for i := range ids {
		id, err := idx.idAt(i)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
