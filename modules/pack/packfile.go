// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"crypto/sha1"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/antgroup/gotview/modules/objects"
)

const (
	packMagic   = uint32(0x5041434b) // "PACK"
	packVersion = uint32(2)

	// packHeaderSize is signature + version + nobjects, each a big-endian u32.
	packHeaderSize = 12
)

// ObjectHeader is the result of parsing a pack object record header at a
// given offset: its kind, its decoded (uncompressed) size, the number of
// header bytes consumed, and the absolute offset of the first deflated
// payload byte (§4.2).
type ObjectHeader struct {
	Kind           objects.Kind
	Size           uint64
	HeaderLen      int
	PayloadOffset  int64
	OffsetBaseDist uint64    // valid when Kind == KindOffsetDelta
	RefBase        objects.ID // valid when Kind == KindRefDelta
}

// Packfile is an open pack-<id>.pack file together with its parsed index.
// It answers the two primitives §4.2 and §4.3 build on: parsing a record
// header at a byte offset, and inflating a plain object's payload.
type Packfile struct {
	path  string
	f     *os.File
	index *Index
	size  int64
}

// OpenPackfile opens the pack file at packPath and its companion
// pack-<id>.idx, verifying the index trailer against the pack's actual
// size as required by §4.1 step 4.
func OpenPackfile(packPath, idxPath string) (*Packfile, error) {
	const op = "OpenPackfile"
	f, err := os.Open(packPath)
	if err != nil {
		return nil, errBadPack(op, "open pack: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errBadPack(op, "stat pack: %w", err)
	}
	idxFile, err := os.Open(idxPath)
	if err != nil {
		_ = f.Close()
		return nil, errBadIndex(op, "open index: %w", err)
	}
	index, err := DecodeIndex(idxFile, st.Size())
	if err != nil {
		_ = f.Close()
		_ = idxFile.Close()
		return nil, err
	}
	pf := &Packfile{path: packPath, f: f, index: index, size: st.Size()}
	if err := pf.verifyHeader(); err != nil {
		_ = f.Close()
		_ = idxFile.Close()
		return nil, err
	}
	if err := pf.verifyTrailer(); err != nil {
		_ = f.Close()
		_ = idxFile.Close()
		return nil, err
	}
	return pf, nil
}

// verifyHeader reads and validates the pack file header (§3/§6:
// signature=0x5041434b, version=2, nobjects) and cross-checks nobjects
// against the index's fanout[255] count, the "nobjects must equal
// fanout[255]" invariant §3 names.
func (p *Packfile) verifyHeader() error {
	const op = "verifyHeader"
	var hdr [packHeaderSize]byte
	if _, err := p.f.ReadAt(hdr[:], 0); err != nil {
		return errBadPack(op, "read pack header: %w", err)
	}
	if sig := binary.BigEndian.Uint32(hdr[0:4]); sig != packMagic {
		return errBadPack(op, "bad pack signature %x", sig)
	}
	if v := binary.BigEndian.Uint32(hdr[4:8]); v != packVersion {
		return errBadPack(op, "unsupported pack version %d", v)
	}
	if nobjects := binary.BigEndian.Uint32(hdr[8:12]); int(nobjects) != p.index.Count() {
		return errBadPack(op, "pack header nobjects %d does not match index count %d", nobjects, p.index.Count())
	}
	return nil
}

// verifyTrailer recomputes the SHA-1 over every byte preceding the final
// 20-byte pack checksum and compares it against the recorded value, per
// §3's "20-byte trailing SHA-1".
func (p *Packfile) verifyTrailer() error {
	const op = "verifyTrailer"
	if p.size < packHeaderSize+int64(objects.IDSize) {
		return errBadPack(op, "pack file too small for header and trailer")
	}
	trailerStart := p.size - int64(objects.IDSize)

	h := sha1.New()
	buf := make([]byte, 64*1024)
	remaining := trailerStart
	var pos int64
	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		read, err := p.f.ReadAt(buf[:n], pos)
		if read > 0 {
			h.Write(buf[:read])
		}
		if err != nil && !(err == io.EOF && int64(read) == n) {
			return errBadPack(op, "rehash pack: %w", err)
		}
		pos += int64(read)
		remaining -= int64(read)
	}

	var trailer [objects.IDSize]byte
	if _, err := p.f.ReadAt(trailer[:], trailerStart); err != nil {
		return errBadPack(op, "read pack trailer: %w", err)
	}
	var sum, want objects.ID
	copy(sum[:], h.Sum(nil))
	copy(want[:], trailer[:])
	if sum != want {
		return errBadPack(op, "pack trailer mismatch: got %s want %s", sum, want)
	}
	return nil
}

// Close releases the underlying pack and index file descriptors.
func (p *Packfile) Close() error {
	err := p.f.Close()
	if c, ok := p.index.r.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Index returns the parsed pack index backing this pack file.
func (p *Packfile) Index() *Index { return p.index }

// Path returns the pack file's path on disk.
func (p *Packfile) Path() string { return p.path }

// Size returns the pack file's size in bytes.
func (p *Packfile) Size() int64 { return p.size }

// ReadHeader parses the object record header at offset, per §4.2 and
// §4.3. For delta kinds it additionally decodes the base reference that
// immediately follows the size header.
func (p *Packfile) ReadHeader(offset int64) (*ObjectHeader, error) {
	const op = "ReadHeader"
	// 48 bytes covers the worst-case object header (kind+size, up to 9
	// bytes per §4.2) plus the longest base reference that can follow it
	// (a 20-byte ref-delta id, or an offset-delta varint of similar
	// length).
	buf := make([]byte, 48)
	n, err := p.f.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return nil, errBadPack(op, "read object header at %d: %w", offset, err)
	}
	buf = buf[:n]

	kind, size, headerLen, err := decodeObjectHeader(buf)
	if err != nil {
		return nil, err
	}

	h := &ObjectHeader{Kind: kind, Size: size, HeaderLen: headerLen}
	pos := int64(headerLen)

	switch kind {
	case objects.KindOffsetDelta:
		dist, dn, err := decodeOffsetDeltaBase(buf[pos:])
		if err != nil {
			return nil, err
		}
		h.OffsetBaseDist = dist
		pos += int64(dn)
	case objects.KindRefDelta:
		if int(pos)+objects.IDSize > len(buf) {
			return nil, errBadPack(op, "truncated ref-delta base at %d", offset+pos)
		}
		var id objects.ID
		copy(id[:], buf[pos:pos+objects.IDSize])
		h.RefBase = id
		pos += objects.IDSize
	}

	h.PayloadOffset = offset + pos
	return h, nil
}

// InflatePayload inflates exactly size uncompressed bytes from the
// deflated stream starting at payloadOffset (§4.2 "extraction of a plain
// object").
func (p *Packfile) InflatePayload(payloadOffset int64, size uint64) ([]byte, error) {
	const op = "InflatePayload"
	src := newBoundedReader(p.f, payloadOffset, p.size-payloadOffset)
	zr, err := zlib.NewReader(src)
	if err != nil {
		return nil, errBadPack(op, "open zlib stream at %d: %w", payloadOffset, err)
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, errBadPack(op, "inflate %d bytes at %d: %w", size, payloadOffset, err)
	}
	return out, nil
}
