// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package objects defines the identifiers and kinds shared by the pack
// reader, the object store facade and the history browser views.
package objects

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// IDSize is the width of an ID in raw bytes: a SHA-1 digest.
const IDSize = 20

// HexSize is the width of an ID rendered as lowercase hexadecimal.
const HexSize = IDSize * 2

// ID is a 20-byte object identifier. It orders lexically on its raw bytes
// and its first byte indexes the pack index fan-out table.
type ID [IDSize]byte

// ZeroID is the all-zero identifier, used to mean "no object" (e.g. the
// /dev/null side of a diff).
var ZeroID ID

// NewID decodes a 40-character hex string into an ID. Malformed input
// yields the zero ID; use NewIDStrict when the input must be validated.
func NewID(hexStr string) ID {
	var id ID
	b, _ := hex.DecodeString(hexStr)
	copy(id[:], b)
	return id
}

// NewIDStrict decodes a 40-character hex string, rejecting anything that
// is not exactly HexSize valid hex characters.
func NewIDStrict(hexStr string) (ID, error) {
	if len(hexStr) != HexSize {
		return ZeroID, fmt.Errorf("tog: %q is not a valid object id", hexStr)
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return ZeroID, fmt.Errorf("tog: %q is not a valid object id: %w", hexStr, err)
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// IsZero reports whether id is the all-zero identifier.
func (id ID) IsZero() bool {
	return id == ZeroID
}

// String renders id as 40 lowercase hex characters.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Less reports whether id sorts strictly before other, lexically on raw
// bytes.
func (id ID) Less(other ID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// Compare returns -1, 0 or 1 as id is lexically less than, equal to, or
// greater than other.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := NewIDStrict(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IDSlice attaches sort.Interface to []ID for ascending lexical order.
type IDSlice []ID

func (s IDSlice) Len() int           { return len(s) }
func (s IDSlice) Less(i, j int) bool { return s[i].Less(s[j]) }
func (s IDSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Sort sorts ids in ascending lexical order.
func Sort(ids []ID) { sort.Sort(IDSlice(ids)) }

// IsSortedStrict reports whether ids is strictly ascending, with no
// duplicates or inversions — the invariant the pack index's sorted_ids
// table must satisfy.
func IsSortedStrict(ids []ID) bool {
	for i := 1; i < len(ids); i++ {
		if !ids[i-1].Less(ids[i]) {
			return false
		}
	}
	return true
}
