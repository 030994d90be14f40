// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/antgroup/gotview/modules/objects"
)

// Set is a directory of packs searched as one logical object space, per
// §4.3's "look up via §4.1 search across all index files in the pack
// directory" and §4.4's open(id).
type Set interface {
	// FindOffset locates id in whichever pack contains it and returns
	// that pack plus the id's absolute byte offset.
	FindOffset(id objects.ID) (int64, *Packfile, error)
	// Search returns the first id found whose leading prefixLen hex
	// digits match prefix. It does not check whether the prefix is
	// ambiguous: when several ids match, which one is returned depends
	// on pack and index order.
	Search(prefix objects.ID, prefixLen int) (objects.ID, error)
	// Packs returns every open pack in the set.
	Packs() []*Packfile
	Close() error
}

type set struct {
	byFirstByte [256][]*Packfile
	packs       []*Packfile
}

var _ Set = (*set)(nil)

func (s *set) Packs() []*Packfile { return s.packs }

func (s *set) Close() error {
	var first error
	for _, p := range s.packs {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *set) FindOffset(id objects.ID) (int64, *Packfile, error) {
	for _, p := range s.byFirstByte[id[0]] {
		pos, ok := p.index.Find(id)
		if !ok {
			continue
		}
		offset, err := p.index.OffsetAt(pos)
		if err != nil {
			return 0, nil, err
		}
		return int64(offset), p, nil
	}
	return 0, nil, errNoSuchObject("FindOffset")
}

func (s *set) Search(prefix objects.ID, prefixLen int) (objects.ID, error) {
	nibbles := prefixLen
	for _, p := range s.byFirstByte[prefix[0]] {
		ids, err := p.index.Entries()
		if err != nil {
			return objects.ZeroID, err
		}
		for _, id := range ids {
			if prefixEqual(id, prefix, nibbles) {
				return id, nil
			}
		}
	}
	return objects.ZeroID, errNoSuchObject("Search")
}

// prefixEqual reports whether id and prefix agree on the first n hex
// nibbles (n/2 whole bytes, plus the high nibble of one more if n is odd).
func prefixEqual(id, prefix objects.ID, n int) bool {
	fullBytes := n / 2
	for i := 0; i < fullBytes; i++ {
		if id[i] != prefix[i] {
			return false
		}
	}
	if n%2 == 1 {
		if id[fullBytes]&0xf0 != prefix[fullBytes]&0xf0 {
			return false
		}
	}
	return true
}

var packNameRe = regexp.MustCompile(`^(.*)\.pack$`)

// NewSet opens every pack-<id>.pack/.idx pair found directly under dir,
// skipping (rather than failing on) a pack whose index is missing or
// unreadable, matching the defensive behavior of real pack directories
// that may be mid-repack.
func NewSet(dir string) (Set, error) {
	paths, err := filepath.Glob(filepath.Join(escapeGlobPattern(dir), "*.pack"))
	if err != nil {
		return nil, errBadPack("NewSet", "glob pack directory: %w", err)
	}
	sort.Strings(paths)

	s := &set{}
	for _, path := range paths {
		m := packNameRe.FindStringSubmatch(filepath.Base(path))
		if len(m) != 2 {
			continue
		}
		idxPath := filepath.Join(dir, fmt.Sprintf("%s.idx", m[1]))
		if _, err := os.Stat(idxPath); err != nil {
			continue
		}
		p, err := OpenPackfile(path, idxPath)
		if err != nil {
			continue
		}
		s.packs = append(s.packs, p)
	}

	for b := 0; b < 256; b++ {
		n := byte(b)
		for _, p := range s.packs {
			var count uint32
			if n == 0 {
				count = p.index.fanout[0]
			} else {
				count = p.index.fanout[n] - p.index.fanout[n-1]
			}
			if count > 0 {
				s.byFirstByte[n] = append(s.byFirstByte[n], p)
			}
		}
		bucket := s.byFirstByte[n]
		sort.Slice(bucket, func(i, j int) bool {
			return bucketCount(bucket[i], n) > bucketCount(bucket[j], n)
		})
	}

	return s, nil
}

func bucketCount(p *Packfile, n byte) uint32 {
	if n == 0 {
		return p.index.fanout[0]
	}
	return p.index.fanout[n] - p.index.fanout[n-1]
}

// escapeGlobPattern neutralizes glob metacharacters in a literal
// directory component before it is joined into a Glob pattern.
func escapeGlobPattern(s string) string {
	r := strings.NewReplacer("*", "[*]", "?", "[?]", "[", "[[]")
	return r.Replace(s)
}
