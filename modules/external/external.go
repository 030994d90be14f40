// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package external collects the narrow interfaces the core is built
// against instead of a concrete terminal, hasher or repository backend
// (§1's "out of scope" list). A real terminal, a real on-disk ref store
// and so on are assembled behind these interfaces by cmd/gotview; tests
// supply fakes.
package external

import (
	"io"

	"github.com/antgroup/gotview/modules/objects"
)

// Screen is the abstract curses/terminal drawing surface a view renders
// into. It accepts styled strings addressed by row/column rather than
// exposing any particular terminal library's primitives.
type Screen interface {
	Size() (cols, rows int)
	MoveTo(row, col int)
	WriteStyled(s string, style Style)
	Refresh()
	Clear()
}

// Style is a named rendering attribute applied to a run of text. The
// palette itself (which ANSI codes a name maps to) is a configuration
// concern, not part of this interface.
type Style string

const (
	StyleNormal  Style = "normal"
	StyleInverse Style = "inverse"
	StyleMinus   Style = "diff-minus"
	StylePlus    Style = "diff-plus"
	StyleChunk   Style = "diff-chunk"
	StyleMeta    Style = "diff-meta"
	StyleAuthor  Style = "diff-author"
	StyleDate    Style = "diff-date"
)

// DisplayWidth measures how many terminal columns a rune occupies,
// abstracting locale/wide-character measurement.
type DisplayWidth func(r rune) int

// Inflate decompresses a zlib-deflated stream, abstracting the concrete
// decompression library in use at the one call site that supplies it.
type Inflate func(r io.Reader) (io.ReadCloser, error)

// Sum computes the object hash of kind-tagged content, abstracting the
// concrete hash implementation.
type Sum func(kind objects.Kind, content []byte) objects.ID

// RefResolver resolves symbolic and named references to object ids,
// abstracting on-disk reference storage.
type RefResolver interface {
	// Resolve returns the commit id a ref currently points at, following
	// a tag to its target commit if necessary.
	Resolve(ref string) (objects.ID, error)
	// Head returns the commit id of the currently checked-out branch.
	Head() (objects.ID, error)
	// List returns every ref name known to the repository, unfiltered.
	List() ([]string, error)
}

// CommitGraph abstracts commit graph traversal order: the order in
// which a log view walks history from some starting point is a policy
// decision made outside this core (first-parent, topological, etc.).
type CommitGraph interface {
	// Next returns the next commit id in traversal order. It returns
	// (ZeroID, err) with err satisfying togerr.IsIterCompleted-style
	// matching when traversal is exhausted.
	Next() (objects.ID, error)
	// Close releases any resources the traversal holds open.
	Close() error
}

// DiffProducer abstracts diff computation between two (possibly null)
// object ids. forceText overrides a binary-content heuristic, asking
// for a textual diff even when the blobs look binary.
type DiffProducer interface {
	Diff(a, b objects.ID, contextLines int, ignoreWhitespace, forceText bool) (text string, lineOffsets []int64, err error)
}

// Blamer abstracts the per-commit blame algorithm. It invokes cb once
// per (line, commit) pair it attributes, in an implementation-defined
// order; lineno == -1 means "no change introduced at this commit" and
// must be skipped by the caller.
type Blamer interface {
	Blame(path string, at objects.ID, cb func(lineno int, commit objects.ID) error) error
}
