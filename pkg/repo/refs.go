// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

const (
	packedRefsFile = "packed-refs"
	refsDir        = "refs"
	headFile       = "HEAD"
	maxRefDepth    = 16
)

// RefResolver implements external.RefResolver by reading loose and
// packed references directly off disk, grounded on the teacher's
// fsBackend read path (refs/filesystem.go): walk the refs/ directory
// tree for loose refs, parse packed-refs for the rest, and HEAD either
// names a loose/packed ref symbolically or holds a detached hash. Only
// the read path is ported — gotview never writes refs.
type RefResolver struct {
	repo     *Repo
	repoPath string
}

// NewRefResolver constructs a RefResolver rooted at repoPath (the
// directory containing HEAD, refs/ and packed-refs).
func NewRefResolver(repo *Repo, repoPath string) *RefResolver {
	return &RefResolver{repo: repo, repoPath: repoPath}
}

// List implements external.RefResolver: every ref name known to the
// repository, loose and packed, unfiltered and sorted by name.
func (b *RefResolver) List() ([]string, error) {
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var walk func(prefix string) error
	walk = func(prefix string) error {
		entries, err := os.ReadDir(filepath.Join(b.repoPath, prefix))
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return togerr.New(togerr.IO, "RefResolver.List", err)
		}
		for _, e := range entries {
			child := prefix + "/" + e.Name()
			if e.IsDir() {
				if err := walk(child); err != nil {
					return err
				}
				continue
			}
			add(child)
		}
		return nil
	}
	if err := walk(refsDir); err != nil {
		return nil, err
	}

	packed, err := b.readPackedRefs()
	if err != nil {
		return nil, err
	}
	for name := range packed {
		add(name)
	}

	sort.Strings(names)
	return names, nil
}

// readPackedRefs parses the packed-refs file, skipping comment lines
// ('#') and tag-peel lines ('^'), per the teacher's processLine.
func (b *RefResolver) readPackedRefs() (map[string]objects.ID, error) {
	out := map[string]objects.ID{}
	f, err := os.Open(filepath.Join(b.repoPath, packedRefsFile))
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, togerr.New(togerr.IO, "RefResolver.readPackedRefs", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		target, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		out[name] = objects.NewID(target)
	}
	if err := s.Err(); err != nil {
		return nil, togerr.New(togerr.IO, "RefResolver.readPackedRefs", err)
	}
	return out, nil
}

// readRaw returns ref's literal file content (loose file if present,
// else its packed-refs entry rendered as plain hex), or ("", false) if
// ref names nothing.
func (b *RefResolver) readRaw(ref string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(b.repoPath, ref))
	if err == nil {
		return strings.TrimSpace(string(data)), true, nil
	}
	if !os.IsNotExist(err) {
		return "", false, togerr.New(togerr.IO, "RefResolver.readRaw", err)
	}

	packed, perr := b.readPackedRefs()
	if perr != nil {
		return "", false, perr
	}
	if id, ok := packed[ref]; ok {
		return id.String(), true, nil
	}
	return "", false, nil
}

// resolveToObject follows ref through symbolic indirection ("ref: ...")
// to the object id it ultimately names, without yet dereferencing tags.
func (b *RefResolver) resolveToObject(ref string) (objects.ID, error) {
	for depth := 0; depth < maxRefDepth; depth++ {
		raw, ok, err := b.readRaw(ref)
		if err != nil {
			return objects.ZeroID, err
		}
		if !ok {
			return objects.ZeroID, togerr.New(togerr.NoSuchObject, "RefResolver.Resolve", errNoSuchRef(ref))
		}
		if target, isSymbolic := strings.CutPrefix(raw, "ref: "); isSymbolic {
			ref = strings.TrimSpace(target)
			continue
		}
		return objects.NewID(raw), nil
	}
	return objects.ZeroID, togerr.New(togerr.NoSuchObject, "RefResolver.Resolve", errRefCycle(ref))
}

// Resolve implements external.RefResolver: follow ref to its target
// object, then dereference annotated tags until a commit is reached.
func (b *RefResolver) Resolve(ref string) (objects.ID, error) {
	id, err := b.resolveToObject(ref)
	if err != nil {
		return objects.ZeroID, err
	}
	return b.ResolveID(id)
}

// ResolveID dereferences id itself, the same tag-peeling Resolve applies
// to a ref's target — the entry point for a caller that already holds a
// concrete object id (e.g. a `-c <commit>` CLI argument parsed directly
// as hex) rather than a ref name.
func (b *RefResolver) ResolveID(id objects.ID) (objects.ID, error) {
	for depth := 0; depth < maxRefDepth; depth++ {
		kind, kerr := b.repo.Kind(id)
		if kerr != nil {
			return objects.ZeroID, kerr
		}
		if kind != objects.KindTag {
			if kind != objects.KindCommit {
				return objects.ZeroID, togerr.New(togerr.NotImplemented, "RefResolver.Resolve", errNonCommitTarget(id.String(), kind))
			}
			return id, nil
		}
		tag, terr := b.repo.ReadTag(id)
		if terr != nil {
			return objects.ZeroID, terr
		}
		id = tag.Object
	}
	return objects.ZeroID, togerr.New(togerr.NotImplemented, "RefResolver.Resolve", errRefCycle(id.String()))
}

// Head implements external.RefResolver by resolving the HEAD file.
func (b *RefResolver) Head() (objects.ID, error) {
	return b.Resolve(headFile)
}
