// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package repo wires the Object Store Facade (modules/store) and the
// plain-text/binary decoders (modules/gitobj) into concrete
// implementations of the modules/external interfaces the TUI views are
// built against: RefResolver, CommitGraph, DiffProducer and Blamer.
package repo

import (
	"path"
	"strings"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/store"
	"github.com/antgroup/gotview/modules/togerr"
)

// Repo is the shared read-only access layer every concrete external.*
// implementation in this package is built on: open+extract an object
// from the store, then hand its bytes to modules/gitobj for decoding.
type Repo struct {
	store *store.Store
}

// New wraps an already-constructed store.Store.
func New(s *store.Store) *Repo {
	return &Repo{store: s}
}

// object opens and extracts id, returning its resolved kind and decoded
// body bytes.
func (r *Repo) object(id objects.ID) (objects.Kind, []byte, error) {
	obj, err := r.store.Open(id)
	if err != nil {
		return objects.KindInvalid, nil, err
	}
	extracted, err := r.store.Extract(obj)
	if err != nil {
		return objects.KindInvalid, nil, err
	}
	return extracted.Kind, extracted.Data, nil
}

// ReadCommit opens id and decodes it as a commit.
func (r *Repo) ReadCommit(id objects.ID) (*gitobj.Commit, error) {
	kind, data, err := r.object(id)
	if err != nil {
		return nil, err
	}
	return gitobj.AsCommit(id, kind, data)
}

// ReadTree opens id and decodes it as a tree.
func (r *Repo) ReadTree(id objects.ID) (*gitobj.Tree, error) {
	kind, data, err := r.object(id)
	if err != nil {
		return nil, err
	}
	if kind != objects.KindTree {
		return nil, togerr.New(togerr.NotImplemented, "ReadTree", errNotATree(id, kind))
	}
	return gitobj.DecodeTree(id, data)
}

// ReadBlob opens id and returns its raw content.
func (r *Repo) ReadBlob(id objects.ID) ([]byte, error) {
	kind, data, err := r.object(id)
	if err != nil {
		return nil, err
	}
	if kind != objects.KindBlob {
		return nil, togerr.New(togerr.NotImplemented, "ReadBlob", errNotABlob(id, kind))
	}
	blob, err := gitobj.DecodeBlob(id, data)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

// ReadTag opens id and decodes it as an annotated tag.
func (r *Repo) ReadTag(id objects.ID) (*gitobj.Tag, error) {
	kind, data, err := r.object(id)
	if err != nil {
		return nil, err
	}
	if kind != objects.KindTag {
		return nil, togerr.New(togerr.NotImplemented, "ReadTag", errNotATag(id, kind))
	}
	return gitobj.DecodeTag(id, data)
}

// Kind reports the resolved kind of id without decoding its body.
func (r *Repo) Kind(id objects.ID) (objects.Kind, error) {
	kind, _, err := r.object(id)
	return kind, err
}

// CommitParent returns commit's first parent, implementing the
// blameview.CommitParent callback shape (§4.8 step: "walk to first
// parent").
func (r *Repo) CommitParent(commit objects.ID) (objects.ID, bool, error) {
	c, err := r.ReadCommit(commit)
	if err != nil {
		return objects.ZeroID, false, err
	}
	if len(c.Parents) == 0 {
		return objects.ZeroID, false, nil
	}
	return c.Parents[0], true, nil
}

// ResolveBlob walks at's tree along the '/'-separated path, returning
// the blob id it names (§4.8 step 1, and the tree view's path-addressed
// Blame entry point).
func (r *Repo) ResolveBlob(filePath string, at objects.ID) (objects.ID, error) {
	commit, err := r.ReadCommit(at)
	if err != nil {
		return objects.ZeroID, err
	}
	return r.resolvePathInTree(commit.Tree, filePath)
}

// ResolveTree resolves at's whole tree, the treeview entry point at
// §4.9's "Open directly onto a commit's root tree."
func (r *Repo) ResolveTree(at objects.ID) (*gitobj.Tree, error) {
	commit, err := r.ReadCommit(at)
	if err != nil {
		return nil, err
	}
	return r.ReadTree(commit.Tree)
}

func (r *Repo) resolvePathInTree(rootTree objects.ID, filePath string) (objects.ID, error) {
	filePath = strings.Trim(path.Clean("/"+filePath), "/")
	if filePath == "" || filePath == "." {
		return rootTree, nil
	}
	cur := rootTree
	parts := strings.Split(filePath, "/")
	for i, part := range parts {
		tree, err := r.ReadTree(cur)
		if err != nil {
			return objects.ZeroID, err
		}
		entry, ok := tree.ByName(part)
		if !ok {
			return objects.ZeroID, togerr.New(togerr.NoSuchObject, "ResolveBlob", errNoSuchPath(filePath))
		}
		if i == len(parts)-1 {
			return entry.ID, nil
		}
		if !entry.Mode.IsDir() {
			return objects.ZeroID, togerr.New(togerr.NoSuchObject, "ResolveBlob", errNoSuchPath(filePath))
		}
		cur = entry.ID
	}
	return objects.ZeroID, togerr.New(togerr.NoSuchObject, "ResolveBlob", errNoSuchPath(filePath))
}
