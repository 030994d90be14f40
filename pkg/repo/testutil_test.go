// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"time"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/pack"
	"github.com/antgroup/gotview/modules/store"
	"github.com/antgroup/gotview/modules/togerr"
)

// emptySet is a pack.Set with no packs, the same shape store's own
// tests use to exercise the loose-backend path without real pack files.
type emptySet struct{}

func (emptySet) FindOffset(objects.ID) (int64, *pack.Packfile, error) {
	return 0, nil, togerr.New(togerr.NoSuchObject, "FindOffset", nil)
}
func (emptySet) Search(objects.ID, int) (objects.ID, error) {
	return objects.ZeroID, togerr.New(togerr.NoSuchObject, "Search", nil)
}
func (emptySet) Packs() []*pack.Packfile { return nil }
func (emptySet) Close() error            { return nil }

// fakeLoose is an in-memory LooseBackend keyed directly by id, letting
// tests assign arbitrary but internally-consistent object ids instead
// of computing real SHA-1 sums.
type fakeLoose struct {
	data map[objects.ID][]byte
	kind map[objects.ID]objects.Kind
}

func newFakeLoose() *fakeLoose {
	return &fakeLoose{data: map[objects.ID][]byte{}, kind: map[objects.ID]objects.Kind{}}
}

func (f *fakeLoose) Open(id objects.ID) (objects.Kind, []byte, bool, error) {
	d, ok := f.data[id]
	if !ok {
		return 0, nil, false, nil
	}
	return f.kind[id], d, true, nil
}

func (f *fakeLoose) put(id objects.ID, kind objects.Kind, data []byte) {
	f.data[id] = data
	f.kind[id] = kind
}

// testRepo builds a Repo backed by an empty pack set and an in-memory
// loose backend, along with the backend so tests can populate it.
func testRepo() (*Repo, *fakeLoose) {
	loose := newFakeLoose()
	s, err := store.New(emptySet{}, loose)
	if err != nil {
		panic(err)
	}
	return New(s), loose
}

// idN builds a deterministic, distinct test object id from a single
// byte, stored in the id's last byte (the view packages' tests store it
// in the first), which leaves byte 0 free for commitWithFile to tag the
// blob and tree ids it derives from a commit id.
func idN(b byte) objects.ID {
	var id objects.ID
	id[len(id)-1] = b
	return id
}

// putBlob stores content under id as a blob object.
func putBlob(loose *fakeLoose, id objects.ID, content string) {
	loose.put(id, objects.KindBlob, []byte(content))
}

// putTree stores entries under id as a tree object.
func putTree(loose *fakeLoose, id objects.ID, entries []gitobj.TreeEntry) {
	t := &gitobj.Tree{ID: id, Entries: entries}
	loose.put(id, objects.KindTree, t.Encode())
}

// putCommit stores a commit object with the given tree, parents and
// message, at a fixed committer/author time so date rendering is
// deterministic.
func putCommit(loose *fakeLoose, id, tree objects.ID, parents []objects.ID, message string) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sig := gitobj.Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: when}
	c := &gitobj.Commit{
		ID:        id,
		Tree:      tree,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   message,
	}
	loose.put(id, objects.KindCommit, c.Encode())
}
