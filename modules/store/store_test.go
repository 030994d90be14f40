// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/pack"
	"github.com/antgroup/gotview/modules/togerr"
)

// emptySet is a pack.Set with no packs, used to exercise the loose
// fallback path of Store.Open without needing real pack files on disk.
type emptySet struct{}

func (emptySet) FindOffset(objects.ID) (int64, *pack.Packfile, error) {
	return 0, nil, togerr.New(togerr.NoSuchObject, "FindOffset", nil)
}
func (emptySet) Search(objects.ID, int) (objects.ID, error) {
	return objects.ZeroID, togerr.New(togerr.NoSuchObject, "Search", nil)
}
func (emptySet) Packs() []*pack.Packfile { return nil }
func (emptySet) Close() error            { return nil }

type fakeLoose struct {
	data map[objects.ID][]byte
	kind map[objects.ID]objects.Kind
}

func (f *fakeLoose) Open(id objects.ID) (objects.Kind, []byte, bool, error) {
	d, ok := f.data[id]
	if !ok {
		return 0, nil, false, nil
	}
	return f.kind[id], d, true, nil
}

func TestStoreOpenFallsBackToLoose(t *testing.T) {
	id := objects.NewID("000000000000000000000000000000000000000a")
	loose := &fakeLoose{
		data: map[objects.ID][]byte{id: []byte("hello blob")},
		kind: map[objects.ID]objects.Kind{id: objects.KindBlob},
	}
	s, err := New(emptySet{}, loose)
	require.NoError(t, err)
	defer s.Close()

	obj, err := s.Open(id)
	require.NoError(t, err)
	require.Equal(t, objects.KindBlob, obj.Kind)
	require.Nil(t, obj.Pack)

	extracted, err := s.Extract(obj)
	require.NoError(t, err)
	require.Equal(t, []byte("hello blob"), extracted.Data)
}

func TestStoreOpenNoSuchObject(t *testing.T) {
	s, err := New(emptySet{}, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Open(objects.NewID("ffffffffffffffffffffffffffffffffffffffff"))
	require.Error(t, err)
	require.True(t, togerr.Is(err, togerr.NoSuchObject))
}
