// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package blameview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/objects"
)

// fakeBlamer attributes every line to a single fixed commit,
// synchronously, to keep tests deterministic without a real sleep.
type fakeBlamer struct {
	commit objects.ID
	nlines int
}

func (b *fakeBlamer) Blame(path string, at objects.ID, cb func(lineno int, commit objects.ID) error) error {
	for i := 1; i <= b.nlines; i++ {
		if err := cb(i, b.commit); err != nil {
			return err
		}
	}
	return nil
}

func waitForComplete(t *testing.T, v *View) {
	t.Helper()
	for i := 0; i < 100; i++ {
		v.mu.Lock()
		done := v.blameComplete
		v.mu.Unlock()
		if done {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("blame never completed")
}

func idN(b byte) objects.ID {
	var id objects.ID
	id[0] = b
	return id
}

func newTestView(t *testing.T) *View {
	t.Helper()
	commit := idN(7)
	blamer := &fakeBlamer{commit: commit, nlines: 3}
	resolve := func(path string, at objects.ID) (objects.ID, error) {
		return idN(1), nil
	}
	extract := func(id objects.ID) ([]byte, error) {
		return []byte("line one\nline two\nline three\n"), nil
	}
	parent := func(c objects.ID) (objects.ID, bool, error) {
		return idN(6), true, nil
	}
	v, err := Open(blamer, resolve, extract, parent, nil, "file.go", commit)
	require.NoError(t, err)
	v.Resize(80, 10)
	waitForComplete(t, v)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestBlameViewAnnotatesAllLines(t *testing.T) {
	v := newTestView(t)
	v.mu.Lock()
	defer v.mu.Unlock()
	require.Equal(t, 3, len(v.lines))
	for _, l := range v.lines {
		require.True(t, l.annotated)
	}
}

func TestBlameViewSelectedCommit(t *testing.T) {
	v := newTestView(t)
	commit, ok := v.selectedCommit()
	require.True(t, ok)
	require.Equal(t, idN(7), commit)
}

func TestBlameViewMoveClamps(t *testing.T) {
	v := newTestView(t)
	v.move(-5)
	require.Equal(t, 0, v.firstRow+v.selected)
	v.move(100)
	require.Equal(t, 2, v.firstRow+v.selected)
}

func TestBlameViewPopStackNoopAtRoot(t *testing.T) {
	v := newTestView(t)
	v.popStack()
	require.Len(t, v.stack, 1)
}

func TestBlameViewCloseIsIdempotent(t *testing.T) {
	v := newTestView(t)
	require.NoError(t, v.Close())
}
