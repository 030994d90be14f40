// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
	"github.com/antgroup/gotview/modules/tui"
)

// fakeGraph yields a fixed, pre-built sequence of commit ids.
type fakeGraph struct {
	ids []objects.ID
	pos int
}

func (g *fakeGraph) Next() (objects.ID, error) {
	if g.pos >= len(g.ids) {
		return objects.ZeroID, togerr.New(togerr.IterCompleted, "Next", nil)
	}
	id := g.ids[g.pos]
	g.pos++
	return id, nil
}
func (g *fakeGraph) Close() error { return nil }

func idN(b byte) objects.ID {
	var id objects.ID
	id[0] = b
	return id
}

func commitFor(id objects.ID, when time.Time) *gitobj.Commit {
	return &gitobj.Commit{
		ID:        id,
		Author:    gitobj.Signature{Name: "author", Email: "a@example.com", When: when},
		Committer: gitobj.Signature{Name: "author", Email: "a@example.com", When: when},
		Message:   "commit " + id.String()[:2],
	}
}

func newTestView(t *testing.T, n int) *View {
	t.Helper()
	ids := make([]objects.ID, n)
	for i := 0; i < n; i++ {
		ids[i] = idN(byte(i + 1))
	}
	factory := func(string, bool) (external.CommitGraph, error) {
		return &fakeGraph{ids: ids}, nil
	}
	body := func(id objects.ID) (*gitobj.Commit, error) {
		return commitFor(id, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), nil
	}
	v, err := New(factory, body, nil)
	require.NoError(t, err)
	v.Resize(200, 12)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestLogViewLoadsAndMovesSelection(t *testing.T) {
	v := newTestView(t, 5)
	v.Input(tui.Key{Name: "Down"})
	v.Input(tui.Key{Name: "Down"})
	entry, ok := v.selectedEntry()
	require.True(t, ok)
	require.Equal(t, 2, entry.Idx)
}

func TestLogViewGoEndLoadsEverything(t *testing.T) {
	v := newTestView(t, 10)
	v.Input(tui.Key{Name: "End"})
	v.mu.Lock()
	n := v.queue.len()
	v.mu.Unlock()
	require.Equal(t, 10, n)
}

func TestLogViewHomeResetsToTop(t *testing.T) {
	v := newTestView(t, 10)
	v.Input(tui.Key{Name: "End"})
	v.Input(tui.Key{Name: "Home"})
	entry, ok := v.selectedEntry()
	require.True(t, ok)
	require.Equal(t, 0, entry.Idx)
}

func TestLogViewSearchFindsMatchingMessage(t *testing.T) {
	v := newTestView(t, 10)
	v.Input(tui.Key{Name: "End"})
	require.NoError(t, v.SearchStart("commit 03"))
	found := v.SearchNext(true)
	require.True(t, found)
	entry, ok := v.selectedEntry()
	require.True(t, ok)
	require.Contains(t, entry.Commit.Message, "03")
}

func TestLogViewCloseStopsLoader(t *testing.T) {
	v := newTestView(t, 3)
	require.NoError(t, v.Close())
	require.NoError(t, v.Close())
}
