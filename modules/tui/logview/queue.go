// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package logview implements the log view and its loader thread (§4.6):
// a scrollable, searchable list of commits fed incrementally by a
// background goroutine walking the commit graph.
package logview

import (
	"github.com/emirpasic/gods/lists/arraylist"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
)

// CommitEntry is one published row of the log view's commit queue.
// Idx is strictly increasing in append order and, once published, an
// entry is never mutated (§5's ordering guarantee).
type CommitEntry struct {
	Idx    int
	ID     objects.ID
	Commit *gitobj.Commit
}

// commitQueue is the append-only sequence of CommitEntry values shared
// between the UI thread and the loader thread. All methods assume the
// caller already holds the Manager's global lock; the queue itself adds
// no additional locking, matching §5's "the global mutex guards commit
// queue mutation and pointers into it."
type commitQueue struct {
	list *arraylist.List
}

func newCommitQueue() *commitQueue {
	return &commitQueue{list: arraylist.New()}
}

// append publishes a new entry with the next sequential index.
func (q *commitQueue) append(id objects.ID, c *gitobj.Commit) CommitEntry {
	e := CommitEntry{Idx: q.list.Size(), ID: id, Commit: c}
	q.list.Add(e)
	return e
}

func (q *commitQueue) len() int {
	return q.list.Size()
}

func (q *commitQueue) at(i int) (CommitEntry, bool) {
	v, ok := q.list.Get(i)
	if !ok {
		return CommitEntry{}, false
	}
	return v.(CommitEntry), true
}

func (q *commitQueue) reset() {
	q.list.Clear()
}
