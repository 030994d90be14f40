// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

// commitGraph walks history ordered by committer timestamp, newest
// first — the closest order to the original VCS's default log, grounded
// on the teacher's commitIteratorByCTime: a max-heap seeded with the
// start commit, popping the newest unseen commit and pushing its unseen
// parents back in. Missing parents (shallow clones) are skipped rather
// than failing the walk.
type commitGraph struct {
	repo   *Repo
	heap   *binaryheap.Heap
	seen   map[objects.ID]bool
	filter string // non-empty restricts Next to commits that touch this path
}

type heapEntry struct {
	id objects.ID
	c  *gitobj.Commit
}

func cmpByCommitterTimeDesc(a, b any) int {
	ea, eb := a.(heapEntry), b.(heapEntry)
	if ea.c.Committer.When.Before(eb.c.Committer.When) {
		return 1
	}
	if ea.c.Committer.When.After(eb.c.Committer.When) {
		return -1
	}
	return 0
}

// NewCommitGraph constructs a CommitGraph rooted at start, implementing
// the logview.GraphFactory signature. pathFilter, when non-empty,
// restricts traversal to commits whose tree differs from every parent's
// tree at that path (§4.6's path-filtered log).
func (r *Repo) NewCommitGraph(start objects.ID, pathFilter string) (*commitGraph, error) {
	c, err := r.ReadCommit(start)
	if err != nil {
		return nil, err
	}
	heap := binaryheap.NewWith(cmpByCommitterTimeDesc)
	heap.Push(heapEntry{id: start, c: c})
	return &commitGraph{
		repo:   r,
		heap:   heap,
		seen:   map[objects.ID]bool{},
		filter: pathFilter,
	}, nil
}

// Next implements external.CommitGraph.
func (g *commitGraph) Next() (objects.ID, error) {
	for {
		v, ok := g.heap.Pop()
		if !ok {
			return objects.ZeroID, togerr.New(togerr.IterCompleted, "commitGraph.Next", nil)
		}
		e := v.(heapEntry)
		if g.seen[e.id] {
			continue
		}
		g.seen[e.id] = true

		for _, parentID := range e.c.Parents {
			if g.seen[parentID] {
				continue
			}
			parent, err := g.repo.ReadCommit(parentID)
			if togerr.Is(err, togerr.NoSuchObject) {
				continue
			}
			if err != nil {
				return objects.ZeroID, err
			}
			g.heap.Push(heapEntry{id: parentID, c: parent})
		}

		if g.filter == "" {
			return e.id, nil
		}
		touches, err := g.repo.commitTouchesPath(e.c, g.filter)
		if err != nil {
			return objects.ZeroID, err
		}
		if touches {
			return e.id, nil
		}
	}
}

// Close implements external.CommitGraph; the heap holds no external
// resources.
func (g *commitGraph) Close() error { return nil }

// commitTouchesPath reports whether c's tree content at path differs
// from every parent's (a root commit always touches every path it
// contains), the condition a path-scoped log walk filters on.
func (r *Repo) commitTouchesPath(c *gitobj.Commit, path string) (bool, error) {
	here, err := r.resolvePathInTree(c.Tree, path)
	notFound := togerr.Is(err, togerr.NoSuchObject)
	if err != nil && !notFound {
		return false, err
	}
	if len(c.Parents) == 0 {
		return !notFound, nil
	}
	for _, parentID := range c.Parents {
		parent, err := r.ReadCommit(parentID)
		if err != nil {
			return false, err
		}
		there, perr := r.resolvePathInTree(parent.Tree, path)
		parentNotFound := togerr.Is(perr, togerr.NoSuchObject)
		if perr != nil && !parentNotFound {
			return false, perr
		}
		if notFound == parentNotFound && here == there {
			return false, nil
		}
	}
	return true, nil
}
