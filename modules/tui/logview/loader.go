// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logview

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

// CommitBody resolves a commit id to its decoded body, abstracting the
// object store facade so the loader package does not depend on it
// directly.
type CommitBody func(id objects.ID) (*gitobj.Commit, error)

// loader implements §4.6's loader thread protocol: it pulls commits
// from an external.CommitGraph one at a time and publishes them onto a
// commitQueue shared with the UI thread, backing off when the UI thread
// has not asked for more.
type loader struct {
	mu   *sync.Mutex
	cond *sync.Cond

	graph external.CommitGraph
	body  CommitBody
	queue *commitQueue
	log   *logrus.Entry

	commitsNeeded int
	loadAll       bool
	logComplete   bool
	quit          bool

	searchForward  bool
	searchPattern  *matcher
	searchNextDone bool

	err  error
	done chan struct{}
}

// newLoader constructs a loader sharing mu/cond/queue with the owning
// view. mu must be the same mutex the view's Manager uses, per §5's
// single global lock.
func newLoader(mu *sync.Mutex, cond *sync.Cond, queue *commitQueue, graph external.CommitGraph, body CommitBody) *loader {
	return &loader{
		mu:    mu,
		cond:  cond,
		graph: graph,
		body:  body,
		queue: queue,
		log:   logrus.WithField("component", "logview.loader"),
		done:  make(chan struct{}),
	}
}

// start runs the loader loop on its own goroutine. Callers join by
// receiving from l.done.
func (l *loader) start() {
	go l.run()
}

func (l *loader) run() {
	defer close(l.done)
	for {
		id, err := l.graph.Next()
		if err != nil {
			l.mu.Lock()
			if togerr.Is(err, togerr.IterCompleted) {
				l.logComplete = true
				err = nil
			}
			l.err = err
			l.cond.Broadcast()
			l.mu.Unlock()
			return
		}

		commit, err := l.body(id)
		if err != nil {
			l.mu.Lock()
			l.err = err
			l.cond.Broadcast()
			l.mu.Unlock()
			return
		}

		l.mu.Lock()
		entry := l.queue.append(id, commit)
		l.cond.Broadcast()

		if l.searchForward && l.searchPattern != nil && !l.searchNextDone {
			if l.searchPattern.matches(entry) {
				l.searchNextDone = true
			}
		}

		if l.quit {
			l.mu.Unlock()
			return
		}
		if l.commitsNeeded > 0 {
			l.commitsNeeded--
		} else if !l.loadAll {
			for l.commitsNeeded == 0 && !l.loadAll && !l.quit {
				l.cond.Wait()
			}
		}
		quit := l.quit
		l.mu.Unlock()
		if quit {
			return
		}
	}
}

// requestMoreLocked raises commitsNeeded and wakes the loader if it is
// waiting on need_commits. Caller must hold mu.
func (l *loader) requestMoreLocked(n int) {
	l.commitsNeeded += n
	l.cond.Broadcast()
}

// requestAllLocked sets load_all so the loader never blocks again.
func (l *loader) requestAllLocked() {
	l.loadAll = true
	l.cond.Broadcast()
}

// stop sets quit under the lock, releases it, and joins — the
// cancellation protocol §5 describes. The loader's own error is
// discarded (graph exhaustion and cancellation both end the same way).
func (l *loader) stop() {
	l.mu.Lock()
	l.quit = true
	l.cond.Broadcast()
	l.mu.Unlock()
	<-l.done
	_ = l.graph.Close()
}
