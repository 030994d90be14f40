// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package blameview

import (
	"sync"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

// lineSlot is one entry of the per-line annotation array §4.8
// describes: {annotated, id}.
type lineSlot struct {
	annotated bool
	id        objects.ID
}

// annotator runs the blame view's background annotation thread: it
// calls the external blamer, which invokes a per-line callback, and
// exits early (mapped to Cancelled) once `done` is set under the shared
// lock, matching §5's cancellation protocol.
type annotator struct {
	mu   *sync.Mutex
	done bool

	blamer external.Blamer
	path   string
	at     objects.ID
	lines  []lineSlot

	err     error
	finChan chan struct{}
}

// newAnnotator constructs an annotator for one blame run. mu must be
// the view's own mutex: each run gets its own independent `done` flag
// rather than sharing one across re-runs, so stopping a previous
// annotator (C/p) never poisons the next one.
func newAnnotator(mu *sync.Mutex, blamer external.Blamer, path string, at objects.ID, lines []lineSlot) *annotator {
	return &annotator{mu: mu, blamer: blamer, path: path, at: at, lines: lines, finChan: make(chan struct{})}
}

func (a *annotator) start() {
	go a.run()
}

func (a *annotator) run() {
	defer close(a.finChan)
	err := a.blamer.Blame(a.path, a.at, a.callback)
	a.mu.Lock()
	if togerr.IsCancelled(err) {
		err = nil
	}
	a.err = err
	a.mu.Unlock()
}

// callback is invoked by the external blamer once per attributed line.
// It is the suspension point §5 names: "inside the external blame
// callback (returns Cancelled under mutex when done is set)".
func (a *annotator) callback(lineno int, commit objects.ID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done {
		return togerr.New(togerr.Cancelled, "Blame", nil)
	}
	if lineno == -1 {
		return nil
	}
	if lineno < 1 || lineno > len(a.lines) {
		return togerr.New(togerr.RangeErr, "Blame", nil)
	}
	slot := &a.lines[lineno-1]
	if !slot.annotated {
		slot.annotated = true
		slot.id = commit
	}
	return nil
}

// stop sets done under the lock and joins, the same cancellation
// sequence the log loader uses.
func (a *annotator) stop() error {
	a.mu.Lock()
	a.done = true
	a.mu.Unlock()
	<-a.finChan
	return a.err
}
