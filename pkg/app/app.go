// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package app is the composition root §9's Design Notes calls for in
// place of the original program's globals and mutex: it opens a
// repository path, wires the pack/loose object backends into
// modules/store, builds pkg/repo's external.* implementations over it,
// and constructs whichever view a subcommand asks for.
package app

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/antgroup/gotview/modules/external"
	"github.com/antgroup/gotview/modules/gitobj"
	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/pack"
	"github.com/antgroup/gotview/modules/store"
	"github.com/antgroup/gotview/modules/strengthen"
	"github.com/antgroup/gotview/modules/tui"
	"github.com/antgroup/gotview/modules/tui/blameview"
	"github.com/antgroup/gotview/modules/tui/diffview"
	"github.com/antgroup/gotview/modules/tui/logview"
	"github.com/antgroup/gotview/modules/tui/refview"
	"github.com/antgroup/gotview/modules/tui/treeview"
	"github.com/antgroup/gotview/pkg/repo"
)

// App owns the store and the decode/access layer built over it, and
// knows how to construct each of the five views against the same
// backing repository.
type App struct {
	Path string

	store *store.Store
	repo  *repo.Repo
	refs  *repo.RefResolver
	diff  *repo.DiffProducer
	blame *repo.Blamer

	log *logrus.Entry
}

// Open resolves repoPath (expanding "~", defaulting to the current
// directory) to its metadata directory and wires a Store over it: every
// pack-<id>.pack/.idx pair directly under objects/pack, falling back to
// objects/<xx>/<38-hex> loose objects on a pack miss, per §4.4's open(id).
func Open(repoPath string) (*App, error) {
	if repoPath == "" {
		repoPath = "."
	}
	repoPath = strengthen.ExpandPath(repoPath)

	metaDir := repoPath
	if fi, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil && fi.IsDir() {
		metaDir = filepath.Join(repoPath, ".git")
	}

	set, err := pack.NewSet(filepath.Join(metaDir, "objects", "pack"))
	if err != nil {
		return nil, err
	}
	loose := repo.NewLooseBackend(metaDir)

	st, err := store.New(set, loose)
	if err != nil {
		return nil, err
	}

	r := repo.New(st)
	a := &App{
		Path:  metaDir,
		store: st,
		repo:  r,
		refs:  repo.NewRefResolver(r, metaDir),
		diff:  repo.NewDiffProducer(r),
		blame: repo.NewBlamer(r),
		log:   logrus.WithField("component", "app"),
	}
	return a, nil
}

// Close releases the underlying store (and, with it, every open pack).
func (a *App) Close() error {
	return a.store.Close()
}

// Head resolves the checked-out branch's commit, the starting point
// every subcommand uses absent an explicit -c.
func (a *App) Head() (objects.ID, error) {
	return a.refs.Head()
}

// ResolveCommit resolves ref (a full ref name, or any commit/tag id
// string accepted by objects.NewIDStrict) to a commit id, trying the ref
// resolver first and falling back to a direct id parse.
func (a *App) ResolveCommit(ref string) (objects.ID, error) {
	if id, err := objects.NewIDStrict(ref); err == nil {
		if _, kerr := a.repo.Kind(id); kerr == nil {
			return a.refs.ResolveID(id)
		}
	}
	return a.refs.Resolve(ref)
}

// ResolveBlob implements logview/treeview/blameview's path-resolution
// callback.
func (a *App) ResolveBlob(path string, at objects.ID) (objects.ID, error) {
	return a.repo.ResolveBlob(path, at)
}

// ExtractBlob implements treeview/blameview's content-reading callback.
func (a *App) ExtractBlob(id objects.ID) ([]byte, error) {
	return a.repo.ReadBlob(id)
}

// CommitParent implements blameview's first-parent walk callback.
func (a *App) CommitParent(commit objects.ID) (objects.ID, bool, error) {
	return a.repo.CommitParent(commit)
}

// ResolveTree implements treeview's commit-to-root-tree callback.
func (a *App) ResolveTree(id objects.ID) (*gitobj.Tree, error) {
	return a.repo.ResolveTree(id)
}

// ReadCommit implements refview's commit-metadata callback.
func (a *App) ReadCommit(id objects.ID) (*gitobj.Commit, error) {
	return a.repo.ReadCommit(id)
}

// GraphFactory builds a logview.GraphFactory rooted at start, the
// commit a subcommand resolved (HEAD, -c, or a log-row reopen).
func (a *App) GraphFactory(start objects.ID) logview.GraphFactory {
	return func(pathFilter string, branchScoped bool) (external.CommitGraph, error) {
		root := start
		if branchScoped {
			head, err := a.Head()
			if err != nil {
				return nil, err
			}
			root = head
		}
		return a.repo.NewCommitGraph(root, pathFilter)
	}
}

// OpenLog constructs the log view rooted at start.
func (a *App) OpenLog(start objects.ID, pathFilter string) (*logview.View, error) {
	v, err := logview.New(a.GraphFactory(start), a.repo.ReadCommit, a.openDiffFromLog)
	if err != nil {
		return nil, err
	}
	if pathFilter != "" {
		if err := v.SetPathFilter(pathFilter); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (a *App) openDiffFromLog(commit, parent objects.ID) tui.View {
	return a.OpenDiff(commit, parent)
}

// OpenDiff constructs a diff view of commit against parent (parent may
// be objects.ZeroID for a root commit), stepping through the rest of
// commit's ancestry with the same first-parent walk blameview uses.
func (a *App) OpenDiff(commit, parent objects.ID) *diffview.View {
	cur := commit
	stepper := func(forward bool) (objects.ID, objects.ID, bool) {
		if !forward {
			p, ok, err := a.repo.CommitParent(cur)
			if err != nil || !ok {
				return objects.ZeroID, objects.ZeroID, false
			}
			gp, ok, err := a.repo.CommitParent(p)
			if err != nil {
				return objects.ZeroID, objects.ZeroID, false
			}
			if !ok {
				gp = objects.ZeroID
			}
			cur = p
			return p, gp, true
		}
		return objects.ZeroID, objects.ZeroID, false
	}
	return diffview.New(a.diff, stepper, commit, parent, commit.String(), parent.String())
}

// OpenBlame constructs a blame view of path at commit.
func (a *App) OpenBlame(path string, at objects.ID) (*blameview.View, error) {
	return blameview.Open(a.blame, a.ResolveBlob, a.ExtractBlob, a.CommitParent, a.openDiffFromLog, path, at)
}

// OpenTree constructs a tree view rooted at commit's root tree.
func (a *App) OpenTree(commit objects.ID) (*treeview.View, error) {
	c, err := a.repo.ReadCommit(commit)
	if err != nil {
		return nil, err
	}
	openBlame := func(path string) tui.View {
		v, err := a.OpenBlame(path, commit)
		if err != nil {
			return nil
		}
		return v
	}
	openLog := func(path string) tui.View {
		v, err := a.OpenLog(commit, path)
		if err != nil {
			return nil
		}
		return v
	}
	openRef := func() tui.View {
		v, err := a.OpenRef()
		if err != nil {
			return nil
		}
		return v
	}
	return treeview.New(a.ResolveTree, a.ExtractBlob, openBlame, openLog, openRef, commit, c.Tree)
}

// OpenRef constructs the ref view.
func (a *App) OpenRef() (*refview.View, error) {
	openLog := func(ref string) tui.View {
		commit, err := a.refs.Resolve(ref)
		if err != nil {
			return nil
		}
		v, err := a.OpenLog(commit, "")
		if err != nil {
			return nil
		}
		return v
	}
	openTree := func(commit objects.ID) tui.View {
		v, err := a.OpenTree(commit)
		if err != nil {
			return nil
		}
		return v
	}
	return refview.New(a.refs, a.ReadCommit, openLog, openTree)
}
