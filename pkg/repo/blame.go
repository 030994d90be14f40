// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"bytes"

	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

// Blamer implements external.Blamer by walking a path's first-parent
// history and attributing each line of its content at the starting
// commit to the nearest ancestor that introduced it, via repeated
// pairwise Myers diffs — the same incremental idea §4.9's commit walker
// applies to whole commits, specialized here to one file's revisions.
type Blamer struct {
	repo *Repo
}

// NewBlamer wraps repo as an external.Blamer.
func NewBlamer(repo *Repo) *Blamer {
	return &Blamer{repo: repo}
}

type pathRevision struct {
	commit  objects.ID
	content []byte
}

// revisionsOf walks at's first-parent chain, recording one revision per
// commit where path's blob content changed, newest first, stopping once
// the path no longer resolves (the commit that created it, walked one
// step past).
func (b *Blamer) revisionsOf(path string, at objects.ID) ([]pathRevision, error) {
	var revisions []pathRevision
	var last []byte
	haveLast := false

	cur := at
	for {
		blobID, err := b.repo.ResolveBlob(path, cur)
		if togerr.Is(err, togerr.NoSuchObject) {
			break
		}
		if err != nil {
			return nil, err
		}
		content, err := b.repo.ReadBlob(blobID)
		if err != nil {
			return nil, err
		}
		if !haveLast || !bytes.Equal(content, last) {
			revisions = append(revisions, pathRevision{commit: cur, content: content})
			last = content
			haveLast = true
		}

		parent, ok, err := b.repo.CommitParent(cur)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		cur = parent
	}
	if len(revisions) == 0 {
		return nil, togerr.New(togerr.NoSuchObject, "Blamer.Blame", errNoSuchPath(path))
	}
	return revisions, nil
}

// Blame implements external.Blamer.
func (b *Blamer) Blame(path string, at objects.ID, cb func(lineno int, commit objects.ID) error) error {
	revisions, err := b.revisionsOf(path, at)
	if err != nil {
		return err
	}

	workingLines := splitLines(revisions[0].content)
	attribution := make([]objects.ID, len(workingLines))
	origIndex := make([]int, len(workingLines))
	for i := range origIndex {
		origIndex[i] = i
	}

	for i := 0; i < len(revisions)-1; i++ {
		newer, older := revisions[i], revisions[i+1]
		oldLines := splitLines(older.content)
		changes := myersDiff(oldLines, workingLines)

		inserted := make([]bool, len(workingLines))
		for _, c := range changes {
			for k := c.P2; k < c.P2+c.Ins; k++ {
				inserted[k] = true
			}
		}
		for wi, was := range inserted {
			if was {
				attribution[origIndex[wi]] = newer.commit
			}
		}

		var newOrigIndex []int
		pa, pb := 0, 0
		for _, c := range changes {
			for pa < c.P1 {
				newOrigIndex = append(newOrigIndex, origIndex[pb])
				pa++
				pb++
			}
			pa += c.Del
			pb += c.Ins
		}
		for pa < len(oldLines) {
			newOrigIndex = append(newOrigIndex, origIndex[pb])
			pa++
			pb++
		}

		workingLines = oldLines
		origIndex = newOrigIndex
	}

	oldest := revisions[len(revisions)-1].commit
	for _, orig := range origIndex {
		if attribution[orig].IsZero() {
			attribution[orig] = oldest
		}
	}

	for i, commit := range attribution {
		if commit.IsZero() {
			continue
		}
		if err := cb(i+1, commit); err != nil {
			return err
		}
	}
	return nil
}
