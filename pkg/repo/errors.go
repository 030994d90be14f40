// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"fmt"

	"github.com/antgroup/gotview/modules/objects"
)

func errNotATree(id objects.ID, kind objects.Kind) error {
	return fmt.Errorf("%s is a %s, not a tree", id, kind)
}

func errNotABlob(id objects.ID, kind objects.Kind) error {
	return fmt.Errorf("%s is a %s, not a blob", id, kind)
}

func errNotATag(id objects.ID, kind objects.Kind) error {
	return fmt.Errorf("%s is a %s, not a tag", id, kind)
}

func errNoSuchPath(p string) error {
	return fmt.Errorf("no such path: %s", p)
}

func errNoSuchRef(ref string) error {
	return fmt.Errorf("no such ref: %s", ref)
}

func errRefCycle(ref string) error {
	return fmt.Errorf("ref resolution exceeded maximum depth: %s", ref)
}

func errNonCommitTarget(ref string, kind objects.Kind) error {
	return fmt.Errorf("%s resolves to a %s, not a commit", ref, kind)
}
