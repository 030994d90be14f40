// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gitobj decodes the opaque higher-level entities §3 calls
// Commit/Tree/Blob/Tag from the plain bytes the Object Store Facade
// extracts. Their internal fields are outside this repository's original
// scope, but a history browser can't render a log or a tree without
// parsing them, so this package supplements the distilled core with the
// plain-text/binary encodings the original VCS itself uses.
package gitobj

import (
	"fmt"

	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

// Decode dispatches on kind to the matching Decode* function. kind must
// be a resolved (non-delta) kind.
func Decode(id objects.ID, kind objects.Kind, body []byte) (any, error) {
	switch kind {
	case objects.KindCommit:
		return DecodeCommit(id, body)
	case objects.KindTree:
		return DecodeTree(id, body)
	case objects.KindBlob:
		return DecodeBlob(id, body)
	case objects.KindTag:
		return DecodeTag(id, body)
	default:
		return nil, togerr.New(togerr.NotImplemented, "Decode", fmt.Errorf("cannot decode unresolved kind %s", kind))
	}
}

// AsCommit decodes body as a commit, failing with NotImplemented if kind
// says otherwise (e.g. a Tag passed where a commit was expected after
// dereferencing, per §4.9's "non-commit targets are errors").
func AsCommit(id objects.ID, kind objects.Kind, body []byte) (*Commit, error) {
	if kind != objects.KindCommit {
		return nil, togerr.New(togerr.NotImplemented, "AsCommit", fmt.Errorf("object %s is a %s, not a commit", id, kind))
	}
	return DecodeCommit(id, body)
}
