// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package repo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"

	"github.com/antgroup/gotview/modules/objects"
	"github.com/antgroup/gotview/modules/togerr"
)

// LooseBackend implements store.LooseBackend over a repository's
// objects/<xx>/<38 hex> layout: each file is a zlib-deflated
// "<kind> <size>\0<content>" record, the same framing git itself writes
// for an object that hasn't been packed. This is the fallback half of
// §4.4's open(id), the pack side being modules/pack's own job.
type LooseBackend struct {
	objectsDir string
}

// NewLooseBackend wraps the objects/ directory beneath repoPath.
func NewLooseBackend(repoPath string) *LooseBackend {
	return &LooseBackend{objectsDir: filepath.Join(repoPath, "objects")}
}

func (l *LooseBackend) path(id objects.ID) string {
	hexStr := id.String()
	return filepath.Join(l.objectsDir, hexStr[:2], hexStr[2:])
}

// Open implements store.LooseBackend: a missing file reports found=false
// rather than an error, since a pack miss followed by a loose miss is the
// ordinary "object does not exist" case, not a failure of this backend.
func (l *LooseBackend) Open(id objects.ID) (kind objects.Kind, data []byte, found bool, err error) {
	f, err := os.Open(l.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return objects.KindInvalid, nil, false, nil
		}
		return objects.KindInvalid, nil, false, togerr.New(togerr.IO, "LooseBackend.Open", err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return objects.KindInvalid, nil, false, togerr.New(togerr.IO, "LooseBackend.Open", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return objects.KindInvalid, nil, false, togerr.New(togerr.IO, "LooseBackend.Open", err)
	}

	kind, content, err := parseLooseRecord(raw)
	if err != nil {
		return objects.KindInvalid, nil, false, togerr.New(togerr.IO, "LooseBackend.Open", err)
	}
	return kind, content, true, nil
}

// parseLooseRecord splits a decompressed loose object into its kind and
// content, per git's "<type> <size>\0<content>" header.
func parseLooseRecord(raw []byte) (objects.Kind, []byte, error) {
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return objects.KindInvalid, nil, fmt.Errorf("loose object: missing header terminator")
	}
	header := raw[:nul]
	content := raw[nul+1:]

	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return objects.KindInvalid, nil, fmt.Errorf("loose object: malformed header %q", header)
	}
	typeName := string(header[:sp])

	var kind objects.Kind
	switch typeName {
	case "commit":
		kind = objects.KindCommit
	case "tree":
		kind = objects.KindTree
	case "blob":
		kind = objects.KindBlob
	case "tag":
		kind = objects.KindTag
	default:
		return objects.KindInvalid, nil, fmt.Errorf("loose object: unknown type %q", typeName)
	}
	return kind, content, nil
}
