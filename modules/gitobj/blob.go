// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package gitobj

import "github.com/antgroup/gotview/modules/objects"

// Blob is the decoded form of a blob object: uninterpreted file content.
type Blob struct {
	ID   objects.ID
	Data []byte
}

// DecodeBlob wraps body as a Blob; blobs carry no structure of their own.
func DecodeBlob(id objects.ID, body []byte) (*Blob, error) {
	return &Blob{ID: id, Data: body}, nil
}

// Size returns the blob's content length in bytes.
func (b *Blob) Size() int64 { return int64(len(b.Data)) }
