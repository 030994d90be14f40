// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import "github.com/antgroup/gotview/modules/objects"

// Extracted is the fully resolved result of reading one pack object: its
// plain kind and its uncompressed, de-delta'd bytes.
type Extracted struct {
	Kind objects.Kind
	Data []byte
}

// Extract implements §4.4's extract(object): for a plain kind it inflates
// the payload directly; for a delta kind it resolves the chain, extracts
// the terminal base, and replays each delta from base upward.
func Extract(resolver *Resolver, pack *Packfile, offset int64) (*Extracted, error) {
	header, err := pack.ReadHeader(offset)
	if err != nil {
		return nil, err
	}

	if !header.Kind.IsDelta() {
		data, err := pack.InflatePayload(header.PayloadOffset, header.Size)
		if err != nil {
			return nil, err
		}
		return &Extracted{Kind: header.Kind, Data: data}, nil
	}

	chain, err := resolver.Resolve(pack, offset, header)
	if err != nil {
		return nil, err
	}

	baseEntry := chain.Base
	cur, err := baseEntry.Pack.InflatePayload(baseEntry.Header.PayloadOffset, baseEntry.Header.Size)
	if err != nil {
		return nil, err
	}

	for i := len(chain.Entries) - 1; i >= 0; i-- {
		entry := chain.Entries[i]
		deflated, err := entry.Pack.InflatePayload(entry.Header.PayloadOffset, entry.Header.Size)
		if err != nil {
			return nil, err
		}
		cur, err = ApplyDelta(cur, deflated)
		if err != nil {
			return nil, err
		}
	}

	return &Extracted{Kind: chain.BaseType, Data: cur}, nil
}
