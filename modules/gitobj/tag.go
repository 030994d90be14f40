// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package gitobj

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/antgroup/gotview/modules/objects"
)

// Tag is the decoded form of an annotated tag object: "object"/"type"/
// "tag"/"tagger" headers followed by a free-text message.
type Tag struct {
	ID         objects.ID
	Object     objects.ID
	ObjectKind string
	Name       string
	Tagger     Signature
	Message    string
}

// DecodeTag parses the plain-text tag object body.
func DecodeTag(id objects.ID, body []byte) (*Tag, error) {
	t := &Tag{ID: id}
	r := bufio.NewReader(bytes.NewReader(body))

	var message strings.Builder
	finishedHeaders := false
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil && len(line) == 0 {
			break
		}
		if finishedHeaders {
			message.WriteString(line)
		} else {
			text := strings.TrimSuffix(line, "\n")
			if len(text) == 0 {
				finishedHeaders = true
				if readErr != nil {
					break
				}
				continue
			}
			field, value, ok := strings.Cut(text, " ")
			if !ok {
				return nil, fmt.Errorf("tog: invalid tag header: %s", text)
			}
			switch field {
			case "object":
				t.Object = objects.NewID(value)
			case "type":
				t.ObjectKind = value
			case "tag":
				t.Name = value
			case "tagger":
				t.Tagger.Decode([]byte(value))
			}
		}
		if readErr != nil {
			break
		}
	}
	t.Message = message.String()
	return t, nil
}

// Encode renders t back into its plain-text tag object body.
func (t *Tag) Encode() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "object %s\n", t.Object)
	fmt.Fprintf(&b, "type %s\n", t.ObjectKind)
	fmt.Fprintf(&b, "tag %s\n", t.Name)
	fmt.Fprintf(&b, "tagger %s\n", t.Tagger)
	fmt.Fprintf(&b, "\n%s", t.Message)
	return b.Bytes()
}
