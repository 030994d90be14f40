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

// ExtraHeader is a commit header line this package doesn't interpret
// itself (e.g. "gpgsig", "mergetag"), preserved for byte-faithful access.
type ExtraHeader struct {
	K, V string
}

// Commit is the opaque-to-the-core, decoded form of a commit object
// (§3's "Commit/Tree/Blob/Tag": produced by decompressing and parsing an
// object; higher layers treat its fields as read-only facts).
type Commit struct {
	ID           objects.ID
	Tree         objects.ID
	Parents      []objects.ID
	Author       Signature
	Committer    Signature
	ExtraHeaders []ExtraHeader
	Message      string
}

// Summary returns the first line of the commit message, the form the Log
// view renders (§4.6).
func (c *Commit) Summary() string {
	if i := strings.IndexByte(c.Message, '\n'); i >= 0 {
		return c.Message[:i]
	}
	return c.Message
}

// DecodeCommit parses the plain-text commit object body (tree/parent
// header lines, author/committer signatures, optional extra headers,
// blank line, message).
func DecodeCommit(id objects.ID, body []byte) (*Commit, error) {
	c := &Commit{ID: id}
	r := bufio.NewReader(bytes.NewReader(body))

	var message strings.Builder
	finishedHeaders := false
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil && len(line) == 0 {
			break
		}
		text := strings.TrimSuffix(line, "\n")

		if !finishedHeaders {
			if len(text) == 0 {
				finishedHeaders = true
				if readErr != nil {
					break
				}
				continue
			}
			if strings.HasPrefix(text, " ") && len(c.ExtraHeaders) > 0 {
				idx := len(c.ExtraHeaders) - 1
				c.ExtraHeaders[idx].V += "\n" + text[1:]
				if readErr != nil {
					break
				}
				continue
			}
			fields := strings.SplitN(text, " ", 2)
			if len(fields) != 2 {
				if readErr != nil {
					break
				}
				continue
			}
			switch fields[0] {
			case "tree":
				c.Tree = objects.NewID(fields[1])
			case "parent":
				c.Parents = append(c.Parents, objects.NewID(fields[1]))
			case "author":
				c.Author.Decode([]byte(fields[1]))
			case "committer":
				c.Committer.Decode([]byte(fields[1]))
			default:
				c.ExtraHeaders = append(c.ExtraHeaders, ExtraHeader{K: fields[0], V: fields[1]})
			}
		} else {
			message.WriteString(line)
		}
		if readErr != nil {
			break
		}
	}
	c.Message = message.String()
	return c, nil
}

// Encode renders c back into the plain-text commit object body, the
// inverse of DecodeCommit.
func (c *Commit) Encode() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&b, "parent %s\n", p)
	}
	fmt.Fprintf(&b, "author %s\ncommitter %s\n", c.Author, c.Committer)
	for _, h := range c.ExtraHeaders {
		fmt.Fprintf(&b, "%s %s\n", h.K, strings.ReplaceAll(h.V, "\n", "\n "))
	}
	fmt.Fprintf(&b, "\n%s", c.Message)
	return b.Bytes()
}
