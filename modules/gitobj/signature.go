// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package gitobj

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// Signature is an author or committer line: "Name <email> epoch tz".
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

const timeZoneLength = 5

// Decode parses b (everything after the "author "/"committer " keyword)
// into s, grounded on the original VCS's own Signature.Decode.
func (s *Signature) Decode(b []byte) {
	open := bytes.LastIndexByte(b, '<')
	closeIdx := bytes.LastIndexByte(b, '>')
	if open == -1 || closeIdx == -1 || closeIdx < open {
		return
	}
	s.Name = string(bytes.TrimSpace(b[:open]))
	s.Email = string(b[open+1 : closeIdx])

	if closeIdx+2 >= len(b) {
		return
	}
	s.decodeTimeAndZone(b[closeIdx+2:])
}

func (s *Signature) decodeTimeAndZone(b []byte) {
	space := bytes.IndexByte(b, ' ')
	if space == -1 {
		space = len(b)
	}
	epoch, err := strconv.ParseInt(string(b[:space]), 10, 64)
	if err != nil {
		return
	}
	s.When = time.Unix(epoch, 0).UTC()

	tzStart := space + 1
	if tzStart >= len(b) || tzStart+timeZoneLength > len(b) {
		return
	}
	tz := string(b[tzStart : tzStart+timeZoneLength])
	hours, err1 := strconv.ParseInt(tz[0:3], 10, 64)
	mins, err2 := strconv.ParseInt(tz[3:], 10, 64)
	if err1 != nil || err2 != nil {
		return
	}
	if hours < 0 {
		mins = -mins
	}
	s.When = s.When.In(time.FixedZone("", int(hours*3600+mins*60)))
}

// String renders s back into "Name <email> epoch tz" form.
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), s.When.Format("-0700"))
}
