// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logview

import "regexp"

// matcher wraps a compiled POSIX extended regular expression (§4.6:
// "uses a POSIX extended regular expression compiled on `/` input").
// The standard library's regexp.CompilePOSIX is used directly: no
// third-party dependency in the module's stack offers POSIX-ERE
// semantics (leftmost-longest matching) over RE2's leftmost-first
// default, and this is the one place that distinction is observable.
type matcher struct {
	re *regexp.Regexp
}

func newMatcher(pattern string) (*matcher, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, err
	}
	return &matcher{re: re}, nil
}

// matches reports whether entry's author, committer, id hex, or message
// is matched by the pattern, per §4.6's search rule.
func (m *matcher) matches(entry CommitEntry) bool {
	if entry.Commit == nil {
		return false
	}
	if m.re.MatchString(entry.Commit.Author.String()) {
		return true
	}
	if m.re.MatchString(entry.Commit.Committer.String()) {
		return true
	}
	if m.re.MatchString(entry.ID.String()) {
		return true
	}
	return m.re.MatchString(entry.Commit.Message)
}
