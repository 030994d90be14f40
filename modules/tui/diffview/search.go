// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package diffview

import "regexp"

// diffMatcher wraps a compiled POSIX extended regular expression used
// to search diff line text (§4.7), the same semantics logview's
// matcher applies to commit metadata.
type diffMatcher struct {
	re *regexp.Regexp
}

func newDiffMatcher(pattern string) (*diffMatcher, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, err
	}
	return &diffMatcher{re: re}, nil
}

func (m *diffMatcher) matches(line string) bool {
	return m.re.MatchString(line)
}
