// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package diffview

import (
	"regexp"

	"github.com/antgroup/gotview/modules/external"
)

// colorRules implements §4.7's "Color rules (all from extended regex
// matches against the line start)" table.
var colorRules = []struct {
	re    *regexp.Regexp
	style external.Style
}{
	{regexp.MustCompile(`^-`), external.StyleMinus},
	{regexp.MustCompile(`^\+`), external.StylePlus},
	{regexp.MustCompile(`^@@`), external.StyleChunk},
	{regexp.MustCompile(`^(commit|parent|blob|file|tree) `), external.StyleMeta},
	{regexp.MustCompile(`^(from|via): `), external.StyleAuthor},
	{regexp.MustCompile(`^date: `), external.StyleDate},
}

// styleFor returns the style a line's start matches, or StyleNormal.
func styleFor(line string) external.Style {
	for _, rule := range colorRules {
		if rule.re.MatchString(line) {
			return rule.style
		}
	}
	return external.StyleNormal
}
