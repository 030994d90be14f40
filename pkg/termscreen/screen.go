// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package termscreen implements the one concrete external.Screen this
// module owns (§1 names curses/terminal drawing as an external
// collaborator behind that interface): a full-frame ANSI redraw over an
// io.Writer, with color resolved through github.com/mgutz/ansi the same
// way modules/term resolves color support before rendering.
package termscreen

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/mgutz/ansi"

	"github.com/antgroup/gotview/modules/env"
	"github.com/antgroup/gotview/modules/external"
)

// styleCodes maps each external.Style to the mgutz/ansi style string
// driving its escape sequence. Colors are deliberately plain (no
// palette editor, per spec §1's "color palette configuration" being out
// of scope beyond env-driven selection).
var styleCodes = map[external.Style]string{
	external.StyleNormal:  "",
	external.StyleInverse: "black:white",
	external.StyleMinus:   "red",
	external.StylePlus:    "green",
	external.StyleChunk:   "cyan",
	external.StyleMeta:    "yellow",
	external.StyleAuthor:  "blue",
	external.StyleDate:    "magenta",
}

// styleEnvSuffix names the TOG_COLOR_<suffix> variable that overrides a
// style's color, one per diff color-rule category §6 documents.
var styleEnvSuffix = map[external.Style]string{
	external.StyleMinus:  "DIFF_MINUS",
	external.StylePlus:   "DIFF_PLUS",
	external.StyleChunk:  "DIFF_CHUNK",
	external.StyleMeta:   "DIFF_META",
	external.StyleAuthor: "DIFF_AUTHOR",
	external.StyleDate:   "DIFF_DATE",
}

// allowedColorNames are the only values §6 permits for a TOG_COLOR_*
// override; anything else is ignored and the built-in default applies.
var allowedColorNames = map[string]bool{
	"black": true, "red": true, "green": true, "yellow": true,
	"blue": true, "magenta": true, "cyan": true, "white": true, "default": true,
}

// resolveStyleCodes copies styleCodes, applying any valid TOG_COLOR_*
// environment overrides on top.
func resolveStyleCodes() map[external.Style]string {
	out := make(map[external.Style]string, len(styleCodes))
	for style, code := range styleCodes {
		out[style] = code
	}
	for style, suffix := range styleEnvSuffix {
		name, ok := os.LookupEnv(env.TOG_COLOR_PREFIX + suffix)
		if ok && allowedColorNames[name] {
			out[style] = name
		}
	}
	return out
}

type fragment struct {
	col   int
	text  string
	style external.Style
}

// Screen is a full-frame ANSI terminal Screen: every Refresh repaints
// the whole visible grid rather than diffing against the previous
// frame, trading a curses-style partial redraw for a much simpler
// implementation of an interface that is explicitly out of scope.
type Screen struct {
	mu sync.Mutex

	out io.Writer

	cols, rows int
	curRow     int
	curCol     int

	rowFragments [][]fragment
	colorize     bool
	codes        map[external.Style]string
}

// New constructs a Screen of the given size, writing frames to out.
// colorize controls whether WriteStyled's style argument is rendered as
// an escape sequence at all (the TOG_COLORS env gate lives in the
// caller, per modules/term's detectTermColorMode pattern). Per-category
// TOG_COLOR_* overrides are read once here.
func New(out io.Writer, cols, rows int, colorize bool) *Screen {
	s := &Screen{out: out, colorize: colorize, codes: resolveStyleCodes()}
	s.SetSize(cols, rows)
	return s
}

// SetSize resizes the frame buffer, called from the SIGWINCH/SIGCONT
// handler with the newly queried terminal dimensions.
func (s *Screen) SetSize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols, s.rows = cols, rows
	s.rowFragments = make([][]fragment, rows)
}

// Size implements external.Screen.
func (s *Screen) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

// MoveTo implements external.Screen.
func (s *Screen) MoveTo(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curRow, s.curCol = row, col
}

// WriteStyled implements external.Screen: it records a styled fragment
// at the current cursor position and advances the column by len(s),
// treating every byte as one column (no wide-character measurement;
// §1 abstracts that behind DisplayWidth for callers that need it).
func (s *Screen) WriteStyled(text string, style external.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curRow < 0 || s.curRow >= len(s.rowFragments) {
		return
	}
	s.rowFragments[s.curRow] = append(s.rowFragments[s.curRow], fragment{col: s.curCol, text: text, style: style})
	s.curCol += len(text)
}

// Clear implements external.Screen: it discards every pending fragment
// without writing anything, the buffer-level reset a view performs
// before a full repaint.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rowFragments {
		s.rowFragments[i] = nil
	}
}

// Refresh implements external.Screen: render every row's fragments,
// left to right, padding gaps with spaces, then flush one escape-coded
// frame to out.
func (s *Screen) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString("\x1b[H")
	for _, frags := range s.rowFragments {
		sort.Slice(frags, func(i, j int) bool { return frags[i].col < frags[j].col })
		col := 0
		for _, f := range frags {
			for col < f.col {
				buf.WriteByte(' ')
				col++
			}
			buf.WriteString(s.render(f.text, f.style))
			col += len(f.text)
		}
		buf.WriteString("\x1b[K\r\n")
	}
	_, _ = s.out.Write(buf.Bytes())
}

func (s *Screen) render(text string, style external.Style) string {
	if !s.colorize {
		return text
	}
	code, ok := s.codes[style]
	if !ok || code == "" {
		return text
	}
	return ansi.Color(text, code)
}

// ClearScreen emits the escape sequence that wipes the physical
// terminal, used once at startup and once at shutdown around the
// Manager's own frame buffer (§4.5's "screen is torn down" on exit).
func ClearScreen(out io.Writer) {
	fmt.Fprint(out, "\x1b[2J\x1b[H")
}
