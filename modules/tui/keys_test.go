// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadKeyPlainRune(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	kr := NewKeyReader(strings.NewReader("j"), m)
	k, err := kr.ReadKey()
	require.NoError(t, err)
	require.Equal(t, 'j', k.Rune)
}

func TestReadKeyTabAndEnter(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	kr := NewKeyReader(strings.NewReader("\t\r"), m)
	k, err := kr.ReadKey()
	require.NoError(t, err)
	require.Equal(t, "Tab", k.Name)
	k, err = kr.ReadKey()
	require.NoError(t, err)
	require.Equal(t, "Enter", k.Name)
}

func TestReadKeyArrowEscapeSequence(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	kr := NewKeyReader(strings.NewReader("\x1b[A"), m)
	k, err := kr.ReadKey()
	require.NoError(t, err)
	require.Equal(t, "Up", k.Name)
}

func TestReadKeyPageDownSequence(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	kr := NewKeyReader(strings.NewReader("\x1b[6~"), m)
	k, err := kr.ReadKey()
	require.NoError(t, err)
	require.Equal(t, "PageDown", k.Name)
}

func TestReadKeyNumericPrefixAccumulates(t *testing.T) {
	m := New(&fakeScreen{cols: 200, rows: 50})
	kr := NewKeyReader(strings.NewReader("42"), m)
	k, err := kr.ReadKey()
	require.NoError(t, err)
	require.Equal(t, 4, k.Count)
	k, err = kr.ReadKey()
	require.NoError(t, err)
	require.Equal(t, 42, k.Count)
}
