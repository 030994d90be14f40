// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogOptions(t *testing.T) {
	cmd, err := Parse([]string{"log", "-b", "-c", "deadbeef", "-r", "/repo", "dir/file.go"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "log", cmd.Name)
	require.True(t, cmd.AllBranches)
	require.Equal(t, "deadbeef", cmd.Commit)
	require.Equal(t, "/repo", cmd.RepoPath)
	require.Equal(t, []string{"dir/file.go"}, cmd.Positional)
}

func TestParseDiffRequiresTwoPositional(t *testing.T) {
	_, err := Parse([]string{"diff", "-a", "-C", "5", "onlyone"}, &bytes.Buffer{})
	require.Error(t, err)

	cmd, err := Parse([]string{"diff", "-a", "-C", "5", "-w", "a", "b"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.True(t, cmd.ForceText)
	require.True(t, cmd.IgnoreWhitespace)
	require.Equal(t, 5, cmd.ContextLines)
	require.Equal(t, []string{"a", "b"}, cmd.Positional)
}

func TestParseDiffRejectsNegativeContext(t *testing.T) {
	_, err := Parse([]string{"diff", "-C", "-1", "a", "b"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestParseBlameRequiresPath(t *testing.T) {
	_, err := Parse([]string{"blame"}, &bytes.Buffer{})
	require.Error(t, err)

	cmd, err := Parse([]string{"blame", "-c", "abc", "a.txt"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, cmd.Positional)
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse([]string{"bogus"}, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestParseGlobalHelpAndVersion(t *testing.T) {
	cmd, err := Parse([]string{"-h"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.True(t, cmd.Help)

	cmd, err = Parse([]string{"--version"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.True(t, cmd.Version)
}

func TestParseNoArgsIsHelp(t *testing.T) {
	cmd, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.True(t, cmd.Help)
}
