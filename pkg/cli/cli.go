// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cli parses the argv surface §6 documents. Subcommand dispatch
// and flag parsing are explicitly out of scope collaborators (§1), and
// no third-party flag library appears anywhere in the pack this module
// was built from, so this is the one component built directly on the
// standard library's flag package rather than an ecosystem dependency.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// Name is the subcommand name ("log", "diff", "blame", "tree", "ref"),
// or "" for a bare `-h`/`-V` invocation.
type Command struct {
	Name string

	RepoPath         string
	Commit           string
	AllBranches      bool
	ForceText        bool
	IgnoreWhitespace bool
	ContextLines     int
	Positional       []string

	Help    bool
	Version bool
}

// ErrUnknownCommand is returned, wrapped with the unrecognized token
// quoted in the message, when argv[1] matches no subcommand, so the
// caller can attempt the "log <arg>" fallback §6 specifies.
var ErrUnknownCommand = errors.New("no known command or path")

const defaultContextLines = 3

// Parse parses args (excluding argv[0]) into a Command. A leading
// -h/--help or -V/--version with nothing else is handled as a global
// flag before any subcommand is recognized.
func Parse(args []string, errOut io.Writer) (*Command, error) {
	if len(args) == 0 {
		return &Command{Help: true}, nil
	}

	switch args[0] {
	case "-h", "--help":
		return &Command{Help: true}, nil
	case "-V", "--version":
		return &Command{Version: true}, nil
	}

	name := args[0]
	rest := args[1:]

	switch name {
	case "log":
		return parseLog(rest, errOut)
	case "diff":
		return parseDiff(rest, errOut)
	case "blame":
		return parseBlame(rest, errOut)
	case "tree":
		return parseTree(rest, errOut)
	case "ref":
		return parseRef(rest, errOut)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

func parseLog(args []string, errOut io.Writer) (*Command, error) {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.SetOutput(errOut)
	allBranches := fs.Bool("b", false, "include all branches")
	commit := fs.String("c", "", "starting commit")
	repo := fs.String("r", "", "repository path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &Command{
		Name:        "log",
		RepoPath:    *repo,
		Commit:      *commit,
		AllBranches: *allBranches,
		Positional:  fs.Args(),
	}, nil
}

func parseDiff(args []string, errOut io.Writer) (*Command, error) {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.SetOutput(errOut)
	forceText := fs.Bool("a", false, "force text diff")
	ctx := fs.Int("C", defaultContextLines, "context lines")
	repo := fs.String("r", "", "repository path")
	ignoreWS := fs.Bool("w", false, "ignore whitespace")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *ctx < 0 {
		return nil, fmt.Errorf("diff: -C must be >= 0")
	}
	positional := fs.Args()
	if len(positional) != 2 {
		return nil, fmt.Errorf("diff: expected two object specs")
	}
	return &Command{
		Name:             "diff",
		RepoPath:         *repo,
		ForceText:        *forceText,
		IgnoreWhitespace: *ignoreWS,
		ContextLines:     *ctx,
		Positional:       positional,
	}, nil
}

func parseBlame(args []string, errOut io.Writer) (*Command, error) {
	fs := flag.NewFlagSet("blame", flag.ContinueOnError)
	fs.SetOutput(errOut)
	commit := fs.String("c", "", "starting commit")
	repo := fs.String("r", "", "repository path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	positional := fs.Args()
	if len(positional) != 1 {
		return nil, fmt.Errorf("blame: path is required")
	}
	return &Command{
		Name:       "blame",
		RepoPath:   *repo,
		Commit:     *commit,
		Positional: positional,
	}, nil
}

func parseTree(args []string, errOut io.Writer) (*Command, error) {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(errOut)
	commit := fs.String("c", "", "starting commit")
	repo := fs.String("r", "", "repository path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &Command{
		Name:       "tree",
		RepoPath:   *repo,
		Commit:     *commit,
		Positional: fs.Args(),
	}, nil
}

func parseRef(args []string, errOut io.Writer) (*Command, error) {
	fs := flag.NewFlagSet("ref", flag.ContinueOnError)
	fs.SetOutput(errOut)
	repo := fs.String("r", "", "repository path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &Command{Name: "ref", RepoPath: *repo}, nil
}

// Usage is the global usage text printed by a bare -h.
const Usage = `usage: tog <command> [options] [args]

commands:
  log   [-b] [-c commit] [-r repo] [path]
  diff  [-a] [-C n] [-r repo] [-w] <object> <object>
  blame [-c commit] [-r repo] <path>
  tree  [-c commit] [-r repo] [path]
  ref   [-r repo]

  -h, --help      show this message
  -V, --version   show version
`
