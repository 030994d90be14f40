// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Command tog is the history browser §2's OVERVIEW describes: a
// terminal UI over a content-addressed pack-file object store, built on
// a raw-mode terminal, the object store facade, and the View Manager.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/antgroup/gotview/modules/env"
	"github.com/antgroup/gotview/modules/objects"
	gotterm "github.com/antgroup/gotview/modules/term"
	"github.com/antgroup/gotview/modules/tui"
	"github.com/antgroup/gotview/pkg/app"
	"github.com/antgroup/gotview/pkg/cli"
	"github.com/antgroup/gotview/pkg/termscreen"
)

const progName = "tog"
const version = "0.1.0"

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd, err := cli.Parse(args, os.Stderr)
	if errors.Is(err, cli.ErrUnknownCommand) {
		cmd, err = fallbackToLog(args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return 1
	}

	if cmd.Help {
		fmt.Print(cli.Usage)
		return 0
	}
	if cmd.Version {
		fmt.Printf("%s version %s\n", progName, version)
		return 0
	}

	a, err := app.Open(cmd.RepoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return 1
	}
	defer a.Close()

	view, err := buildInitialView(a, cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return 1
	}

	return runUI(view)
}

// fallbackToLog implements §6's "argv[1] matches no subcommand" rule:
// treat it as a path and open `log` scoped to it if HEAD actually
// contains that path, otherwise report it as unrecognized.
func fallbackToLog(args []string) (*cli.Command, error) {
	arg := args[0]
	a, err := app.Open("")
	if err != nil {
		return nil, err
	}
	defer a.Close()

	head, err := a.Head()
	if err != nil {
		return nil, fmt.Errorf("%q is no known command or path", arg)
	}
	if _, err := a.ResolveBlob(arg, head); err != nil {
		return nil, fmt.Errorf("%q is no known command or path", arg)
	}
	return &cli.Command{Name: "log", Positional: []string{arg}}, nil
}

func buildInitialView(a *app.App, cmd *cli.Command) (tui.View, error) {
	start, err := startingCommit(a, cmd)
	if err != nil {
		return nil, err
	}

	switch cmd.Name {
	case "log":
		pathFilter := ""
		if len(cmd.Positional) > 0 {
			pathFilter = cmd.Positional[0]
		}
		return a.OpenLog(start, pathFilter)
	case "diff":
		commitA, err := a.ResolveCommit(cmd.Positional[0])
		if err != nil {
			return nil, err
		}
		commitB, err := a.ResolveCommit(cmd.Positional[1])
		if err != nil {
			return nil, err
		}
		v := a.OpenDiff(commitA, commitB)
		v.SetOptions(cmd.ContextLines, cmd.IgnoreWhitespace, cmd.ForceText)
		return v, nil
	case "blame":
		return a.OpenBlame(cmd.Positional[0], start)
	case "tree":
		v, err := a.OpenTree(start)
		if err != nil {
			return nil, err
		}
		if len(cmd.Positional) > 0 {
			if err := v.OpenPath(cmd.Positional[0]); err != nil {
				return nil, err
			}
		}
		return v, nil
	case "ref":
		return a.OpenRef()
	default:
		return nil, fmt.Errorf("unhandled command %q", cmd.Name)
	}
}

func startingCommit(a *app.App, cmd *cli.Command) (objects.ID, error) {
	if cmd.Commit != "" {
		return a.ResolveCommit(cmd.Commit)
	}
	return a.Head()
}

// runUI drives the raw-terminal render/dispatch loop: render, block for
// one key, dispatch, repeat until the Manager reports done.
func runUI(initial tui.View) int {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return 1
	}
	defer term.Restore(fd, oldState)

	cols, rows, err := gotterm.GetSize(fd)
	if err != nil {
		cols, rows = 80, 24
	}

	colorize := env.TOG_COLORS.SimpleAtob(gotterm.StdoutMode != gotterm.NO_COLOR)
	screen := termscreen.New(os.Stdout, cols, rows, colorize)
	termscreen.ClearScreen(os.Stdout)
	defer termscreen.ClearScreen(os.Stdout)

	manager := tui.New(screen)
	manager.Open(initial)

	stop := manager.WatchSignals(fd)
	defer stop()

	reader := tui.NewKeyReader(os.Stdin, manager)

	for !manager.Done() {
		manager.Render()
		key, err := reader.ReadKey()
		if err != nil {
			break
		}
		manager.Dispatch(key)
	}

	if err := manager.FatalErr(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName, err)
		return 1
	}
	return 0
}
