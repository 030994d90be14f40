// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package tui

import (
	"os"
	"syscall"
)

// Windows has no SIGWINCH/SIGCONT, so no resize signal is watched and
// the terminal size is not re-read after startup.
func winchSignals() []os.Signal {
	return nil
}

func fatalSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}

