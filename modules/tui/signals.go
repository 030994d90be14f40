// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// WatchSignals starts the signal-handling goroutine §4.5 describes:
// SIGWINCH/SIGCONT trigger a terminal resize propagated to every view,
// while SIGINT/SIGPIPE/SIGTERM are fatal and end the main loop. It
// returns a stop function that undoes signal.Notify.
func (m *Manager) WatchSignals(fd int) (stop func()) {
	resizeCh := make(chan os.Signal, 1)
	if sigs := winchSignals(); len(sigs) > 0 {
		signal.Notify(resizeCh, sigs...)
	}

	fatalCh := make(chan os.Signal, 1)
	signal.Notify(fatalCh, fatalSignals()...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-resizeCh:
				cols, rows, err := term.GetSize(fd)
				if err != nil {
					m.log.WithError(err).WithField("signal", sig).Debug("resize: terminal size unavailable")
					continue
				}
				m.Resize(cols, rows)
			case sig := <-fatalCh:
				m.log.WithField("signal", sig).Info("fatal signal received, shutting down")
				m.SetFatal(errSignal{sig})
				return
			}
		}
	}()

	return func() {
		signal.Stop(resizeCh)
		signal.Stop(fatalCh)
		close(done)
	}
}

// errSignal reports the fatal signal that ended the main loop.
type errSignal struct {
	sig os.Signal
}

func (e errSignal) Error() string {
	return "received fatal signal: " + e.sig.String()
}
