// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package pack

import (
	"fmt"

	"github.com/antgroup/gotview/modules/togerr"
)

func errBadIndex(op string, format string, args ...any) error {
	return togerr.New(togerr.BadPackIndex, op, fmt.Errorf(format, args...))
}

func errChecksum(op string, format string, args ...any) error {
	return togerr.New(togerr.PackIndexChecksum, op, fmt.Errorf(format, args...))
}

func errBadPack(op string, format string, args ...any) error {
	return togerr.New(togerr.BadPackFile, op, fmt.Errorf(format, args...))
}

func errNoSuchObject(op string) error {
	return togerr.New(togerr.NoSuchObject, op, nil)
}

func errOverflow(op string, format string, args ...any) error {
	return togerr.New(togerr.Overflow, op, fmt.Errorf(format, args...))
}
