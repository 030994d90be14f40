// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package blameview implements the blame view and its annotation
// thread (§4.8): per-line commit attribution over a blob extracted to a
// temporary file, navigated and cancelled per §5's worker protocol.
package blameview

import (
	"bufio"
	"bytes"
	"os"
)

// lineIndex extracts a blob's content to a temporary file and records
// the byte offset of each line's start, so the view can read any line
// on demand without holding the whole file in memory (§4.8: "Extract
// the blob to a temp file; compute line offsets").
type lineIndex struct {
	f       *os.File
	offsets []int64
	size    int64
}

func newLineIndex(data []byte) (*lineIndex, error) {
	f, err := os.CreateTemp("", "gotview-blame-*")
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}

	var offsets []int64
	var pos int64
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		offsets = append(offsets, pos)
		pos += int64(len(scanner.Bytes())) + 1
	}
	if len(offsets) == 0 {
		offsets = append(offsets, 0)
	}

	return &lineIndex{f: f, offsets: offsets, size: int64(len(data))}, nil
}

func (li *lineIndex) lineCount() int { return len(li.offsets) }

// line reads line i (0-indexed) from the temp file.
func (li *lineIndex) line(i int) (string, error) {
	if i < 0 || i >= len(li.offsets) {
		return "", nil
	}
	start := li.offsets[i]
	end := li.size
	if i+1 < len(li.offsets) {
		end = li.offsets[i+1] - 1
	}
	if end < start {
		end = start
	}
	buf := make([]byte, end-start)
	if len(buf) > 0 {
		if _, err := li.f.ReadAt(buf, start); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

func (li *lineIndex) close() error {
	name := li.f.Name()
	err := li.f.Close()
	_ = os.Remove(name)
	return err
}
