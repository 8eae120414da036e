// Copyright 2016 The makeparse Authors. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package makeparse

import (
	"bufio"
	"io"
	"strings"

	"github.com/golang/glog"
)

// lineSource yields physical lines with 1-based line numbers. A line ending
// in CRLF is rewritten to end in LF before it is returned.
type lineSource struct {
	rd     *bufio.Reader
	lineno int
	err    error
	done   bool
}

func newLineSource(rd io.Reader) *lineSource {
	return &lineSource{rd: bufio.NewReader(rd)}
}

// readLine returns the next physical line including its trailing LF.
// It returns ok=false at end of input or on a read error; the error is
// left in ls.err.
func (ls *lineSource) readLine() (int, string, bool) {
	if ls.done {
		return 0, "", false
	}
	line, err := ls.rd.ReadString('\n')
	if err == io.EOF {
		ls.done = true
		if line == "" {
			return 0, "", false
		}
	} else if err != nil {
		ls.done = true
		ls.err = err
		return 0, "", false
	}
	ls.lineno++
	if strings.HasSuffix(line, "\r\n") {
		line = line[:len(line)-2] + "\n"
	}
	glog.V(4).Infof("line %d: %q", ls.lineno, line)
	return ls.lineno, line, true
}

type anchor struct {
	off int
	pos SrcPos
}

// logicalLine is a single virtual line: one or more physical lines joined by
// continuations. Joins happen on demand while iterators walk the buffer.
type logicalLine struct {
	data string
	locs []anchor
	path string
	src  *lineSource
}

func newLogicalLine(src *lineSource, path string) *logicalLine {
	return &logicalLine{path: path, src: src}
}

// logicalLineFromString makes a fixed logical line for re-parsing text that
// is already in memory, e.g. an expanded include line.
func logicalLineFromString(s string, pos SrcPos) *logicalLine {
	d := &logicalLine{path: pos.Filename}
	d.append(s, pos)
	return d
}

func (d *logicalLine) append(s string, pos SrcPos) {
	d.locs = append(d.locs, anchor{off: len(d.data), pos: pos})
	d.data += s
}

// readNext pulls one more physical line into the buffer. It returns false
// when the source is exhausted or the line is not backed by a stream.
func (d *logicalLine) readNext() bool {
	if d.src == nil {
		return false
	}
	lineno, line, ok := d.src.readLine()
	if !ok {
		return false
	}
	d.append(line, SrcPos{Filename: d.path, Lineno: lineno, Col: 0})
	return true
}

// loc resolves the source position of a byte offset. Offsets past the end
// clamp to the last byte; negative offsets clamp to the start.
func (d *logicalLine) loc(offset int) SrcPos {
	if len(d.locs) == 0 {
		return SrcPos{Filename: d.path, Lineno: 1, Col: 0}
	}
	if offset >= len(d.data) {
		offset = len(d.data) - 1
	}
	if offset < 0 {
		offset = 0
	}
	a := d.locs[0]
	for _, cand := range d.locs[1:] {
		if cand.off > offset {
			break
		}
		a = cand
	}
	return a.pos.advance(d.data[a.off:offset])
}

func (d *logicalLine) skipWhitespace(offset int) int {
	for offset < len(d.data) && isWhitespace(d.data[offset]) {
		offset++
	}
	return offset
}

// findToken checks the buffer at offset for any token of tl. With skipWS,
// the token must be followed by whitespace or end-of-data and the returned
// offset is past that whitespace; otherwise the token is matched bare.
// When nothing matches it returns "" and the offset unchanged.
func (d *logicalLine) findToken(offset int, tl *tokenList, skipWS bool) (string, int) {
	if skipWS {
		if m := tl.ws.FindStringSubmatchIndex(d.data[offset:]); m != nil {
			return d.data[offset+m[2] : offset+m[3]], offset + m[1]
		}
		return "", offset
	}
	if m := tl.simpleAnchored.FindStringIndex(d.data[offset:]); m != nil {
		return d.data[offset : offset+m[1]], offset + m[1]
	}
	return "", offset
}
