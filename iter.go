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

import "strings"

// iterKind selects the continuation/comment/escape regime used to walk a
// logical line.
type iterKind int

const (
	iterData     iterKind = iota // literal tokens only
	iterMakefile                 // makefile line semantics
	iterCommand                  // recipe body semantics
	iterDefine                   // define ... endef body
)

// iterStep is one unit of iterator output. chunk contains no tokens and may
// be empty. token is "" when no token was found, meaning more text may still
// arrive through readNext.
type iterStep struct {
	chunk    string
	token    string
	tokenOff int
	after    int
}

// charIter streams iterSteps from a logical line under one regime. The
// iterator holds the line by reference: regimes that cross physical lines
// pull more input into the same buffer mid-iteration.
type charIter struct {
	d    *logicalLine
	off  int
	tl   *tokenList
	kind iterKind
	done bool
	err  error

	defineCount int
	defineStart int
}

func newCharIter(kind iterKind, d *logicalLine, offset int, tl *tokenList) *charIter {
	it := &charIter{d: d, off: offset, tl: tl, kind: kind}
	if kind == iterDefine {
		it.defineStart = offset
		it.defineCount = 1 + it.checkDefineToken(offset)
		if it.defineCount == 0 {
			it.done = true
		}
	}
	return it
}

func (it *charIter) next() (iterStep, bool) {
	if it.done {
		return iterStep{}, false
	}
	switch it.kind {
	case iterData:
		return it.nextData()
	case iterMakefile:
		return it.nextMakefile()
	case iterCommand:
		return it.nextCommand()
	default:
		return it.nextDefine()
	}
}

func noToken(chunk string) iterStep {
	return iterStep{chunk: chunk, tokenOff: -1, after: -1}
}

func (it *charIter) nextData() (iterStep, bool) {
	d := it.d
	if it.tl.empty {
		it.done = true
		return noToken(d.data[it.off:]), true
	}
	if it.off >= len(d.data) {
		it.done = true
		return iterStep{}, false
	}
	m := it.tl.simple.FindStringIndex(d.data[it.off:])
	if m == nil {
		it.done = true
		return noToken(d.data[it.off:]), true
	}
	start, end := it.off+m[0], it.off+m[1]
	st := iterStep{
		chunk:    d.data[it.off:start],
		token:    d.data[start:end],
		tokenOff: start,
		after:    end,
	}
	it.off = end
	return st, true
}

func (it *charIter) nextMakefile() (iterStep, bool) {
	d := it.d
	if it.off >= len(d.data) {
		it.done = true
		return iterStep{}, false
	}
	m := it.tl.makefile.FindStringIndex(d.data[it.off:])
	if m == nil {
		it.done = true
		return noToken(d.data[it.off:]), true
	}
	start, end := it.off+m[0], it.off+m[1]
	tok := d.data[start:end]
	switch {
	case tok == "\n":
		it.done = true
		return noToken(d.data[it.off:start]), true
	case tok == "#":
		st := noToken(d.data[it.off:start])
		it.drainComment(end)
		it.done = true
		return st, true
	case tok == `\\#`:
		// The backslash pair collapses to one; the rest is a comment.
		st := noToken(d.data[it.off : start+1])
		it.drainComment(end)
		it.done = true
		return st, true
	case tok == "\\\n":
		st := noToken(trimRightSpace(d.data[it.off:start]) + " ")
		d.readNext()
		it.off = d.skipWhitespace(end)
		return st, true
	case strings.HasPrefix(tok, "\\") && strings.HasSuffix(tok, "\n"):
		// backslash, whitespace, continuation
		st := noToken(d.data[it.off:start] + `\ `)
		d.readNext()
		it.off = d.skipWhitespace(end)
		return st, true
	case tok == `\#`:
		st := noToken(d.data[it.off:start] + "#")
		it.off = end
		return st, true
	case tok[0] == '\\' && len(tok) > 1:
		if it.tl.tokenSet[tok[1:]] {
			st := iterStep{
				chunk:    d.data[it.off : start+1],
				token:    tok[1:],
				tokenOff: start + 1,
				after:    end,
			}
			it.off = end
			return st, true
		}
		st := noToken(d.data[it.off:end])
		it.off = end
		return st, true
	default:
		st := iterStep{
			chunk:    d.data[it.off:start],
			token:    tok,
			tokenOff: start,
			after:    end,
		}
		it.off = end
		return st, true
	}
}

// drainComment consumes the rest of the logical line after a comment
// character, still honoring continuations so a backslash-newline extends
// the comment onto the next physical line.
func (it *charIter) drainComment(offset int) {
	sub := newCharIter(iterMakefile, it.d, offset, emptyTokenList())
	for {
		if _, ok := sub.next(); !ok {
			break
		}
	}
}

func (it *charIter) nextCommand() (iterStep, bool) {
	d := it.d
	if it.off >= len(d.data) {
		it.done = true
		return iterStep{}, false
	}
	m := it.tl.continuation.FindStringIndex(d.data[it.off:])
	if m == nil {
		it.done = true
		return noToken(d.data[it.off:]), true
	}
	start, end := it.off+m[0], it.off+m[1]
	tok := d.data[start:end]
	switch {
	case tok == "\n":
		it.done = true
		return noToken(d.data[it.off:start]), true
	case tok == "\\\n":
		// Keep the backslash and newline: they are part of the command.
		st := noToken(d.data[it.off:end])
		d.readNext()
		it.off = end
		if it.off < len(d.data) && d.data[it.off] == '\t' {
			it.off++
		}
		return st, true
	case tok[0] == '\\' && len(tok) > 1:
		if it.tl.tokenSet[tok[1:]] {
			st := iterStep{
				chunk:    d.data[it.off : start+1],
				token:    tok[1:],
				tokenOff: start + 1,
				after:    end,
			}
			it.off = end
			return st, true
		}
		st := noToken(d.data[it.off:end])
		it.off = end
		return st, true
	default:
		st := iterStep{
			chunk:    d.data[it.off:start],
			token:    tok,
			tokenOff: start,
			after:    end,
		}
		it.off = end
		return st, true
	}
}

// checkDefineToken reports the nesting direction of the physical line
// starting at offset o: +1 for define, -1 for endef, 0 otherwise. Lines
// starting with a tab are recipe text and never nest.
func (it *charIter) checkDefineToken(o int) int {
	d := it.d
	if o >= len(d.data) {
		return 0
	}
	if d.data[o] == '\t' {
		return 0
	}
	o = d.skipWhitespace(o)
	token, _ := d.findToken(o, getTokenList("define", "endef"), true)
	switch token {
	case "define":
		return 1
	case "endef":
		return -1
	}
	return 0
}

func (it *charIter) nextDefine() (iterStep, bool) {
	d := it.d
	if it.off >= len(d.data) {
		it.done = true
		it.err = d.loc(it.defineStart).errorf("Unterminated define")
		return iterStep{}, false
	}
	m := it.tl.continuation.FindStringIndex(d.data[it.off:])
	if m == nil {
		st := noToken(d.data[it.off:])
		it.off = len(d.data)
		return st, true
	}
	start, end := it.off+m[0], it.off+m[1]
	tok := d.data[start:end]
	switch {
	case tok == "\\\n":
		st := noToken(trimRightSpace(d.data[it.off:start]) + " ")
		d.readNext()
		it.off = d.skipWhitespace(end)
		return st, true
	case tok == "\n":
		d.readNext()
		it.defineCount += it.checkDefineToken(end)
		if it.defineCount == 0 {
			// The body runs up to the start of the endef line.
			it.done = true
			return noToken(d.data[it.off:end]), true
		}
		st := noToken(d.data[it.off:end])
		it.off = end
		return st, true
	case tok[0] == '\\' && len(tok) > 1:
		if it.tl.tokenSet[tok[1:]] {
			st := iterStep{
				chunk:    d.data[it.off : start+1],
				token:    tok[1:],
				tokenOff: start + 1,
				after:    end,
			}
			it.off = end
			return st, true
		}
		st := noToken(d.data[it.off:end])
		it.off = end
		return st, true
	default:
		st := iterStep{
			chunk:    d.data[it.off:start],
			token:    tok,
			tokenOff: start,
			after:    end,
		}
		it.off = end
		return st, true
	}
}

// flatten drives an iterator over the line with no literal tokens and joins
// every chunk it yields.
func flatten(kind iterKind, d *logicalLine, offset int) (string, error) {
	it := newCharIter(kind, d, offset, emptyTokenList())
	var b buffer
	for {
		st, ok := it.next()
		if !ok {
			break
		}
		b.WriteString(st.chunk)
	}
	if it.err != nil {
		return "", it.err
	}
	return b.String(), nil
}

// ensureEnd verifies that only whitespace, optionally followed by a comment,
// remains on the logical line.
func ensureEnd(d *logicalLine, offset int, msg string) error {
	it := newCharIter(iterMakefile, d, offset, emptyTokenList())
	for {
		st, ok := it.next()
		if !ok {
			break
		}
		if st.chunk != "" && !isAllSpace(st.chunk) {
			return d.loc(len(d.data) - 1).errorf("%s", msg)
		}
	}
	return nil
}
