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
	"strings"
	"testing"
)

func TestLineSource(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want []string
	}{
		{
			in:   "a\nb\n",
			want: []string{"a\n", "b\n"},
		},
		{
			in:   "a\r\nb\n",
			want: []string{"a\n", "b\n"},
		},
		{
			in:   "last line",
			want: []string{"last line"},
		},
		{
			in:   "",
			want: nil,
		},
	} {
		ls := newLineSource(strings.NewReader(tc.in))
		var got []string
		var linenos []int
		for {
			lineno, line, ok := ls.readLine()
			if !ok {
				break
			}
			got = append(got, line)
			linenos = append(linenos, lineno)
		}
		if len(got) != len(tc.want) {
			t.Errorf("readLine(%q)=%q; want %q", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("readLine(%q)[%d]=%q; want %q", tc.in, i, got[i], tc.want[i])
			}
			if linenos[i] != i+1 {
				t.Errorf("readLine(%q) lineno[%d]=%d; want %d", tc.in, i, linenos[i], i+1)
			}
		}
	}
}

func TestLogicalLineLoc(t *testing.T) {
	d := newLogicalLine(newLineSource(strings.NewReader("abc\ndef\n")), "test.mk")
	if !d.readNext() {
		t.Fatal("readNext failed")
	}
	if !d.readNext() {
		t.Fatal("second readNext failed")
	}
	// buffer is "abc\ndef\n" with anchors at 0 (line 1) and 4 (line 2)
	for _, tc := range []struct {
		offset int
		want   SrcPos
	}{
		{offset: 0, want: SrcPos{"test.mk", 1, 0}},
		{offset: 2, want: SrcPos{"test.mk", 1, 2}},
		{offset: 3, want: SrcPos{"test.mk", 1, 3}},
		{offset: 4, want: SrcPos{"test.mk", 2, 0}},
		{offset: 6, want: SrcPos{"test.mk", 2, 2}},
		{offset: -1, want: SrcPos{"test.mk", 1, 0}},
		{offset: 100, want: SrcPos{"test.mk", 2, 3}},
	} {
		if got := d.loc(tc.offset); got != tc.want {
			t.Errorf("loc(%d)=%v; want %v", tc.offset, got, tc.want)
		}
	}
}

func TestLogicalLineLocEmpty(t *testing.T) {
	d := newLogicalLine(newLineSource(strings.NewReader("")), "test.mk")
	want := SrcPos{Filename: "test.mk", Lineno: 1, Col: 0}
	if got := d.loc(0); got != want {
		t.Errorf("loc(0) on empty line=%v; want %v", got, want)
	}
}

func TestLocAdvanceAcrossNewline(t *testing.T) {
	d := logicalLineFromString("a\nbcd", SrcPos{Filename: "test.mk", Lineno: 5})
	want := SrcPos{Filename: "test.mk", Lineno: 6, Col: 2}
	if got := d.loc(4); got != want {
		t.Errorf("loc(4)=%v; want %v", got, want)
	}
}

func TestSkipWhitespace(t *testing.T) {
	d := logicalLineFromString("  \t x", SrcPos{Filename: "test.mk", Lineno: 1})
	if got := d.skipWhitespace(0); got != 4 {
		t.Errorf("skipWhitespace(0)=%d; want 4", got)
	}
	if got := d.skipWhitespace(4); got != 4 {
		t.Errorf("skipWhitespace(4)=%d; want 4", got)
	}
}

func TestFindToken(t *testing.T) {
	pos := SrcPos{Filename: "test.mk", Lineno: 1}
	for _, tc := range []struct {
		in        string
		skipWS    bool
		wantTok   string
		wantOff   int
	}{
		{in: "include foo\n", skipWS: true, wantTok: "include", wantOff: 8},
		{in: "includex foo\n", skipWS: true, wantTok: "", wantOff: 0},
		{in: "include\n", skipWS: true, wantTok: "include", wantOff: 8},
		{in: "include", skipWS: true, wantTok: "include", wantOff: 7},
		{in: "else\n", skipWS: true, wantTok: "else", wantOff: 5},
	} {
		d := logicalLineFromString(tc.in, pos)
		tok, off := d.findToken(0, directivesTokenList(), tc.skipWS)
		if tok != tc.wantTok || off != tc.wantOff {
			t.Errorf("findToken(%q)=%q, %d; want %q, %d", tc.in, tok, off, tc.wantTok, tc.wantOff)
		}
	}

	d := logicalLineFromString("'a' 'b'", pos)
	tok, off := d.findToken(0, eqArgsTokenList(), false)
	if tok != "'" || off != 1 {
		t.Errorf("findToken bare=%q, %d; want %q, 1", tok, off, "'")
	}
}
