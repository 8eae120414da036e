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

import "fmt"

// SrcPos is a position in a makefile. Lineno is 1-based, Col is a 0-based
// byte column.
type SrcPos struct {
	Filename string
	Lineno   int
	Col      int
}

func (p SrcPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Lineno)
}

// advance returns p moved past s, re-numbering lines on embedded newlines.
func (p SrcPos) advance(s string) SrcPos {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			p.Lineno++
			p.Col = 0
		} else {
			p.Col++
		}
	}
	return p
}

// ParseError is a makefile syntax error with its source position.
type ParseError struct {
	Filename string
	Lineno   int
	Col      int
	Err      error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Filename, e.Lineno, e.Err)
}

func (e ParseError) Unwrap() error { return e.Err }

func (p SrcPos) errorf(f string, args ...interface{}) error {
	return ParseError{
		Filename: p.Filename,
		Lineno:   p.Lineno,
		Col:      p.Col,
		Err:      fmt.Errorf(f, args...),
	}
}
