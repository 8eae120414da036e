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
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var varSetTokens = []string{":=", "+=", "?=", "="}

func isVarSetToken(tok string) bool {
	switch tok {
	case ":=", "+=", "?=", "=":
		return true
	}
	return false
}

func directivesTokenList() *tokenList {
	return getTokenList("ifeq", "ifneq", "ifdef", "ifndef",
		"else", "endif", "define", "endef", "override",
		"include", "-include", "sinclude", "vpath", "export", "unexport")
}

func conditionKeywordsTokenList() *tokenList {
	return getTokenList("ifeq", "ifneq", "ifdef", "ifndef")
}

func eqArgsTokenList() *tokenList {
	return getTokenList("(", "'", `"`)
}

type parser struct {
	src       *lineSource
	filename  string
	toplevel  StatementList
	condStack []*CondBlockStmt
	curRule   bool
}

func newParser(rd io.Reader, filename string) *parser {
	return &parser{
		src:      newLineSource(rd),
		filename: filename,
	}
}

func (p *parser) appendStmt(s Statement) {
	if n := len(p.condStack); n > 0 {
		p.condStack[n-1].appendStmt(s)
		return
	}
	p.toplevel = append(p.toplevel, s)
}

func (p *parser) parse() (StatementList, error) {
	for {
		d := newLogicalLine(p.src, p.filename)
		if !d.readNext() {
			if p.src.err != nil {
				return nil, errors.Wrapf(p.src.err, "reading %s", p.filename)
			}
			break
		}
		if err := p.parseLine(d); err != nil {
			return nil, err
		}
	}
	if n := len(p.condStack); n > 0 {
		return nil, p.condStack[n-1].Pos().errorf("Condition never terminated with endif")
	}
	return p.toplevel, nil
}

func (p *parser) parseLine(d *logicalLine) error {
	if glog.V(2) {
		glog.Infof("%s: %q", d.loc(0), d.data)
	}
	if len(d.data) > 0 && d.data[0] == '\t' && p.curRule {
		e, _, _, err := parseMakeSyntax(d, 1, nil, iterCommand)
		if err != nil {
			return err
		}
		p.appendStmt(&CommandStmt{stmtBase{d.loc(0)}, e})
		return nil
	}

	// Strip leading whitespace and look for an initial keyword. Without
	// one, the line is either setting a variable or writing a rule.
	offset := d.skipWhitespace(0)
	kword, offset := d.findToken(offset, directivesTokenList(), true)
	switch kword {
	case "endif":
		if err := ensureEnd(d, offset, "Unexpected data after 'endif' directive"); err != nil {
			return err
		}
		if len(p.condStack) == 0 {
			return d.loc(offset).errorf("unmatched 'endif' directive")
		}
		p.condStack = p.condStack[:len(p.condStack)-1]
		return nil

	case "else":
		if len(p.condStack) == 0 {
			return d.loc(offset).errorf("unmatched 'else' directive")
		}
		top := p.condStack[len(p.condStack)-1]
		kword, offset = d.findToken(offset, conditionKeywordsTokenList(), true)
		if kword == "" {
			if err := ensureEnd(d, offset, "Unexpected data after 'else' directive."); err != nil {
				return err
			}
			top.addArm(&ElseCond{condBase{d.loc(offset)}})
			return nil
		}
		c, err := p.parseCondition(kword, d, offset)
		if err != nil {
			return err
		}
		top.addArm(c)
		return nil

	case "ifeq", "ifneq", "ifdef", "ifndef":
		c, err := p.parseCondition(kword, d, offset)
		if err != nil {
			return err
		}
		cb := &CondBlockStmt{stmtBase: stmtBase{d.loc(0)}}
		cb.addArm(c)
		p.appendStmt(cb)
		p.condStack = append(p.condStack, cb)
		return nil

	case "endef":
		return d.loc(offset).errorf("Unmatched endef")

	case "define":
		p.curRule = false
		vname, _, _, err := parseMakeSyntax(d, offset, nil, iterMakefile)
		if err != nil {
			return err
		}
		body := newLogicalLine(p.src, p.filename)
		body.readNext()
		value, err := flatten(iterDefine, body, 0)
		if err != nil {
			return err
		}
		p.appendStmt(&AssignStmt{
			stmtBase: stmtBase{vname.Loc},
			Name:     vname,
			Value:    value,
			ValuePos: body.loc(0),
			Op:       "=",
		})
		return nil

	case "include", "-include", "sinclude":
		p.curRule = false
		e, _, _, err := parseMakeSyntax(d, offset, nil, iterMakefile)
		if err != nil {
			return err
		}
		p.appendStmt(&IncludeStmt{stmtBase{e.Loc}, e, kword == "include"})
		return nil

	case "vpath":
		p.curRule = false
		e, _, _, err := parseMakeSyntax(d, offset, nil, iterMakefile)
		if err != nil {
			return err
		}
		p.appendStmt(&VpathStmt{stmtBase{e.Loc}, e})
		return nil

	case "override":
		p.curRule = false
		vname, token, offset, err := parseMakeSyntax(d, offset, varSetTokens, iterMakefile)
		if err != nil {
			return err
		}
		vname.lstrip()
		vname.rstrip()
		if token == "" {
			return d.loc(offset).errorf("Malformed override directive, need =")
		}
		value, err := flatten(iterMakefile, d, offset)
		if err != nil {
			return err
		}
		p.appendStmt(&AssignStmt{
			stmtBase: stmtBase{vname.Loc},
			Name:     vname,
			Value:    trimLeftSpace(value),
			ValuePos: d.loc(offset),
			Op:       token,
			Source:   SourceOverride,
		})
		return nil

	case "export":
		p.curRule = false
		e, token, offset, err := parseMakeSyntax(d, offset, varSetTokens, iterMakefile)
		if err != nil {
			return err
		}
		e.lstrip()
		e.rstrip()
		if token == "" {
			p.appendStmt(&ExportStmt{stmtBase{e.Loc}, e, false})
			return nil
		}
		p.appendStmt(&ExportStmt{stmtBase{e.Loc}, e, true})
		value, err := flatten(iterMakefile, d, offset)
		if err != nil {
			return err
		}
		p.appendStmt(&AssignStmt{
			stmtBase: stmtBase{e.Loc},
			Name:     e,
			Value:    trimLeftSpace(value),
			ValuePos: d.loc(offset),
			Op:       token,
		})
		return nil

	case "unexport":
		return d.loc(offset).errorf("unexporting variables is not supported")
	}

	return p.parseRuleOrAssign(d, offset)
}

func (p *parser) parseRuleOrAssign(d *logicalLine, offset int) error {
	stop := append(append([]string{}, varSetTokens...), "::", ":")
	e, token, offset, err := parseMakeSyntax(d, offset, stop, iterMakefile)
	if err != nil {
		return err
	}
	if token == "" {
		p.appendStmt(&ExpansionStmt{stmtBase{e.Loc}, e})
		return nil
	}

	// Real makefile syntax: whatever rule was open is over now.
	p.curRule = false

	if isVarSetToken(token) {
		return p.appendAssign(d, e, token, offset, nil)
	}

	doubleColon := token == "::"
	targets := e

	// Targets can still become a plain rule, a static pattern rule, or a
	// target-specific variable; order-only prerequisites would follow '|'.
	stop = append(append([]string{}, varSetTokens...), ":", "|", ";")
	e, token, offset, err = parseMakeSyntax(d, offset, stop, iterMakefile)
	if err != nil {
		return err
	}
	switch {
	case token == "" || token == ";":
		p.appendStmt(&RuleStmt{stmtBase{targets.Loc}, targets, e, doubleColon})
		p.curRule = true
		if token == ";" {
			return p.appendSemiCommand(d, offset)
		}
		return nil

	case isVarSetToken(token):
		return p.appendAssign(d, e, token, offset, targets)

	case token == "|":
		return d.loc(offset).errorf("order-only prerequisites not implemented")

	default: // ":" — static pattern rule
		pattern := e
		deps, token, offset, err := parseMakeSyntax(d, offset, []string{";"}, iterMakefile)
		if err != nil {
			return err
		}
		p.appendStmt(&StaticPatternRuleStmt{stmtBase{targets.Loc}, targets, pattern, deps, doubleColon})
		p.curRule = true
		if token == ";" {
			return p.appendSemiCommand(d, offset)
		}
		return nil
	}
}

func (p *parser) appendAssign(d *logicalLine, name *Expansion, op string, offset int, targets *Expansion) error {
	name.lstrip()
	name.rstrip()
	value, err := flatten(iterMakefile, d, offset)
	if err != nil {
		return err
	}
	p.appendStmt(&AssignStmt{
		stmtBase: stmtBase{name.Loc},
		Name:     name,
		Value:    trimLeftSpace(value),
		ValuePos: d.loc(offset),
		Op:       op,
		Targets:  targets,
	})
	return nil
}

func (p *parser) appendSemiCommand(d *logicalLine, offset int) error {
	offset = d.skipWhitespace(offset)
	e, _, _, err := parseMakeSyntax(d, offset, nil, iterCommand)
	if err != nil {
		return err
	}
	p.appendStmt(&CommandStmt{stmtBase{e.Loc}, e})
	return nil
}

// parseCondition parses the argument of an ifeq/ifneq/ifdef/ifndef
// directive starting at offset.
func (p *parser) parseCondition(kword string, d *logicalLine, offset int) (Condition, error) {
	pos := d.loc(offset)
	switch kword {
	case "ifdef", "ifndef":
		e, _, _, err := parseMakeSyntax(d, offset, nil, iterMakefile)
		if err != nil {
			return nil, err
		}
		e.rstrip()
		return &IfdefCond{condBase{pos}, e, kword == "ifdef"}, nil
	}

	// ifeq/ifneq accept (A,B), 'A' 'B' and "A" "B"; the quotes around the
	// two arguments may differ.
	token, offset := d.findToken(offset, eqArgsTokenList(), false)
	if token == "" {
		return nil, d.loc(offset).errorf("No arguments after conditional")
	}

	var lhs, rhs *Expansion
	if token == "(" {
		arg1, t, off, err := parseMakeSyntax(d, offset, []string{","}, iterMakefile)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return nil, d.loc(off).errorf("Expected two arguments in conditional")
		}
		arg1.rstrip()
		off = d.skipWhitespace(off)
		arg2, t, off, err := parseMakeSyntax(d, off, []string{")"}, iterMakefile)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return nil, d.loc(off).errorf("Unexpected text in conditional")
		}
		if err := ensureEnd(d, off, "Unexpected text after conditional"); err != nil {
			return nil, err
		}
		lhs, rhs = arg1, arg2
	} else {
		arg1, t, off, err := parseMakeSyntax(d, offset, []string{token}, iterMakefile)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return nil, d.loc(off).errorf("Unexpected text in conditional")
		}
		off = d.skipWhitespace(off)
		if off == len(d.data) {
			return nil, d.loc(off).errorf("Expected two arguments in conditional")
		}
		quote := d.data[off]
		if quote != '\'' && quote != '"' {
			return nil, d.loc(off).errorf("Unexpected text in conditional")
		}
		arg2, t, off, err := parseMakeSyntax(d, off+1, []string{string(quote)}, iterMakefile)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return nil, d.loc(off).errorf("Unexpected text in conditional")
		}
		if err := ensureEnd(d, off, "Unexpected text after conditional"); err != nil {
			return nil, err
		}
		lhs, rhs = arg1, arg2
	}
	return &EqCond{condBase{pos}, lhs, rhs, kword == "ifeq"}, nil
}

// Parse parses a makefile from rd into a statement tree.
func Parse(rd io.Reader, filename string) (StatementList, error) {
	return newParser(rd, filename).parse()
}

// ParseString parses makefile text that is already in memory, numbering
// lines from pos. It is used to re-parse expanded text such as computed
// include lines or $(eval ...) bodies.
func ParseString(s string, pos SrcPos) (StatementList, error) {
	p := newParser(strings.NewReader(s), pos.Filename)
	p.src.lineno = pos.Lineno - 1
	return p.parse()
}

// ParseExpansion parses a fragment of already-flattened text into an
// Expansion, using the raw regime: comments and continuations have been
// dealt with already.
func ParseExpansion(s string, pos SrcPos) (*Expansion, error) {
	d := logicalLineFromString(s, pos)
	e, _, _, err := parseMakeSyntax(d, 0, nil, iterData)
	return e, err
}

type parseCacheEntry struct {
	mtime time.Time
	stmts StatementList
}

var parseCache = struct {
	sync.Mutex
	m map[string]parseCacheEntry
}{m: make(map[string]parseCacheEntry)}

// ParseFile parses the makefile at path, consulting a process-wide cache
// keyed by the canonical path. A cache entry is reused only when the file's
// modification time is exactly the cached one.
func ParseFile(path string) (StatementList, error) {
	pathname, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	pathname, err = filepath.Abs(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	fi, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", pathname)
	}
	mtime := fi.ModTime()

	parseCache.Lock()
	c, present := parseCache.m[pathname]
	parseCache.Unlock()
	if present && c.mtime.Equal(mtime) {
		glog.V(1).Infof("makefile cache hit for %q", pathname)
		return c.stmts, nil
	}

	f, err := os.Open(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", pathname)
	}
	defer f.Close()
	stmts, err := Parse(f, pathname)
	if err != nil {
		return nil, err
	}
	parseCache.Lock()
	parseCache.m[pathname] = parseCacheEntry{mtime: mtime, stmts: stmts}
	parseCache.Unlock()
	return stmts, nil
}
