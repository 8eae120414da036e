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
	"fmt"
	"strings"
)

// Statement is one parsed makefile statement.
type Statement interface {
	Pos() SrcPos
	dump(d *dumper)
}

// StatementList is an ordered sequence of statements.
type StatementList []Statement

// Dump renders the statement tree in makefile-like syntax, mainly for
// debugging and tests.
func (sl StatementList) Dump() string {
	var d dumper
	sl.dump(&d)
	return d.buf.String()
}

func (sl StatementList) dump(d *dumper) {
	for _, s := range sl {
		s.dump(d)
	}
}

type dumper struct {
	buf    buffer
	indent string
}

func (d *dumper) printf(f string, args ...interface{}) {
	d.buf.WriteString(d.indent)
	fmt.Fprintf(&d.buf, f, args...)
	d.buf.WriteByte('\n')
}

type stmtBase struct {
	pos SrcPos
}

func (s stmtBase) Pos() SrcPos { return s.pos }

// AssignSource records which directive introduced a variable assignment.
type AssignSource int

const (
	SourceFile AssignSource = iota
	SourceOverride
)

// AssignStmt sets a variable: NAME op VALUE, targets: NAME op VALUE, or a
// define block. The value is kept flat and unexpanded; it is parsed into an
// Expansion at evaluation time depending on the operator.
type AssignStmt struct {
	stmtBase
	Name     *Expansion
	Value    string
	ValuePos SrcPos
	Op       string // "=", ":=", "?=" or "+="
	Targets  *Expansion
	Source   AssignSource
}

func (s *AssignStmt) dump(d *dumper) {
	var prefix string
	if s.Source == SourceOverride {
		prefix = "override "
	}
	if s.Targets != nil {
		d.printf("%s%s: %s %s %q", prefix, s.Targets, s.Name, s.Op, s.Value)
		return
	}
	if strings.Contains(s.Value, "\n") {
		d.printf("%sdefine %s", prefix, s.Name)
		d.buf.WriteString(s.Value)
		d.printf("endef")
		return
	}
	d.printf("%s%s %s %q", prefix, s.Name, s.Op, s.Value)
}

// RuleStmt is an explicit rule: targets and prerequisites, both still
// unexpanded.
type RuleStmt struct {
	stmtBase
	Targets     *Expansion
	Prereqs     *Expansion
	DoubleColon bool
}

func (s *RuleStmt) colon() string {
	if s.DoubleColon {
		return "::"
	}
	return ":"
}

func (s *RuleStmt) dump(d *dumper) {
	d.printf("%s%s%s", s.Targets, s.colon(), s.Prereqs)
}

// StaticPatternRuleStmt is targets: pattern: prereqs.
type StaticPatternRuleStmt struct {
	stmtBase
	Targets     *Expansion
	Pattern     *Expansion
	Prereqs     *Expansion
	DoubleColon bool
}

func (s *StaticPatternRuleStmt) dump(d *dumper) {
	colon := ":"
	if s.DoubleColon {
		colon = "::"
	}
	d.printf("%s%s%s:%s", s.Targets, colon, s.Pattern, s.Prereqs)
}

// CommandStmt is one recipe line attached to the preceding rule.
type CommandStmt struct {
	stmtBase
	Cmd *Expansion
}

func (s *CommandStmt) dump(d *dumper) {
	d.printf("\t%s", s.Cmd)
}

// IncludeStmt is an include or -include directive. Required is false for
// -include and sinclude.
type IncludeStmt struct {
	stmtBase
	Expr     *Expansion
	Required bool
}

func (s *IncludeStmt) dump(d *dumper) {
	op := "include"
	if !s.Required {
		op = "-include"
	}
	d.printf("%s %s", op, s.Expr)
}

// VpathStmt is a vpath directive, unexpanded.
type VpathStmt struct {
	stmtBase
	Expr *Expansion
}

func (s *VpathStmt) dump(d *dumper) {
	d.printf("vpath %s", s.Expr)
}

// ExportStmt exports variables. Single is true for `export NAME = value`,
// where the statement is followed by the matching AssignStmt.
type ExportStmt struct {
	stmtBase
	Expr   *Expansion
	Single bool
}

func (s *ExportStmt) dump(d *dumper) {
	d.printf("export %s", s.Expr)
}

// ExpansionStmt is a line holding a bare expansion with no operator; it may
// turn into anything once expanded (typically an $(eval ...) or an empty
// line).
type ExpansionStmt struct {
	stmtBase
	Expr *Expansion
}

func (s *ExpansionStmt) dump(d *dumper) {
	d.printf("%s", s.Expr)
}

// Condition is the head of one arm of a conditional block.
type Condition interface {
	Pos() SrcPos
	String() string
}

type condBase struct {
	pos SrcPos
}

func (c condBase) Pos() SrcPos { return c.pos }

// EqCond is ifeq/ifneq.
type EqCond struct {
	condBase
	Lhs      *Expansion
	Rhs      *Expansion
	Expected bool
}

func (c *EqCond) String() string {
	op := "ifeq"
	if !c.Expected {
		op = "ifneq"
	}
	return fmt.Sprintf("%s (%s,%s)", op, c.Lhs, c.Rhs)
}

// IfdefCond is ifdef/ifndef.
type IfdefCond struct {
	condBase
	Name     *Expansion
	Expected bool
}

func (c *IfdefCond) String() string {
	op := "ifdef"
	if !c.Expected {
		op = "ifndef"
	}
	return fmt.Sprintf("%s %s", op, c.Name)
}

// ElseCond is a bare else arm.
type ElseCond struct {
	condBase
}

func (c *ElseCond) String() string { return "else" }

// CondArm is one (condition, body) pair of a conditional block.
type CondArm struct {
	Cond  Condition
	Stmts StatementList
}

// CondBlockStmt is an ifeq/ifdef block with its else arms. It always has at
// least one arm: the introducing condition.
type CondBlockStmt struct {
	stmtBase
	Arms []*CondArm
}

func (s *CondBlockStmt) addArm(c Condition) {
	s.Arms = append(s.Arms, &CondArm{Cond: c})
}

func (s *CondBlockStmt) appendStmt(stmt Statement) {
	arm := s.Arms[len(s.Arms)-1]
	arm.Stmts = append(arm.Stmts, stmt)
}

func (s *CondBlockStmt) dump(d *dumper) {
	for i, arm := range s.Arms {
		switch {
		case i == 0:
			d.printf("%s", arm.Cond)
		case arm.Cond.String() == "else":
			d.printf("else")
		default:
			d.printf("else %s", arm.Cond)
		}
		saved := d.indent
		d.indent += "  "
		arm.Stmts.dump(d)
		d.indent = saved
	}
	d.printf("endif")
}
