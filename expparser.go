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

import "github.com/golang/glog"

type parseState int

const (
	stateTopLevel parseState = iota
	stateFunction             // collecting a function call's arguments
	stateVarName              // inside $(NAME...
	stateSubstFrom            // after the ':' of $(NAME:...
	stateSubstTo              // after the '=' of $(NAME:from=...
	stateParenMatch           // balancing a bare brace inside an expansion
)

type parseStackFrame struct {
	state      parseState
	expansion  *Expansion
	tl         *tokenList
	openBrace  string
	closeBrace string
	loc        SrcPos

	fn    funcInfo  // stateFunction
	fcall *FuncCall // stateFunction

	varname   *Expansion // stateSubstFrom, stateSubstTo
	substFrom *Expansion // stateSubstTo
}

var matchingBrace = map[string]string{
	"(": ")",
	"{": "}",
}

// parseMakeSyntax parses the logical line from startAt into an Expansion,
// stopping at the top level when any token of stopOn is found. It returns
// the expansion, the stop token, and the offset just past it. When the line
// is consumed without hitting a stop token, the token is "" and the offset
// is len(d.data).
func parseMakeSyntax(d *logicalLine, startAt int, stopOn []string, kind iterKind) (*Expansion, string, int, error) {
	stack := []*parseStackFrame{{
		state:     stateTopLevel,
		expansion: newExpansion(d.loc(startAt)),
		tl:        getTokenList(append(append([]string{}, stopOn...), "$")...),
	}}

	di := newCharIter(kind, d, startAt, stack[0].tl)
	offset := startAt
Loop:
	for {
		st := stack[len(stack)-1]
		step, ok := di.next()
		if !ok {
			if di.err != nil {
				return nil, "", 0, di.err
			}
			break
		}
		st.expansion.appendString(step.chunk)
		if step.token == "" {
			continue
		}
		token := step.token
		offset = step.after

		switch {
		case token == "$":
			if len(d.data) == offset {
				// an unterminated $ expands to nothing
				break Loop
			}
			loc := d.loc(step.tokenOff)
			c := d.data[offset]
			switch {
			case c == '$':
				st.expansion.appendString("$")
				offset++
			case c == '(' || c == '{':
				oparen := string(c)
				cparen := matchingBrace[oparen]
				fname, noff := d.findToken(offset+1, functionTokenList(), true)
				if fname != "" {
					fi := funcMap[fname]
					fcall := &FuncCall{Loc: loc, Name: fname}
					e := newExpansion(d.loc(noff))
					fcall.Args = append(fcall.Args, e)
					var tl *tokenList
					if len(fcall.Args) == fi.maxArgs {
						tl = getTokenList(oparen, cparen, "$")
					} else {
						tl = getTokenList(",", oparen, cparen, "$")
					}
					stack = append(stack, &parseStackFrame{
						state:      stateFunction,
						expansion:  e,
						tl:         tl,
						openBrace:  oparen,
						closeBrace: cparen,
						loc:        loc,
						fn:         fi,
						fcall:      fcall,
					})
					offset = noff
				} else {
					e := newExpansion(d.loc(noff))
					stack = append(stack, &parseStackFrame{
						state:      stateVarName,
						expansion:  e,
						tl:         getTokenList(":", oparen, cparen, "$"),
						openBrace:  oparen,
						closeBrace: cparen,
						loc:        loc,
					})
					offset = noff
				}
			default:
				// single-character variable name
				st.expansion.appendNode(&VarRef{
					Loc:  loc,
					Name: expansionFromString(string(c), loc),
				})
				offset++
			}
		case token == "(" || token == "{":
			// A bare open brace of the surrounding kind: track nesting so
			// the matching close does not end the expansion early.
			st.expansion.appendString(token)
			stack = append(stack, &parseStackFrame{
				state:      stateParenMatch,
				expansion:  st.expansion,
				tl:         getTokenList(token, st.closeBrace),
				openBrace:  token,
				closeBrace: st.closeBrace,
				loc:        d.loc(step.tokenOff),
			})
		case st.state == stateParenMatch:
			st.expansion.appendString(token)
			stack = stack[:len(stack)-1]
		case st.state == stateTopLevel:
			return st.expansion, token, offset, nil
		case st.state == stateFunction:
			if token == "," {
				e := newExpansion(d.loc(offset))
				st.fcall.Args = append(st.fcall.Args, e)
				st.expansion = e
				if len(st.fcall.Args) == st.fn.maxArgs {
					st.tl = getTokenList(st.openBrace, st.closeBrace, "$")
				}
			} else {
				if len(st.fcall.Args) < st.fn.minArgs {
					return nil, "", 0, st.loc.errorf("*** insufficient number of arguments (%d) to function `%s'.",
						len(st.fcall.Args), st.fn.name)
				}
				stack = stack[:len(stack)-1]
				stack[len(stack)-1].expansion.appendNode(st.fcall)
			}
		case st.state == stateVarName:
			if token == ":" {
				st.varname = st.expansion
				st.state = stateSubstFrom
				st.expansion = newExpansion(d.loc(offset))
				st.tl = getTokenList("=", st.openBrace, st.closeBrace, "$")
			} else {
				stack = stack[:len(stack)-1]
				stack[len(stack)-1].expansion.appendNode(&VarRef{Loc: st.loc, Name: st.expansion})
			}
		case st.state == stateSubstFrom:
			if token == "=" {
				st.substFrom = st.expansion
				st.state = stateSubstTo
				st.expansion = newExpansion(d.loc(offset))
				st.tl = getTokenList(st.openBrace, st.closeBrace, "$")
			} else {
				// $(VARNAME:.ee) is probably a mistake, but make parses it
				// as a variable whose name contains the colon.
				warn(st.loc, "Variable reference looks like substitution without =")
				st.varname.appendString(":")
				st.varname.concat(st.expansion)
				stack = stack[:len(stack)-1]
				stack[len(stack)-1].expansion.appendNode(&VarRef{Loc: st.loc, Name: st.varname})
			}
		default: // stateSubstTo
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].expansion.appendNode(&SubstRef{
				Loc:  st.loc,
				Name: st.varname,
				From: st.substFrom,
				To:   st.expansion,
			})
		}

		di = newCharIter(kind, d, offset, stack[len(stack)-1].tl)
	}

	if len(stack) != 1 {
		glog.V(2).Infof("unterminated expansion in %q", d.data)
		return nil, "", 0, d.loc(offset).errorf("Unterminated function call")
	}
	return stack[0].expansion, "", len(d.data), nil
}
