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
	"sort"
	"sync"
)

// funcInfo describes a make function to the parser. maxArgs bounds how many
// commas split arguments; once that many arguments exist, further commas are
// literal text. 0 means unlimited.
//
// http://www.gnu.org/software/make/manual/make.html#Functions
type funcInfo struct {
	name    string
	minArgs int
	maxArgs int
}

var funcMap = map[string]funcInfo{
	"subst":      {"subst", 3, 3},
	"patsubst":   {"patsubst", 3, 3},
	"strip":      {"strip", 1, 1},
	"findstring": {"findstring", 2, 2},
	"filter":     {"filter", 2, 2},
	"filter-out": {"filter-out", 2, 2},
	"sort":       {"sort", 1, 1},
	"word":       {"word", 2, 2},
	"wordlist":   {"wordlist", 3, 3},
	"words":      {"words", 1, 1},
	"firstword":  {"firstword", 1, 1},
	"lastword":   {"lastword", 1, 1},

	"join":      {"join", 2, 2},
	"wildcard":  {"wildcard", 1, 1},
	"dir":       {"dir", 1, 1},
	"notdir":    {"notdir", 1, 1},
	"suffix":    {"suffix", 1, 1},
	"basename":  {"basename", 1, 1},
	"addsuffix": {"addsuffix", 2, 2},
	"addprefix": {"addprefix", 2, 2},
	"realpath":  {"realpath", 1, 1},
	"abspath":   {"abspath", 1, 1},

	"if":  {"if", 2, 3},
	"and": {"and", 1, 0},
	"or":  {"or", 1, 0},

	"value": {"value", 1, 1},
	"eval":  {"eval", 1, 1},

	"shell":   {"shell", 1, 1},
	"call":    {"call", 1, 0},
	"foreach": {"foreach", 3, 3},

	"origin":  {"origin", 1, 1},
	"flavor":  {"flavor", 1, 1},
	"info":    {"info", 1, 1},
	"warning": {"warning", 1, 1},
	"error":   {"error", 1, 1},
}

var (
	functionTokensOnce sync.Once
	functionTokens     *tokenList
)

// functionTokenList returns the matcher for all function names, longest
// first so that e.g. filter-out wins over filter.
func functionTokenList() *tokenList {
	functionTokensOnce.Do(func() {
		names := make([]string, 0, len(funcMap))
		for name := range funcMap {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}
			return names[i] < names[j]
		})
		functionTokens = getTokenList(names...)
	})
	return functionTokens
}
