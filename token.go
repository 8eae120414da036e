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
	"regexp"
	"strings"
	"sync"
)

// Meta tokens appended to the caller's literals. Alternation order matters:
// the regexp engine prefers earlier alternatives at the same position, so
// caller literals always win over these.
var makefileMetaTokens = []string{
	`\\\\#`,       // escaped backslash, then comment
	`\\#`,         // escaped comment character
	`\\` + "\n",   // continuation
	`\\\s+\\` + "\n", // backslash, whitespace, continuation
	`\\.`,         // escaped anything else
	`#`,
	"\n",
}

var continuationMetaTokens = []string{
	`\\` + "\n",
	`\\.`,
	"\n",
}

// tokenList is a static set of literal tokens with precompiled matchers for
// each iteration regime. Lists are immutable and cached by their tokens.
type tokenList struct {
	tokens   []string
	tokenSet map[string]bool
	empty    bool

	simple         *regexp.Regexp // literals only, searching
	simpleAnchored *regexp.Regexp // literals only, anchored at the offset
	makefile       *regexp.Regexp // literals + makefile meta tokens
	continuation   *regexp.Regexp // literals + continuation meta tokens
	ws             *regexp.Regexp // anchored literal followed by whitespace or end
}

func compileTokenList(tokens []string) *tokenList {
	tl := &tokenList{
		tokens:   tokens,
		tokenSet: make(map[string]bool, len(tokens)),
		empty:    len(tokens) == 0,
	}
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		tl.tokenSet[t] = true
		escaped[i] = regexp.QuoteMeta(t)
	}
	lits := strings.Join(escaped, "|")
	withMeta := func(meta []string) string {
		alts := append(append([]string{}, escaped...), meta...)
		return strings.Join(alts, "|")
	}
	if !tl.empty {
		tl.simple = regexp.MustCompile(lits)
		tl.simpleAnchored = regexp.MustCompile(`^(?:` + lits + `)`)
		tl.ws = regexp.MustCompile(`^(` + lits + `)(\s+|$)`)
	}
	tl.makefile = regexp.MustCompile(withMeta(makefileMetaTokens))
	tl.continuation = regexp.MustCompile(withMeta(continuationMetaTokens))
	return tl
}

var tokenListCache = struct {
	sync.Mutex
	m map[string]*tokenList
}{m: make(map[string]*tokenList)}

// getTokenList returns the cached tokenList for tokens, compiling it on
// first use.
func getTokenList(tokens ...string) *tokenList {
	key := strings.Join(tokens, "\x00")
	tokenListCache.Lock()
	tl, present := tokenListCache.m[key]
	tokenListCache.Unlock()
	if present {
		return tl
	}
	tl = compileTokenList(tokens)
	tokenListCache.Lock()
	if prev, present := tokenListCache.m[key]; present {
		tl = prev
	} else {
		tokenListCache.m[key] = tl
	}
	tokenListCache.Unlock()
	return tl
}

func emptyTokenList() *tokenList {
	return getTokenList()
}
