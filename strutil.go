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

var wsbytes = [256]bool{' ': true, '\t': true, '\n': true, '\r': true}

func isWhitespace(ch byte) bool {
	return wsbytes[ch]
}

func trimLeftSpace(s string) string {
	for i := 0; i < len(s); i++ {
		if !isWhitespace(s[i]) {
			return s[i:]
		}
	}
	return ""
}

func trimRightSpace(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if !isWhitespace(s[i]) {
			return s[:i+1]
		}
	}
	return ""
}

func trimSpace(s string) string {
	return trimRightSpace(trimLeftSpace(s))
}

func isAllSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isWhitespace(s[i]) {
			return false
		}
	}
	return true
}
