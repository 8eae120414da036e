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

	"github.com/golang/glog"
)

// warn logs a non-fatal parser diagnostic with its source position.
func warn(pos SrcPos, f string, args ...interface{}) {
	glog.Warningf("%s: %s", pos, fmt.Sprintf(f, args...))
}
