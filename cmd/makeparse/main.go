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

// makeparse parses makefiles and prints the statement tree, or just
// syntax-checks them with -c.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/makelib/makeparse"
)

var (
	makefileFlag   string
	syntaxOnlyFlag bool
)

func init() {
	flag.StringVar(&makefileFlag, "f", "", "Use it as a makefile")
	flag.BoolVar(&syntaxOnlyFlag, "c", false, "Syntax check only, print nothing")
}

func defaultMakefile() (string, error) {
	candidates := []string{"GNUmakefile", "makefile", "Makefile"}
	for _, filename := range candidates {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
	}
	return "", errors.New("no makefile found")
}

func run() error {
	files := flag.Args()
	if makefileFlag != "" {
		files = append([]string{makefileFlag}, files...)
	}
	if len(files) == 0 {
		f, err := defaultMakefile()
		if err != nil {
			return err
		}
		files = []string{f}
	}
	for _, f := range files {
		glog.V(1).Infof("parsing %s", f)
		stmts, err := makeparse.ParseFile(f)
		if err != nil {
			return err
		}
		if !syntaxOnlyFlag {
			fmt.Print(stmts.Dump())
		}
	}
	return nil
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "makeparse: %v\n", err)
		os.Exit(2)
	}
}
