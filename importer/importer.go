// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package importer implements import resolution: walking a schema file's
// import graph, resolving each import against a caller-supplied search
// path, and flattening the result into a single raw definition list. File
// access and .proto parsing are both pluggable collaborators so callers can
// substitute an in-memory filesystem and a real grammar parser.
package importer

import (
	"path/filepath"

	"github.com/gpbc-project/gpbc/gpberr"
	"github.com/gpbc-project/gpbc/schema"
)

// FileOps is the pluggable file-system collaborator. The default
// implementation reads from the local disk; callers may inject an
// in-memory filesystem for hermetic testing.
type FileOps interface {
	// ReadFile returns the contents of the file named by joining dir and
	// name, or ok=false if no such file exists in dir.
	ReadFile(dir, name string) (contents []byte, ok bool, err error)
}

// OSFileOps is the default FileOps backed by the local filesystem.
type OSFileOps struct{}

func (OSFileOps) ReadFile(dir, name string) ([]byte, bool, error) {
	path := filepath.Join(dir, name)
	b, err := readFile(path)
	if err != nil {
		if isNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Parser is the external .proto-grammar collaborator: given a file's
// contents and name, it returns the raw definitions it declares and the
// list of files it imports, or a scan/parse error.
type Parser func(contents []byte, name string) (defs []schema.RawDef, imports []string, err error)

// Resolve walks the import graph rooted at name: it finds
// name on the first directory in searchPath that has it, parses it, and
// recurses into every import not already seen. The returned definition
// list is in declarer-before-imports order; an import reachable along
// multiple paths is loaded exactly once.
func Resolve(name string, searchPath []string, parse Parser, ops FileOps) (schema.RawSchema, []string, error) {
	st := &resolveState{
		seen:   map[string]bool{},
		parse:  parse,
		ops:    ops,
		search: searchPath,
	}
	defs, err := st.resolve(name)
	if err != nil {
		return schema.RawSchema{}, nil, err
	}
	return schema.RawSchema{Defs: defs}, st.loaded, nil
}

type resolveState struct {
	seen   map[string]bool
	loaded []string
	parse  Parser
	ops    FileOps
	search []string
}

func (st *resolveState) resolve(name string) ([]schema.RawDef, error) {
	// Once a file fails, it is recorded as seen to avoid re-reporting: mark
	// before attempting so a diamond import of a broken file surfaces the
	// error exactly once.
	if st.seen[name] {
		return nil, nil
	}
	st.seen[name] = true

	contents, dir, err := st.locate(name)
	if err != nil {
		return nil, err
	}

	defs, imports, err := st.parse(contents, name)
	if err != nil {
		return nil, err
	}
	st.loaded = append(st.loaded, name)

	out := append([]schema.RawDef(nil), defs...)
	for _, imp := range imports {
		if st.seen[imp] {
			continue
		}
		importedDefs, err := st.withSearchFrom(dir, imp)
		if err != nil {
			return nil, err
		}
		out = append(out, importedDefs...)
	}
	return out, nil
}

// withSearchFrom resolves an import using the same configured search
// path; dir (the importing file's directory) is accepted for parity with
// collaborators that want to support "relative to importer" resolution,
// but the search path list, walked in order, is the sole authority for
// where an import is found.
func (st *resolveState) withSearchFrom(dir, name string) ([]schema.RawDef, error) {
	_ = dir
	return st.resolve(name)
}

// locate finds name on the first directory of the search path that has
// it, and returns its contents plus the directory it was found in.
func (st *resolveState) locate(name string) (contents []byte, dir string, err error) {
	for _, d := range st.search {
		b, ok, err := st.ops.ReadFile(d, name)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return b, d, nil
		}
	}
	// Search path may be empty or name may be found directly (e.g. an
	// absolute path root file); fall back to treating name itself as a
	// direct path under "".
	b, ok, err := st.ops.ReadFile("", name)
	if err != nil {
		return nil, "", err
	}
	if ok {
		return b, "", nil
	}
	return nil, "", &gpberr.ImportNotFoundError{Name: name}
}
