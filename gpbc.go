// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpbc is a proto2 schema-to-codec compiler: it loads a schema
// (recursively resolving imports), normalizes and topologically sorts it,
// and synthesizes a self-contained Go package implementing that schema's
// wire-format encoder, decoder, merger, and verifier. File and MsgDefs
// are the two library entry points: File loads from disk through the
// import resolver, while MsgDefs accepts an already-parsed schema and
// skips straight to the normalizer.
package gpbc

import (
	"path/filepath"
	"plugin"

	"github.com/gpbc-project/gpbc/codegen"
	"github.com/gpbc-project/gpbc/feature"
	"github.com/gpbc-project/gpbc/importer"
	"github.com/gpbc-project/gpbc/schema"
)

// Options are the caller-supplied knobs governing a single compile.
type Options struct {
	// Import is the list of directories appended to the import search
	// path, in order, and may be repeated.
	Import []string
	// OutDir is the output directory; empty means the source file's own
	// directory (File only — MsgDefs requires OutDir when Binary is
	// false, since it has no source file to default from).
	OutDir string
	// Binary requests an in-memory compiled artifact instead of writing
	// files to OutDir.
	Binary bool
	// TypeSpecs requests structural type annotations. Feature negotiation
	// turns it off for a cyclic schema and adds a warning to
	// Result.Warnings; the emitted Go source is the same whether it is on
	// or off.
	TypeSpecs bool
	// Verify selects the verification mode.
	Verify feature.VerifyMode
	// CopyBytes selects the bytes-copy strategy.
	CopyBytes          feature.CopyBytesMode
	CopyBytesThreshold int
	// FileOps injects the file-read collaborator; defaults to the local
	// filesystem.
	FileOps importer.FileOps
	// FileWriter injects the file-write collaborator; defaults to the
	// local filesystem.
	FileWriter codegen.FileWriter
	// Parser is the external .proto-grammar collaborator; callers must
	// supply one to use File.
	Parser importer.Parser
	// ProbeDefs is a diagnostic hook receiving the post-topological-sort
	// schema, for callers that want to inspect it without a second pass.
	ProbeDefs func(*schema.File)
}

// Result is the outcome of a successful compile. Source always holds the
// generated code; Plugin is set when Options.Binary is true, and
// WrittenFiles otherwise.
type Result struct {
	PackageName  string
	Schema       *schema.File
	Source       []byte
	WrittenFiles []string
	Plugin       *plugin.Plugin
	Warnings     []string
}

// File loads, compiles, and emits the schema rooted at path, walking its
// import graph with opts.Parser.
func File(path string, opts Options) (*Result, error) {
	searchPath := append(append([]string(nil), opts.Import...), filepath.Dir(path))
	ops := opts.FileOps
	if ops == nil {
		ops = importer.OSFileOps{}
	}
	raw, _, err := importer.Resolve(filepath.Base(path), searchPath, opts.Parser, ops)
	if err != nil {
		return nil, err
	}

	packageName := packageNameFromPath(path)
	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	return compile(packageName, raw, outDir, opts)
}

// MsgDefs compiles and emits an already-parsed schema, bypassing the
// import resolver entirely.
func MsgDefs(moduleName string, defs schema.RawSchema, opts Options) (*Result, error) {
	return compile(moduleName, defs, opts.OutDir, opts)
}

// compile runs normalization through emission over raw and produces a
// Result, honoring opts.
func compile(packageName string, raw schema.RawSchema, outDir string, opts Options) (*Result, error) {
	normalized, err := schema.Normalize(raw)
	if err != nil {
		return nil, err
	}
	sorted := schema.TopoSort(normalized)
	if opts.ProbeDefs != nil {
		opts.ProbeDefs(sorted)
	}

	decision := feature.Negotiate(feature.Options{
		TypeSpecs:          opts.TypeSpecs,
		CopyBytes:          opts.CopyBytes,
		CopyBytesThreshold: opts.CopyBytesThreshold,
		Verify:             opts.Verify,
	}, sorted.Cyclic)

	artifact, err := codegen.Emit(packageName, sorted, decision)
	if err != nil {
		return nil, err
	}

	res := &Result{
		PackageName: packageName,
		Schema:      sorted,
		Source:      artifact.Source,
		Warnings:    decision.Warnings,
	}

	if opts.Binary {
		modulePath := "gpbc.local/" + packageName
		p, err := codegen.CompileInMemory(artifact, modulePath)
		if err != nil {
			return nil, err
		}
		res.Plugin = p
		return res, nil
	}

	fw := opts.FileWriter
	if fw == nil {
		fw = codegen.OSFileWriter{}
	}
	if err := codegen.WriteArtifact(artifact, outDir, fw); err != nil {
		return nil, err
	}
	res.WrittenFiles = []string{
		filepath.Join(outDir, packageName+".go"),
		filepath.Join(outDir, packageName+".defs.yaml"),
	}
	return res, nil
}

// packageNameFromPath derives a Go package name from a schema file path,
// stripping its directory and extension (e.g. "proto/addressbook.proto" ->
// "addressbook").
func packageNameFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
