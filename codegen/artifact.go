// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codegen is the artifact emitter: Emit composes the encoder,
// decoder, merger, and verifier synthesis output for a single normalized
// schema into one Go source file exposing the library-level entry points
// (EncodeMsg, DecodeMsg, MergeMsgs, VerifyMsg), then either hands the
// source back for an in-memory compile or writes it to an output
// directory.
package codegen

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"runtime"

	"github.com/gpbc-project/gpbc/feature"
	"github.com/gpbc-project/gpbc/schema"
)

// gpbcModuleRoot is the filesystem directory of this module, derived from
// this file's own path so CompileInMemory can point a replace directive at
// it without depending on the caller's working directory or a published
// module.
var gpbcModuleRoot = func() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(filepath.Dir(file))
}()

// FileWriter is the write half of pluggable file-operations
// collaborator; ReadFile's counterpart already lives on importer.FileOps,
// but the artifact emitter is the only stage that writes, so it gets its own narrow
// interface rather than forcing importer.FileOps to grow a method every
// other stage ignores.
type FileWriter interface {
	WriteFile(dir, name string, contents []byte) error
}

// OSFileWriter is the default FileWriter, backed by the local filesystem.
type OSFileWriter struct{}

func (OSFileWriter) WriteFile(dir, name string, contents []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), contents, 0o644)
}

// Artifact is the generated Go source for one schema, package-named after
// the module it was compiled from.
type Artifact struct {
	PackageName string
	Source      []byte // gofmt'd Go source
	Schema      *schema.File
}

// Emit runs encoder, decoder, merger, and verifier synthesis over f and
// composes their output into one Artifact. decision.Verify governs whether
// EncodeMsg runs the per-message verifier first (feature.VerifyAlways only),
// and decision.CopyBytes selects the bytes-copy code the decoders emit.
func Emit(packageName string, f *schema.File, decision feature.Decision) (*Artifact, error) {
	s := &Source{}
	s.P("// Code generated by gpbc. DO NOT EDIT.")
	s.P("package ", packageName)
	s.P()
	s.P(`import "github.com/gpbc-project/gpbc/wire"`)
	s.P(`import "github.com/gpbc-project/gpbc/gpberr"`)
	s.P(`import "strconv"`)
	s.P(`import "unicode/utf8"`)
	s.P()

	GenerateTypes(s, f)
	GenerateEncoders(s, f)
	GenerateDecoders(s, f, decision)
	GenerateMergers(s, f)
	GenerateVerifiers(s, f)
	generateMessageInterface(s, f)
	generateDispatch(s, f, decision)

	out, err := s.Format()
	if err != nil {
		return nil, &gpberrInternal{stage: "the artifact emitter", detail: err.Error()}
	}
	return &Artifact{PackageName: packageName, Source: out, Schema: f}, nil
}

// generateMessageInterface emits the shared identity interface every
// generated struct implements, the dynamic type MergeMsgs and DecodeMsg
// dispatch on.
func generateMessageInterface(s *Source, f *schema.File) {
	s.P("// Message is implemented by every generated message type; it is the")
	s.P("// shared identity DecodeMsg/MergeMsgs dispatch on.")
	s.P("type Message interface {")
	s.P("gpbMessageName() string")
	s.P("}")
	s.P()
}

// generateDispatch emits the top-level EncodeMsg/DecodeMsg/MergeMsgs/
// VerifyMsg entry points as a name switch over every message in f.
func generateDispatch(s *Source, f *schema.File, decision feature.Decision) {
	s.P("// EncodeMsg returns the wire encoding of any message defined in this")
	s.P("// artifact. Under the conservative reading of the verify-mode open")
	s.P("// question, a verify-mode of always runs the matching Verify<Msg> first.")
	s.P("func EncodeMsg(m Message) ([]byte, error) {")
	s.P("switch v := m.(type) {")
	for _, m := range f.Messages {
		name := GoTypeName(m.Name)
		s.P("case *", name, ":")
		if decision.Verify == feature.VerifyAlways {
			s.P("if err := Verify", name, "(v, \"\"); err != nil {")
			s.P("return nil, err")
			s.P("}")
		}
		s.P("return Encode", name, "(v), nil")
	}
	s.P("default:")
	s.P(`return nil, &gpberr.InternalError{Stage: "the artifact emitter", Detail: "unrecognized message identity"}`)
	s.P("}")
	s.P("}")
	s.P()

	s.P("// DecodeMsg parses b as msgName's wire encoding.")
	s.P("func DecodeMsg(b []byte, msgName string) (Message, error) {")
	s.P("switch msgName {")
	for _, m := range f.Messages {
		name := GoTypeName(m.Name)
		s.P("case ", fmt.Sprintf("%q", m.Name), ":")
		s.P("return Decode", name, "(b)")
	}
	s.P("default:")
	s.P(`return nil, &gpberr.InternalError{Stage: "the artifact emitter", Detail: "unknown message name: " + msgName}`)
	s.P("}")
	s.P("}")
	s.P()

	s.P("// MergeMsgs merges prev and next, which must share a message identity.")
	s.P("func MergeMsgs(prev, next Message) (Message, error) {")
	s.P("switch p := prev.(type) {")
	for _, m := range f.Messages {
		name := GoTypeName(m.Name)
		s.P("case *", name, ":")
		s.P("n, ok := next.(*", name, ")")
		s.P("if !ok {")
		s.P(`return nil, &gpberr.InternalError{Stage: "the artifact emitter", Detail: "MergeMsgs: mismatched message identity"}`)
		s.P("}")
		s.P("return Merge", name, "(p, n), nil")
	}
	s.P("default:")
	s.P(`return nil, &gpberr.InternalError{Stage: "the artifact emitter", Detail: "unrecognized message identity"}`)
	s.P("}")
	s.P("}")
	s.P()

	s.P("// VerifyMsg recursively validates m, regardless of the artifact's")
	s.P("// negotiated verify mode: VerifyMsg is always emitted and always")
	s.P("// active when called directly.")
	s.P("func VerifyMsg(m Message) error {")
	s.P("switch v := m.(type) {")
	for _, m := range f.Messages {
		name := GoTypeName(m.Name)
		s.P("case *", name, ":")
		s.P("return Verify", name, "(v, \"\")")
	}
	s.P("default:")
	s.P(`return &gpberr.InternalError{Stage: "the artifact emitter", Detail: "unrecognized message identity"}`)
	s.P("}")
	s.P("}")
	s.P()

	// These blank uses guarantee wire/gpberr/strconv/utf8 stay referenced
	// even for a degenerate schema with no enums, no fields, no messages,
	// or no string fields at all, since every import above is otherwise
	// only reachable from generated code this function conditionally
	// emits.
	s.P("var _ = strconv.Itoa")
	s.P("var _ wire.Type")
	s.P("var _ = gpberr.InternalError{}")
	s.P("var _ = utf8.ValidString")
	s.P()
}

// gpberrInternal avoids codegen importing gpberr for its own compile-time
// errors while still shaping them the same way generated code's errors are
// shaped; it satisfies the error interface via Error().
type gpberrInternal struct {
	stage  string
	detail string
}

func (e *gpberrInternal) Error() string {
	return fmt.Sprintf("internal error in %s: %s", e.stage, e.detail)
}

// WriteArtifact writes the generated source plus a companion YAML file
// describing the normalized schema (see schema.File.DumpYAML) to dir.
func WriteArtifact(a *Artifact, dir string, fw FileWriter) error {
	if err := fw.WriteFile(dir, a.PackageName+".go", a.Source); err != nil {
		return err
	}
	defsYAML, err := a.Schema.DumpYAML()
	if err != nil {
		return err
	}
	return fw.WriteFile(dir, a.PackageName+".defs.yaml", defsYAML)
}

// CompileInMemory implements the Binary option: it writes the artifact
// and a throwaway go.mod to a temp directory, shells out to
// `go build -buildmode=plugin`, and loads the result with the standard
// library's plugin package. DESIGN.md records the reasoning behind this
// approach to returning a compiled artifact without a source file on
// disk.
func CompileInMemory(a *Artifact, modulePath string) (*plugin.Plugin, error) {
	tmp, err := os.MkdirTemp("", "gpbc-plugin-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	// Generated sources import the wire/gpberr packages by their published
	// path; since this module isn't actually published, the throwaway
	// go.mod needs its own require plus a filesystem replace pointing back
	// at gpbcModuleRoot so `go build` resolves them locally.
	goMod := fmt.Sprintf(
		"module %s\n\ngo 1.19\n\nrequire github.com/gpbc-project/gpbc v0.0.0-00010101000000-000000000000\n\nreplace github.com/gpbc-project/gpbc => %s\n",
		modulePath, gpbcModuleRoot,
	)
	if err := os.WriteFile(filepath.Join(tmp, "go.mod"), []byte(goMod), 0o644); err != nil {
		return nil, err
	}
	// go build -buildmode=plugin only accepts a main package, so the
	// artifact's own package clause is rewritten for this build.
	src := bytes.Replace(a.Source, []byte("package "+a.PackageName+"\n"), []byte("package main\n"), 1)
	srcPath := filepath.Join(tmp, a.PackageName+".go")
	if err := os.WriteFile(srcPath, src, 0o644); err != nil {
		return nil, err
	}

	soPath := filepath.Join(tmp, a.PackageName+".so")
	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", soPath, srcPath)
	cmd.Dir = tmp
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &gpberrInternal{stage: "the artifact emitter", detail: fmt.Sprintf("plugin build failed: %v: %s", err, out)}
	}
	return plugin.Open(soPath)
}
