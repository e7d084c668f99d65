// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpberr defines the error kinds produced by the gpbc pipeline
// (schema loading, normalization, and code synthesis) and by the wire
// codec that synthesized code emits at runtime.
package gpberr

import (
	"fmt"
	"strings"
)

// ImportNotFoundError is returned by the import resolver when a named
// import cannot be located on any of the configured search directories.
type ImportNotFoundError struct {
	Name string
}

func (e *ImportNotFoundError) Error() string {
	return fmt.Sprintf("import not found: %s", e.Name)
}

// ScanError wraps a lexical failure surfaced by the external parser
// collaborator while tokenizing a schema file's contents.
type ScanError struct {
	Contents string
	Detail   string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error in %s: %s", e.Contents, e.Detail)
}

// ParseError wraps a grammatical failure surfaced by the external parser
// collaborator.
type ParseError struct {
	Contents string
	Detail   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Contents, e.Detail)
}

// VerifyDefsFailedError is returned by the normalizer when the normalized
// schema violates one of its field invariants (duplicate field numbers,
// an unresolved type reference, a malformed default, non-contiguous
// rnum assignment, or packed on a non-scalar field).
type VerifyDefsFailedError struct {
	Reasons []string
}

func (e *VerifyDefsFailedError) Error() string {
	if len(e.Reasons) == 1 {
		return fmt.Sprintf("schema verification failed: %s", e.Reasons[0])
	}
	return fmt.Sprintf("schema verification failed (%d reasons): %s", len(e.Reasons), strings.Join(e.Reasons, "; "))
}

// InternalError wraps a failure in encoder/decoder/merger/verifier
// synthesis or artifact emission that should be unreachable once the
// normalizer's validation has passed. Its presence always indicates a bug
// in the generator, never a malformed input schema.
type InternalError struct {
	Stage  string
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %s", e.Stage, e.Detail)
}

// TypeError is raised by a generated Verify<Msg> function. Path is the
// dotted field chain from the message root to the offending value.
type TypeError struct {
	Reason string
	Value  interface{}
	Path   string
}

func (e *TypeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("type error: %s: %#v", e.Reason, e.Value)
	}
	return fmt.Sprintf("type error: %s: %#v (at %s)", e.Reason, e.Value, e.Path)
}

// MalformedWireTypeError is raised by a generated Decode<Msg> function
// when a tag's wire type is not one of the four defined wire types.
type MalformedWireTypeError struct {
	FieldNumber int32
	WireType    int
}

func (e *MalformedWireTypeError) Error() string {
	if e.FieldNumber == 0 {
		return "malformed wire type"
	}
	return fmt.Sprintf("malformed wire type: field %d has wire type %d", e.FieldNumber, e.WireType)
}

// TruncatedError is raised by a generated Decode<Msg> function when the
// input buffer ends before a value (or its length prefix) is fully read.
type TruncatedError struct {
	Detail string
}

func (e *TruncatedError) Error() string {
	if e.Detail == "" {
		return "truncated"
	}
	return fmt.Sprintf("truncated: %s", e.Detail)
}
