// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"bytes"
	"fmt"
	"go/format"
)

// Source is a minimal generated-file text builder modeled on
// protogen.GeneratedFile's P method in protoc-gen-go's
// cmd/protoc-gen-go/internal_gengo package: callers print one logical
// source line at a time by concatenating its arguments, and the
// accumulated text is gofmt'd once at the end.
type Source struct {
	buf bytes.Buffer
}

// P concatenates its arguments with fmt.Sprint semantics and appends the
// result as one line, the same convention as g.P(...) in internal_gengo.
func (s *Source) P(args ...interface{}) {
	for _, a := range args {
		fmt.Fprint(&s.buf, a)
	}
	s.buf.WriteByte('\n')
}

// Bytes returns the unformatted accumulated source.
func (s *Source) Bytes() []byte {
	return s.buf.Bytes()
}

// Format runs the accumulated source through go/format, the same stdlib
// pass every protoc-gen-* plugin in the ecosystem applies before writing
// its output file.
func (s *Source) Format() ([]byte, error) {
	return format.Source(s.buf.Bytes())
}
