// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// GenerateMergers emits, for every message, a Merge<Msg> function
// combining a previously-held value with a newly decoded one: scalars
// and enums take the new value when present, sub-messages merge
// recursively, and repeated fields concatenate.
package codegen

import (
	"github.com/gpbc-project/gpbc/schema"
)

// GenerateMergers emits the merge half of the codec for every message in f.
func GenerateMergers(s *Source, f *schema.File) {
	for _, m := range f.Messages {
		generateMessageMerger(s, m)
	}
}

func generateMessageMerger(s *Source, m *schema.Message) {
	name := GoTypeName(m.Name)
	s.P("// Merge", name, " combines prev with next, applying the standard")
	s.P("// merge-on-receive rule for every field of ", m.Name, ": scalars and")
	s.P("// enums take new's value when set, sub-messages merge recursively,")
	s.P("// and repeated fields concatenate prev then new.")
	s.P("func Merge", name, "(prev, next *", name, ") *", name, " {")
	s.P("if prev == nil {")
	s.P("return next")
	s.P("}")
	s.P("if next == nil {")
	s.P("return prev")
	s.P("}")
	s.P("out := &", name, "{}")
	for _, f := range m.Fields {
		generateFieldMerge(s, f)
	}
	s.P("return out")
	s.P("}")
	s.P()
}

func generateFieldMerge(s *Source, f *schema.Field) {
	name := goIdentSafe(GoFieldName(f.Name))
	pf, nf, of := "prev."+name, "next."+name, "out."+name

	switch {
	case f.Kind == schema.KindMessage && f.Occurrence == schema.Repeated:
		s.P(of, " = append(append([]*", GoTypeName(f.MsgRef.Name), "{}, ", pf, "...), ", nf, "...)")

	case f.Kind == schema.KindMessage:
		sub := GoTypeName(f.MsgRef.Name)
		s.P("switch {")
		s.P("case ", pf, " == nil:")
		s.P(of, " = ", nf)
		s.P("case ", nf, " == nil:")
		s.P(of, " = ", pf)
		s.P("default:")
		s.P(of, " = Merge", sub, "(", pf, ", ", nf, ")")
		s.P("}")

	case f.Occurrence == schema.Repeated:
		s.P(of, " = append(append([]", FieldElemGoType(f), "{}, ", pf, "...), ", nf, "...)")

	case f.Occurrence == schema.Optional:
		s.P("if ", nf, " != nil {")
		s.P(of, " = ", nf)
		s.P("} else {")
		s.P(of, " = ", pf)
		s.P("}")

	default: // Required
		s.P(of, " = ", nf)
	}
}
