// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// GenerateVerifiers emits, for every message, a Verify<Msg> function that
// recursively checks required sub-messages are present and enum values
// are declared, tracking the dotted field path carried on a
// gpberr.TypeError.
package codegen

import (
	"strconv"

	"github.com/gpbc-project/gpbc/schema"
)

// GenerateVerifiers emits the verifier half of the codec for every message
// in f.
func GenerateVerifiers(s *Source, f *schema.File) {
	generateFieldPathHelper(s)
	for _, m := range f.Messages {
		generateMessageVerifier(s, m)
	}
}

// generateFieldPathHelper emits the dotted-path builder every Verify<Msg>
// function in this file calls.
func generateFieldPathHelper(s *Source) {
	s.P("func fieldPath(path, field string) string {")
	s.P(`if path == "" {`)
	s.P("return field")
	s.P("}")
	s.P(`return path + "." + field`)
	s.P("}")
	s.P()
}

func generateMessageVerifier(s *Source, m *schema.Message) {
	name := GoTypeName(m.Name)
	s.P("// Verify", name, " checks that m satisfies every declared invariant")
	s.P("// of ", m.Name, ", recursing into sub-messages. path is the dotted")
	s.P("// field chain from the verification root, empty at the top level.")
	s.P("func Verify", name, "(m *", name, ", path string) error {")
	s.P("if m == nil {")
	s.P("return nil")
	s.P("}")
	for _, f := range m.Fields {
		generateFieldVerify(s, f)
	}
	s.P("return nil")
	s.P("}")
	s.P()
}

func generateFieldVerify(s *Source, f *schema.Field) {
	name := goIdentSafe(GoFieldName(f.Name))
	pathExpr := "fieldPath(path, " + strconv.Quote(f.Name) + ")"

	switch {
	case f.Kind == schema.KindMessage && f.Occurrence == schema.Repeated:
		s.P("for _, ev := range m.", name, " {")
		s.P("if err := Verify", GoTypeName(f.MsgRef.Name), "(ev, ", pathExpr, "); err != nil {")
		s.P("return err")
		s.P("}")
		s.P("}")

	case f.Kind == schema.KindMessage && f.Occurrence == schema.Required:
		s.P("if m.", name, " == nil {")
		s.P(`return &gpberr.TypeError{Reason: "missing_required_field", Value: nil, Path: `, pathExpr, "}")
		s.P("}")
		s.P("if err := Verify", GoTypeName(f.MsgRef.Name), "(m.", name, ", ", pathExpr, "); err != nil {")
		s.P("return err")
		s.P("}")

	case f.Kind == schema.KindMessage: // Optional
		s.P("if err := Verify", GoTypeName(f.MsgRef.Name), "(m.", name, ", ", pathExpr, "); err != nil {")
		s.P("return err")
		s.P("}")

	case f.Kind == schema.KindEnum && f.Occurrence == schema.Repeated:
		s.P("for _, ev := range m.", name, " {")
		s.P("if _, ok := ", GoTypeName(f.EnumRef.Name), "_name[int32(ev)]; !ok {")
		s.P(`return &gpberr.TypeError{Reason: "invalid_enum_value", Value: ev, Path: `, pathExpr, "}")
		s.P("}")
		s.P("}")

	case f.Kind == schema.KindEnum && f.Occurrence == schema.Optional:
		s.P("if m.", name, " != nil {")
		s.P("if _, ok := ", GoTypeName(f.EnumRef.Name), "_name[int32(*m.", name, ")]; !ok {")
		s.P(`return &gpberr.TypeError{Reason: "invalid_enum_value", Value: *m.`, name, `, Path: `, pathExpr, "}")
		s.P("}")
		s.P("}")

	case f.Kind == schema.KindEnum: // Required
		s.P("if _, ok := ", GoTypeName(f.EnumRef.Name), "_name[int32(m.", name, ")]; !ok {")
		s.P(`return &gpberr.TypeError{Reason: "invalid_enum_value", Value: m.`, name, `, Path: `, pathExpr, "}")
		s.P("}")

	case f.Kind == schema.KindString && f.Occurrence == schema.Repeated:
		s.P("for _, ev := range m.", name, " {")
		s.P("if !utf8.ValidString(ev) {")
		s.P(`return &gpberr.TypeError{Reason: "invalid_utf8", Value: ev, Path: `, pathExpr, "}")
		s.P("}")
		s.P("}")

	case f.Kind == schema.KindString && f.Occurrence == schema.Optional:
		s.P("if m.", name, " != nil && !utf8.ValidString(*m.", name, ") {")
		s.P(`return &gpberr.TypeError{Reason: "invalid_utf8", Value: *m.`, name, `, Path: `, pathExpr, "}")
		s.P("}")

	case f.Kind == schema.KindString: // Required
		s.P("if !utf8.ValidString(m.", name, ") {")
		s.P(`return &gpberr.TypeError{Reason: "invalid_utf8", Value: m.`, name, `, Path: `, pathExpr, "}")
		s.P("}")
	}
}
