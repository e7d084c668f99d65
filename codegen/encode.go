// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// GenerateEncoders emits, for every message, an Append<Msg> function
// implementing the per-field encoding rules, plus an Encode<Msg>
// convenience wrapper.
package codegen

import (
	"strconv"

	"github.com/gpbc-project/gpbc/schema"
)

// GenerateEncoders emits the encoder half of the codec for every message
// in f.
func GenerateEncoders(s *Source, f *schema.File) {
	for _, m := range f.Messages {
		generateMessageEncoder(s, m)
	}
}

func generateMessageEncoder(s *Source, m *schema.Message) {
	name := GoTypeName(m.Name)
	s.P("// Append", name, " appends the wire encoding of m to b, per the")
	s.P("// declaration order of ", m.Name, ".")
	s.P("func Append", name, "(b []byte, m *", name, ") []byte {")
	for _, f := range m.Fields {
		generateFieldEncode(s, "m", f)
	}
	s.P("return b")
	s.P("}")
	s.P()
	s.P("// Encode", name, " returns the wire encoding of m.")
	s.P("func Encode", name, "(m *", name, ") []byte {")
	s.P("return Append", name, "(nil, m)")
	s.P("}")
	s.P()
}

func generateFieldEncode(s *Source, recv string, f *schema.Field) {
	acc := fieldAccessor(recv, f)
	tag := "wire.EncodeTag(" + itoa32(f.FNum) + ", " + wireTypeExpr(f) + ")"

	switch f.Occurrence {
	case schema.Required:
		appendTag(s, "b", tag)
		appendScalarOrMessage(s, "b", f, acc)

	case schema.Optional:
		s.P("if ", acc, " != nil {")
		appendTag(s, "b", tag)
		if f.Kind == schema.KindMessage {
			appendScalarOrMessage(s, "b", f, acc)
		} else {
			appendScalarOrMessage(s, "b", f, "(*"+acc+")")
		}
		s.P("}")

	case schema.Repeated:
		generateRepeatedFieldEncode(s, f, acc, tag)
	}
}

func appendTag(s *Source, b, tagExpr string) {
	s.P(b, " = wire.AppendVarint(", b, ", ", tagExpr, ")")
}

// appendScalarOrMessage emits the value-only portion of the per-field
// rules (tag already written) for a required/optional occurrence.
func appendScalarOrMessage(s *Source, b string, f *schema.Field, valueExpr string) {
	switch f.Kind {
	case schema.KindMessage:
		sub := GoTypeName(f.MsgRef.Name)
		s.P(b, " = wire.AppendBytes(", b, ", Encode", sub, "(", valueExpr, "))")
	case schema.KindString:
		s.P(b, " = wire.AppendBytes(", b, ", []byte(", valueExpr, "))")
	case schema.KindBytes:
		s.P(b, " = wire.AppendBytes(", b, ", ", valueExpr, ")")
	default:
		s.P(b, " = ", scalarAppendExpr(b, f.Kind, valueExpr))
	}
}

// scalarAppendExpr returns the statement (as a single P-printable string)
// that appends one scalar/enum value's wire representation to b, per the
// varint/zig-zag/fixed-width encoding rules for k.
func scalarAppendExpr(b string, k schema.Kind, v string) string {
	switch k {
	case schema.KindSInt32:
		return "wire.AppendVarint(" + b + ", wire.EncodeZigZag32(" + v + "))"
	case schema.KindSInt64:
		return "wire.AppendVarint(" + b + ", wire.EncodeZigZag64(" + v + "))"
	case schema.KindInt32:
		// Negative int32 values are reinterpreted as a sign-extended
		// int64 before varint coding, which is what produces the 10-byte
		// encoding of a negative int32.
		return "wire.AppendVarint(" + b + ", uint64(int64(" + v + ")))"
	case schema.KindInt64:
		return "wire.AppendVarint(" + b + ", uint64(" + v + "))"
	case schema.KindUInt32:
		return "wire.AppendVarint(" + b + ", uint64(" + v + "))"
	case schema.KindUInt64:
		return "wire.AppendVarint(" + b + ", " + v + ")"
	case schema.KindBool:
		return "wire.AppendVarint(" + b + ", wire.BoolToVarint(" + v + "))"
	case schema.KindEnum:
		return "wire.AppendVarint(" + b + ", uint64(int64(int32(" + v + "))))"
	case schema.KindFixed32:
		return "wire.AppendFixed32(" + b + ", " + v + ")"
	case schema.KindSFixed32:
		return "wire.AppendFixed32(" + b + ", uint32(" + v + "))"
	case schema.KindFloat:
		return "wire.AppendFixed32(" + b + ", wire.EncodeFloat32(" + v + "))"
	case schema.KindFixed64:
		return "wire.AppendFixed64(" + b + ", " + v + ")"
	case schema.KindSFixed64:
		return "wire.AppendFixed64(" + b + ", uint64(" + v + "))"
	case schema.KindDouble:
		return "wire.AppendFixed64(" + b + ", wire.EncodeFloat64(" + v + "))"
	default:
		return "b"
	}
}

func generateRepeatedFieldEncode(s *Source, f *schema.Field, acc, tag string) {
	if f.Packed {
		generatePackedFieldEncode(s, f, acc, tag)
		return
	}

	s.P("for _, v := range ", acc, " {")
	appendTag(s, "b", tag)
	switch f.Kind {
	case schema.KindMessage:
		sub := GoTypeName(f.MsgRef.Name)
		s.P("b = wire.AppendBytes(b, Encode", sub, "(v))")
	case schema.KindString:
		s.P("b = wire.AppendBytes(b, []byte(v))")
	case schema.KindBytes:
		s.P("b = wire.AppendBytes(b, v)")
	default:
		s.P("b = ", scalarAppendExpr("b", f.Kind, "v"))
	}
	s.P("}")
}

func generatePackedFieldEncode(s *Source, f *schema.Field, acc, tag string) {
	s.P("if len(", acc, ") > 0 {")
	if size, ok := f.Kind.StaticSize(); ok {
		// Fixed-width elements: total length is known up front, so the
		// packed payload is written directly with no scratch buffer.
		appendTag(s, "b", tag)
		s.P("b = wire.AppendVarint(b, uint64(len(", acc, ")*", size, "))")
		s.P("for _, v := range ", acc, " {")
		s.P("b = ", scalarAppendExpr("b", f.Kind, "v"))
		s.P("}")
	} else {
		// Varint/enum elements: size is value-dependent, so elements are
		// accumulated in a scratch buffer first.
		s.P("var scratch []byte")
		s.P("for _, v := range ", acc, " {")
		s.P("scratch = ", scalarAppendExpr("scratch", f.Kind, "v"))
		s.P("}")
		appendTag(s, "b", tag)
		s.P("b = wire.AppendBytes(b, scratch)")
	}
	s.P("}")
}

func wireTypeExpr(f *schema.Field) string {
	if f.Occurrence == schema.Repeated && f.Packed {
		return "wire.BytesType"
	}
	switch {
	case f.Kind.IsVarint():
		return "wire.VarintType"
	case f.Kind.Is32Bit():
		return "wire.Fixed32Type"
	case f.Kind.Is64Bit():
		return "wire.Fixed64Type"
	default:
		return "wire.BytesType"
	}
}

func itoa32(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
