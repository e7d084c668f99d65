// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"strconv"

	"github.com/gpbc-project/gpbc/feature"
	"github.com/gpbc-project/gpbc/schema"
)

// GenerateDecoders emits, for every message, a Decode<Msg> function
// implementing the three-state tag/value/skip machine, including
// merge-on-receive for sub-messages and packed/unpacked interleaving for
// repeated scalars. decision's CopyBytes mode governs whether a decoded
// `bytes` field aliases the input buffer or is copied.
func GenerateDecoders(s *Source, f *schema.File, decision feature.Decision) {
	for _, m := range f.Messages {
		generateMessageDecoder(s, m, decision)
	}
}

func generateMessageDecoder(s *Source, m *schema.Message, decision feature.Decision) {
	name := GoTypeName(m.Name)
	s.P("// Decode", name, " parses the wire encoding of a ", m.Name, " from b.")
	s.P("// Unrecognized field numbers are skipped; sub-messages that occur")
	s.P("// more than once are merged rather than overwritten.")
	s.P("func Decode", name, "(b []byte) (*", name, ", error) {")
	s.P("m := &", name, "{}")
	s.P("for len(b) > 0 {")
	s.P("tagv, n := wire.ConsumeVarint(b)")
	s.P("if n < 0 {")
	s.P("return nil, wire.ParseError(n)")
	s.P("}")
	s.P("b = b[n:]")
	s.P("num, wtyp := wire.DecodeTag(tagv)")
	s.P("switch int32(num) {")
	for _, f := range m.Fields {
		s.P("case ", f.FNum, ":")
		generateFieldDecode(s, f, decision)
	}
	s.P("default:")
	s.P("sn := wire.SkipField(b, wtyp)")
	s.P("if sn < 0 {")
	s.P("return nil, wire.ParseError(sn)")
	s.P("}")
	s.P("b = b[sn:]")
	s.P("}")
	s.P("}")
	s.P("return m, nil")
	s.P("}")
	s.P()
}

// generateFieldDecode emits the body of one field number's switch case.
func generateFieldDecode(s *Source, f *schema.Field, decision feature.Decision) {
	acc := "m." + goIdentSafe(GoFieldName(f.Name))

	switch {
	case f.Kind == schema.KindMessage:
		generateMessageFieldDecode(s, f, acc)
	case f.Occurrence == schema.Repeated:
		generateRepeatedScalarFieldDecode(s, f, acc, decision)
	default:
		generateScalarFieldDecode(s, f, acc, decision)
	}
}

// generateScalarFieldDecode handles a required/optional scalar or enum
// field: last occurrence wins.
func generateScalarFieldDecode(s *Source, f *schema.Field, acc string, decision feature.Decision) {
	s.P("if wtyp != ", expectedWireType(f.Kind), " {")
	generateSkip(s)
	s.P("break")
	s.P("}")
	readVar, readLines, consumed := scalarReadStmt("b", f.Kind)
	for _, line := range readLines {
		s.P(line)
	}
	s.P("if ", consumed, " < 0 {")
	s.P("return nil, wire.ParseError(", consumed, ")")
	s.P("}")
	s.P("b = b[", consumed, ":]")
	applyBytesCopyPolicy(s, f, decision, "b", readVar)
	readVar = coerceEnum(f, readVar)
	if f.Occurrence == schema.Optional {
		s.P("ev := ", readVar)
		s.P(acc, " = &ev")
	} else {
		s.P(acc, " = ", readVar)
	}
}

// applyBytesCopyPolicy emits the statement (if any) that implements the
// negotiated bytes-copy strategy for a `bytes` field read out of buf into
// valueVar. Every other kind is a no-op: string conversion already
// copies, and scalar kinds don't alias anything.
func applyBytesCopyPolicy(s *Source, f *schema.Field, decision feature.Decision, buf, valueVar string) {
	if f.Kind != schema.KindBytes {
		return
	}
	switch decision.CopyBytes {
	case feature.CopyNever:
		// Alias the input buffer; nothing to do.
	case feature.CopyThreshold:
		s.P("if cap(", buf, ") >= ", strconv.Itoa(decision.CopyBytesThreshold), "*len(", valueVar, ") {")
		s.P(valueVar, " = append([]byte(nil), ", valueVar, "...)")
		s.P("}")
	default: // CopyAlways (CopyAuto already resolved to this by feature.Negotiate)
		s.P(valueVar, " = append([]byte(nil), ", valueVar, "...)")
	}
}

// coerceEnum wraps a decoded raw int32 in the field's named enum type, or
// returns v unchanged for non-enum fields.
func coerceEnum(f *schema.Field, v string) string {
	if f.Kind == schema.KindEnum {
		return GoTypeName(f.EnumRef.Name) + "(" + v + ")"
	}
	return v
}

// generateMessageFieldDecode handles a required/optional message field:
// occurrences are merged, not overwritten.
func generateMessageFieldDecode(s *Source, f *schema.Field, acc string) {
	sub := GoTypeName(f.MsgRef.Name)
	s.P("if wtyp != wire.BytesType {")
	generateSkip(s)
	s.P("break")
	s.P("}")
	s.P("sv, sn := wire.ConsumeBytes(b)")
	s.P("if sn < 0 {")
	s.P("return nil, wire.ParseError(sn)")
	s.P("}")
	s.P("b = b[sn:]")
	if f.Occurrence == schema.Repeated {
		s.P("sub, err := Decode", sub, "(sv)")
		s.P("if err != nil {")
		s.P("return nil, err")
		s.P("}")
		s.P(acc, " = append(", acc, ", sub)")
		return
	}
	s.P("sub, err := Decode", sub, "(sv)")
	s.P("if err != nil {")
	s.P("return nil, err")
	s.P("}")
	s.P("if ", acc, " == nil {")
	s.P(acc, " = sub")
	s.P("} else {")
	s.P(acc, " = Merge", sub, "(", acc, ", sub)")
	s.P("}")
}

// generateRepeatedScalarFieldDecode handles a repeated scalar/enum field,
// accepting both the packed (length-delimited) and unpacked (one tag per
// element) wire forms interleaved in any order.
func generateRepeatedScalarFieldDecode(s *Source, f *schema.Field, acc string, decision feature.Decision) {
	s.P("switch wtyp {")
	s.P("case ", expectedWireType(f.Kind), ":")
	readVar, readLines, consumed := scalarReadStmt("b", f.Kind)
	for _, line := range readLines {
		s.P(line)
	}
	s.P("if ", consumed, " < 0 {")
	s.P("return nil, wire.ParseError(", consumed, ")")
	s.P("}")
	s.P("b = b[", consumed, ":]")
	applyBytesCopyPolicy(s, f, decision, "b", readVar)
	s.P(acc, " = append(", acc, ", ", coerceEnum(f, readVar), ")")

	if f.Kind.IsPackable() {
		s.P("case wire.BytesType:")
		s.P("payload, pn := wire.ConsumeBytes(b)")
		s.P("if pn < 0 {")
		s.P("return nil, wire.ParseError(pn)")
		s.P("}")
		s.P("b = b[pn:]")
		s.P("for len(payload) > 0 {")
		pv, pLines, pConsumed := scalarReadStmt("payload", f.Kind)
		for _, line := range pLines {
			s.P(line)
		}
		s.P("if ", pConsumed, " < 0 {")
		s.P("return nil, wire.ParseError(", pConsumed, ")")
		s.P("}")
		s.P("payload = payload[", pConsumed, ":]")
		s.P(acc, " = append(", acc, ", ", coerceEnum(f, pv), ")")
		s.P("}")
	}
	s.P("default:")
	generateSkip(s)
	s.P("}")
}

func generateSkip(s *Source) {
	s.P("sn := wire.SkipField(b, wtyp)")
	s.P("if sn < 0 {")
	s.P("return nil, wire.ParseError(sn)")
	s.P("}")
	s.P("b = b[sn:]")
}

func expectedWireType(k schema.Kind) string {
	switch {
	case k.IsVarint():
		return "wire.VarintType"
	case k.Is32Bit():
		return "wire.Fixed32Type"
	case k.Is64Bit():
		return "wire.Fixed64Type"
	default:
		return "wire.BytesType"
	}
}

// scalarReadStmt returns the variable name a value ends up in, the lines
// needed to produce it from buf, and the name of the int variable holding
// the number of bytes consumed (or a negative parse-failure code).
func scalarReadStmt(buf string, k schema.Kind) (valueVar string, lines []string, consumedVar string) {
	switch k {
	case schema.KindSInt32:
		lines = []string{"raw, n := wire.ConsumeVarint(" + buf + ")", "v := wire.DecodeZigZag32(raw)"}
	case schema.KindSInt64:
		lines = []string{"raw, n := wire.ConsumeVarint(" + buf + ")", "v := wire.DecodeZigZag64(raw)"}
	case schema.KindInt32:
		lines = []string{"raw, n := wire.ConsumeVarint(" + buf + ")", "v := int32(int64(raw))"}
	case schema.KindInt64:
		lines = []string{"raw, n := wire.ConsumeVarint(" + buf + ")", "v := int64(raw)"}
	case schema.KindUInt32:
		lines = []string{"raw, n := wire.ConsumeVarint(" + buf + ")", "v := uint32(raw)"}
	case schema.KindUInt64:
		lines = []string{"v, n := wire.ConsumeVarint(" + buf + ")"}
		return "v", lines, "n"
	case schema.KindBool:
		lines = []string{"raw, n := wire.ConsumeVarint(" + buf + ")", "v := wire.VarintToBool(raw)"}
	case schema.KindEnum:
		lines = []string{"raw, n := wire.ConsumeVarint(" + buf + ")", "v := int32(int64(raw))"}
	case schema.KindFixed32:
		lines = []string{"v, n := wire.ConsumeFixed32(" + buf + ")"}
		return "v", lines, "n"
	case schema.KindSFixed32:
		lines = []string{"raw, n := wire.ConsumeFixed32(" + buf + ")", "v := int32(raw)"}
	case schema.KindFloat:
		lines = []string{"raw, n := wire.ConsumeFixed32(" + buf + ")", "v := wire.DecodeFloat32(raw)"}
	case schema.KindFixed64:
		lines = []string{"v, n := wire.ConsumeFixed64(" + buf + ")"}
		return "v", lines, "n"
	case schema.KindSFixed64:
		lines = []string{"raw, n := wire.ConsumeFixed64(" + buf + ")", "v := int64(raw)"}
	case schema.KindDouble:
		lines = []string{"raw, n := wire.ConsumeFixed64(" + buf + ")", "v := wire.DecodeFloat64(raw)"}
	case schema.KindString:
		lines = []string{"raw, n := wire.ConsumeBytes(" + buf + ")", "v := string(raw)"}
	case schema.KindBytes:
		lines = []string{"v, n := wire.ConsumeBytes(" + buf + ")"}
		return "v", lines, "n"
	}
	return "v", lines, "n"
}
