// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/gpbc-project/gpbc/feature"
	"github.com/gpbc-project/gpbc/schema"
)

func mustNormalize(t *testing.T, raw schema.RawSchema) *schema.File {
	t.Helper()
	f, err := schema.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return schema.TopoSort(f)
}

// TestEmitProducesParsableGoSource exercises the full encoder/decoder/merger/verifier synthesis and emission pipeline over
// a schema with every field shape (required/optional/repeated, packed,
// enum, sub-message, bytes) and checks that the composed artifact is
// syntactically valid Go, the way a protoc-gen-go-style generator's own
// tests golden-check their output text.
func TestEmitProducesParsableGoSource(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.EnumDefKind, Name: "Color", Values: []schema.RawEnumValue{
			{Symbol: "RED", Value: 0},
			{Symbol: "BLUE", Value: -1},
		}},
		{Kind: schema.MessageDefKind, Name: "Sub", Fields: []schema.RawField{
			{Name: "v", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "x", FNum: 1, Type: "int32", Occurrence: schema.Required},
			{Name: "name", FNum: 2, Type: "string", Occurrence: schema.Optional},
			{Name: "xs", FNum: 3, Type: "int32", Occurrence: schema.Repeated,
				Opts: []schema.RawOption{{Name: "packed", Value: true}}},
			{Name: "color", FNum: 4, Type: "Color", Occurrence: schema.Optional},
			{Name: "sub", FNum: 5, Type: "Sub", Occurrence: schema.Optional},
			{Name: "subs", FNum: 6, Type: "Sub", Occurrence: schema.Repeated},
			{Name: "data", FNum: 7, Type: "bytes", Occurrence: schema.Optional},
		}},
	}}

	f := mustNormalize(t, raw)
	decision := feature.Negotiate(feature.Options{Verify: feature.VerifyAlways}, f.Cyclic)

	artifact, err := Emit("testpb", f, decision)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "testpb.go", artifact.Source, parser.AllErrors); err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, artifact.Source)
	}

	src := string(artifact.Source)
	for _, want := range []string{
		"func EncodeM(m *M) []byte",
		"func DecodeM(b []byte) (*M, error)",
		"func MergeM(prev, next *M) *M",
		"func VerifyM(m *M, path string) error",
		"func EncodeMsg(m Message) ([]byte, error)",
		"func DecodeMsg(b []byte, msgName string) (Message, error)",
		"func MergeMsgs(prev, next Message) (Message, error)",
		"func VerifyMsg(m Message) error",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}
}

// TestGenerateEncodersEmitsCanonicalVarintShape checks the encoder for the
// textbook required-int32 case (x=1, value 150 -> 08 96 01): the tag is a
// precomputed constant and the value is varint-appended with no zig-zag or
// fixed-width detour.
func TestGenerateEncodersEmitsCanonicalVarintShape(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "x", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateEncoders(s, f)
	src := string(s.Bytes())

	if !strings.Contains(src, "wire.EncodeTag(1, wire.VarintType)") {
		t.Errorf("expected a precomputed tag for field 1, got:\n%s", src)
	}
	if !strings.Contains(src, "uint64(int64(m.X))") {
		t.Errorf("expected int32 to be sign-extended to int64 before varint coding, got:\n%s", src)
	}
}

// TestGeneratePackedFieldEncodeUsesStaticSizeFastPath checks that a packed
// fixed-width repeated field skips the scratch-buffer path.
func TestGeneratePackedFieldEncodeUsesStaticSizeFastPath(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "xs", FNum: 1, Type: "fixed32", Occurrence: schema.Repeated,
				Opts: []schema.RawOption{{Name: "packed", Value: true}}},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateEncoders(s, f)
	src := string(s.Bytes())

	if !strings.Contains(src, "len(m.Xs)*4") {
		t.Errorf("expected the static-size fast path (count*4), got:\n%s", src)
	}
	if strings.Contains(src, "var scratch []byte") {
		t.Errorf("fixed-width packed field should not use the scratch buffer path, got:\n%s", src)
	}
}

// TestGeneratePackedFieldEncodeUsesScratchBufferForVarint checks the
// opposite case: a varint-coded packed field's size is value-dependent, so
// it must go through the scratch buffer.
func TestGeneratePackedFieldEncodeUsesScratchBufferForVarint(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "xs", FNum: 1, Type: "int32", Occurrence: schema.Repeated,
				Opts: []schema.RawOption{{Name: "packed", Value: true}}},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateEncoders(s, f)
	src := string(s.Bytes())

	if !strings.Contains(src, "var scratch []byte") {
		t.Errorf("expected the scratch-buffer path for a varint-coded packed field, got:\n%s", src)
	}
}

// TestGenerateDecodersAcceptsInterleavedPackedAndUnpacked checks that a
// repeated scalar field's decoder has both a direct-wire-type case and a
// BytesType (packed) case in the same switch.
func TestGenerateDecodersAcceptsInterleavedPackedAndUnpacked(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "xs", FNum: 1, Type: "int32", Occurrence: schema.Repeated},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	decision := feature.Negotiate(feature.Options{}, f.Cyclic)
	GenerateDecoders(s, f, decision)
	src := string(s.Bytes())

	if !strings.Contains(src, "case wire.VarintType:") || !strings.Contains(src, "case wire.BytesType:") {
		t.Errorf("expected both unpacked and packed cases in the decoder, got:\n%s", src)
	}
}

// TestGenerateMergersConcatenateRepeatedFields checks that the repeated-field
// merge rule is emitted as an append of prev then next, and that
// sub-message fields dispatch to the sub-message's own merger.
func TestGenerateMergersConcatenateRepeatedFields(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "Sub", Fields: []schema.RawField{
			{Name: "v", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "xs", FNum: 1, Type: "int32", Occurrence: schema.Repeated},
			{Name: "sub", FNum: 2, Type: "Sub", Occurrence: schema.Optional},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateMergers(s, f)
	src := string(s.Bytes())

	if !strings.Contains(src, "append(append([]int32{}, prev.Xs...), next.Xs...)") {
		t.Errorf("expected repeated field concatenation, got:\n%s", src)
	}
	if !strings.Contains(src, "MergeSub(prev.Sub, next.Sub)") {
		t.Errorf("expected recursive sub-message merge, got:\n%s", src)
	}
}

// TestGenerateVerifiersRejectsMissingRequiredSubMessage checks that
// "required absence is itself a violation" rule is emitted for a required
// message field.
func TestGenerateVerifiersRejectsMissingRequiredSubMessage(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "Sub", Fields: []schema.RawField{
			{Name: "v", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "sub", FNum: 1, Type: "Sub", Occurrence: schema.Required},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateVerifiers(s, f)
	src := string(s.Bytes())

	if !strings.Contains(src, `"missing_required_field"`) {
		t.Errorf("expected a missing_required_field check, got:\n%s", src)
	}
}
