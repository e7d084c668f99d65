// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"strings"
	"testing"

	"github.com/gpbc-project/gpbc/schema"
)

// TestGenerateVerifiersChecksEnumMembership checks that an enum field's
// value must equal one of the declared symbols, for required, optional,
// and repeated enum fields.
func TestGenerateVerifiersChecksEnumMembership(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.EnumDefKind, Name: "E", Values: []schema.RawEnumValue{
			{Symbol: "A", Value: 0},
		}},
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "req", FNum: 1, Type: "E", Occurrence: schema.Required},
			{Name: "opt", FNum: 2, Type: "E", Occurrence: schema.Optional},
			{Name: "rep", FNum: 3, Type: "E", Occurrence: schema.Repeated},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateVerifiers(s, f)
	src := string(s.Bytes())

	if strings.Count(src, `"invalid_enum_value"`) != 3 {
		t.Errorf("expected one invalid_enum_value check per enum field, got:\n%s", src)
	}
	if !strings.Contains(src, "for _, ev := range m.Rep {") {
		t.Errorf("expected repeated enum field to be checked element-wise, got:\n%s", src)
	}
}

// TestGenerateVerifiersSkipsAbsentOptionalSubMessage checks that an
// optional sub-message is validated only when present.
func TestGenerateVerifiersSkipsAbsentOptionalSubMessage(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "Sub", Fields: []schema.RawField{
			{Name: "v", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "sub", FNum: 1, Type: "Sub", Occurrence: schema.Optional},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateVerifiers(s, f)
	src := string(s.Bytes())

	if !strings.Contains(src, "VerifySub(m.Sub, fieldPath(path, \"sub\"))") {
		t.Errorf("expected optional sub-message to be verified via Verify<Sub>, which itself treats a nil receiver as valid, got:\n%s", src)
	}
	if strings.Contains(src, `m.Sub == nil`) {
		t.Errorf("optional sub-message field must not require presence, got:\n%s", src)
	}
}

// TestGenerateVerifiersChecksStringUTF8 checks that required, optional, and
// repeated string fields are each validated with utf8.ValidString.
func TestGenerateVerifiersChecksStringUTF8(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "req", FNum: 1, Type: "string", Occurrence: schema.Required},
			{Name: "opt", FNum: 2, Type: "string", Occurrence: schema.Optional},
			{Name: "rep", FNum: 3, Type: "string", Occurrence: schema.Repeated},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateVerifiers(s, f)
	src := string(s.Bytes())

	if strings.Count(src, "utf8.ValidString") != 3 {
		t.Errorf("expected one utf8.ValidString check per string field, got:\n%s", src)
	}
	if !strings.Contains(src, "if !utf8.ValidString(m.Req) {") {
		t.Errorf("expected required string field to be checked directly, got:\n%s", src)
	}
	if !strings.Contains(src, "for _, ev := range m.Rep {") {
		t.Errorf("expected repeated string field to be checked element-wise, got:\n%s", src)
	}
	if strings.Count(src, `"invalid_utf8"`) != 3 {
		t.Errorf("expected invalid_utf8 reason on every string check, got:\n%s", src)
	}
}

// TestGenerateVerifiersTracksDottedPath checks that a nested field's path
// concatenates parent and child field names.
func TestGenerateVerifiersTracksDottedPath(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "Sub", Fields: []schema.RawField{
			{Name: "inner", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "sub", FNum: 1, Type: "Sub", Occurrence: schema.Required},
		}},
	}}
	f := mustNormalize(t, raw)

	s := &Source{}
	GenerateVerifiers(s, f)
	src := string(s.Bytes())

	if !strings.Contains(src, `fieldPath(path, "sub")`) {
		t.Errorf("expected the sub-message field's path segment to be appended, got:\n%s", src)
	}
}
