// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeSimpleMessage(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{
			Kind: MessageDefKind,
			Name: "M",
			Fields: []RawField{
				{Name: "x", FNum: 1, Type: "int32", Occurrence: Required},
			},
		},
	}}

	f, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(f.Messages) != 1 || f.Messages[0].Name != "M" {
		t.Fatalf("got messages %+v", f.Messages)
	}
	field := f.Messages[0].Fields[0]
	if field.Kind != KindInt32 || field.FNum != 1 || field.RNum != 1 {
		t.Fatalf("got field %+v", field)
	}
}

func TestNormalizeFlattensNestedAndResolvesReferences(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{
			Kind: MessageDefKind,
			Name: "Outer",
			Fields: []RawField{
				{Name: "s", FNum: 1, Type: "Sub", Occurrence: Optional},
			},
			Nested: []RawDef{
				{
					Kind: MessageDefKind,
					Name: "Sub",
					Fields: []RawField{
						{Name: "v", FNum: 1, Type: "int32", Occurrence: Required},
					},
				},
			},
		},
	}}

	f, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if f.MessageByName("Outer.Sub") == nil {
		t.Fatalf("expected flattened message Outer.Sub, got %+v", f.Messages)
	}
	field := f.MessageByName("Outer").Fields[0]
	if field.Kind != KindMessage || field.MsgRef != f.MessageByName("Outer.Sub") {
		t.Fatalf("field did not resolve to Outer.Sub: %+v", field)
	}
}

func TestNormalizeAppliesExtend(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{Kind: MessageDefKind, Name: "Base", Fields: []RawField{
			{Name: "a", FNum: 1, Type: "int32", Occurrence: Optional},
		}},
		{Kind: MessageDefKind, Extendee: "Base", Fields: []RawField{
			{Name: "b", FNum: 100, Type: "string", Occurrence: Optional},
		}},
	}}

	f, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	base := f.MessageByName("Base")
	if len(base.Fields) != 2 || base.Fields[1].Name != "b" || base.Fields[1].RNum != 2 {
		t.Fatalf("extend not applied: %+v", base.Fields)
	}
}

func TestValidateRejectsDuplicateFieldNumber(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{Kind: MessageDefKind, Name: "M", Fields: []RawField{
			{Name: "a", FNum: 1, Type: "int32", Occurrence: Optional},
			{Name: "b", FNum: 1, Type: "string", Occurrence: Optional},
		}},
	}}
	if _, err := Normalize(raw); err == nil {
		t.Fatal("expected duplicate field-number error")
	}
}

func TestValidateRejectsPackedOnMessageField(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{Kind: MessageDefKind, Name: "Sub", Fields: []RawField{
			{Name: "v", FNum: 1, Type: "int32", Occurrence: Required},
		}},
		{Kind: MessageDefKind, Name: "M", Fields: []RawField{
			{Name: "subs", FNum: 1, Type: "Sub", Occurrence: Repeated, Opts: []RawOption{{Name: "packed", Value: true}}},
		}},
	}}
	if _, err := Normalize(raw); err == nil {
		t.Fatal("expected packed-on-message-field error")
	}
}

func TestValidateRejectsUnresolvedType(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{Kind: MessageDefKind, Name: "M", Fields: []RawField{
			{Name: "a", FNum: 1, Type: "Nonexistent", Occurrence: Optional},
		}},
	}}
	if _, err := Normalize(raw); err == nil {
		t.Fatal("expected unresolved-type error")
	}
}

func TestTopoSortOrdersDependenciesFirst(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{Kind: MessageDefKind, Name: "Top", Fields: []RawField{
			{Name: "mid", FNum: 1, Type: "Mid", Occurrence: Optional},
		}},
		{Kind: MessageDefKind, Name: "Mid", Fields: []RawField{
			{Name: "leaf", FNum: 1, Type: "Leaf", Occurrence: Optional},
		}},
		{Kind: MessageDefKind, Name: "Leaf", Fields: []RawField{
			{Name: "v", FNum: 1, Type: "int32", Occurrence: Required},
		}},
	}}

	f, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	sorted := TopoSort(f)
	if sorted.Cyclic {
		t.Fatal("expected acyclic schema")
	}
	var names []string
	for _, m := range sorted.Messages {
		names = append(names, m.Name)
	}
	want := []string{"Leaf", "Mid", "Top"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestTopoSortDetectsCycle(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{Kind: MessageDefKind, Name: "A", Fields: []RawField{
			{Name: "b", FNum: 1, Type: "B", Occurrence: Optional},
		}},
		{Kind: MessageDefKind, Name: "B", Fields: []RawField{
			{Name: "a", FNum: 1, Type: "A", Occurrence: Optional},
		}},
	}}
	f, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	sorted := TopoSort(f)
	if !sorted.Cyclic {
		t.Fatal("expected cyclic schema to be detected")
	}
	var before, after []string
	for _, m := range f.Messages {
		before = append(before, m.Name)
	}
	for _, m := range sorted.Messages {
		after = append(after, m.Name)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("cyclic schema should preserve original order (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsFieldNumberInReservedRange(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{
			Kind:           MessageDefKind,
			Name:           "M",
			ReservedRanges: []ReservedRange{{Start: 5, End: 10}},
			Fields: []RawField{
				{Name: "a", FNum: 7, Type: "int32", Occurrence: Optional},
			},
		},
	}}
	if _, err := Normalize(raw); err == nil {
		t.Fatal("expected reserved-range field-number error")
	}
}

func TestNormalizeKeepsNegativeEnumValue(t *testing.T) {
	raw := RawSchema{Defs: []RawDef{
		{Kind: EnumDefKind, Name: "E", Values: []RawEnumValue{
			{Symbol: "A", Value: 0},
			{Symbol: "B", Value: -1},
		}},
	}}
	f, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	e := f.EnumByName("E")
	if v, ok := e.ValueOf("B"); !ok || v != -1 {
		t.Fatalf("E.B = %d, %v", v, ok)
	}
}
