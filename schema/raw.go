// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema implements the data model and the normalizer/topological-sort
// stages that turn a parser's raw definition list into a normalized,
// dependency-ordered schema.
package schema

// Occurrence is the 3-variant cardinality tag of a field: required,
// optional, or repeated.
type Occurrence int

const (
	Required Occurrence = iota
	Optional
	Repeated
)

func (o Occurrence) String() string {
	switch o {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	default:
		return "unknown"
	}
}

// Kind is the tagged variant over the 15 scalar kinds plus enum/message
// references.
type Kind int

const (
	KindSInt32 Kind = iota
	KindSInt64
	KindInt32
	KindInt64
	KindUInt32
	KindUInt64
	KindBool
	KindFixed32
	KindSFixed32
	KindFloat
	KindFixed64
	KindSFixed64
	KindDouble
	KindString
	KindBytes
	KindEnum
	KindMessage
)

var kindNames = map[string]Kind{
	"sint32":   KindSInt32,
	"sint64":   KindSInt64,
	"int32":    KindInt32,
	"int64":    KindInt64,
	"uint32":   KindUInt32,
	"uint64":   KindUInt64,
	"bool":     KindBool,
	"fixed32":  KindFixed32,
	"sfixed32": KindSFixed32,
	"float":    KindFloat,
	"fixed64":  KindFixed64,
	"sfixed64": KindSFixed64,
	"double":   KindDouble,
	"string":   KindString,
	"bytes":    KindBytes,
}

// LookupScalarKind reports whether name names one of the 15 built-in
// scalar types, returning its Kind if so.
func LookupScalarKind(name string) (Kind, bool) {
	k, ok := kindNames[name]
	return k, ok
}

func (k Kind) String() string {
	for name, kk := range kindNames {
		if kk == k {
			return name
		}
	}
	switch k {
	case KindEnum:
		return "enum"
	case KindMessage:
		return "message"
	default:
		return "invalid"
	}
}

// IsVarint reports whether k is encoded with the varint wire type.
func (k Kind) IsVarint() bool {
	switch k {
	case KindSInt32, KindSInt64, KindInt32, KindInt64, KindUInt32, KindUInt64, KindBool, KindEnum:
		return true
	default:
		return false
	}
}

// Is32Bit reports whether k is encoded with the 32-bit wire type.
func (k Kind) Is32Bit() bool {
	switch k {
	case KindFixed32, KindSFixed32, KindFloat:
		return true
	default:
		return false
	}
}

// Is64Bit reports whether k is encoded with the 64-bit wire type.
func (k Kind) Is64Bit() bool {
	switch k {
	case KindFixed64, KindSFixed64, KindDouble:
		return true
	default:
		return false
	}
}

// IsLengthDelimited reports whether k is encoded with the length-delimited
// wire type when not packed.
func (k Kind) IsLengthDelimited() bool {
	switch k {
	case KindString, KindBytes, KindMessage:
		return true
	default:
		return false
	}
}

// IsPackable reports whether a repeated field of kind k may carry the
// packed option.
func (k Kind) IsPackable() bool {
	return k != KindString && k != KindBytes && k != KindMessage
}

// StaticSize returns the fixed per-element wire size of k when known
// without inspecting the value (used by the encoder synthesizer to pick
// the size-known packed fast path). ok is false for varint-coded kinds,
// whose size depends on the value.
func (k Kind) StaticSize() (size int, ok bool) {
	switch {
	case k.Is32Bit():
		return 4, true
	case k.Is64Bit():
		return 8, true
	default:
		return 0, false
	}
}

// RawOption is a single field-level or value-level option as produced by
// the external parser collaborator. gpbc's core only interprets "packed"
// and "default"; the normalizer ignores any other option.
type RawOption struct {
	Name  string
	Value interface{}
}

// RawField is a field descriptor as it appears in the parser's raw
// definition list, before normalization. Type is a possibly-relative,
// possibly-unresolved type name; scalar keywords name themselves.
type RawField struct {
	Name       string
	FNum       int32
	Type       string
	Occurrence Occurrence
	Opts       []RawOption
}

// RawEnumValue is a single (symbol, value) pair within an enum definition.
type RawEnumValue struct {
	Symbol string
	Value  int32
}

// DefKind distinguishes the two definition shapes the parser emits.
type DefKind int

const (
	EnumDefKind DefKind = iota
	MessageDefKind
)

// ReservedRange is a [Start, End] field-number range (inclusive) a message
// declares off limits to its own fields and to any `extend` block
// targeting it.
type ReservedRange struct {
	Start int32
	End   int32
}

// Contains reports whether fnum falls within the reserved range.
func (r ReservedRange) Contains(fnum int32) bool {
	return fnum >= r.Start && fnum <= r.End
}

// RawDef is one element of the parser's output sequence. A message
// definition may carry Nested definitions (nested message/enum
// declarations) which the normalizer flattens to top level, and may be an
// `extend` block, in which case Extendee names the message the Fields are
// appended to. ReservedRanges is only meaningful on a message definition.
type RawDef struct {
	Kind           DefKind
	Name           string
	Package        string // enclosing scope at the point of declaration, set by the parser
	Values         []RawEnumValue
	Fields         []RawField
	Nested         []RawDef
	Extendee       string // non-empty iff this def is an `extend <Extendee> { ... }` block
	ReservedRanges []ReservedRange
}

// RawSchema is the input to the normalizer: everything the import resolver
// produced by resolving one file's import graph, in
// declarer-before-imports order.
type RawSchema struct {
	Defs []RawDef
}
