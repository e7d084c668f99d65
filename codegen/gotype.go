// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "github.com/gpbc-project/gpbc/schema"

// GoScalarType returns the Go type used to hold a value of the given
// scalar Kind. Enum and message kinds are handled by their own
// synthesized named types and are not covered here.
func GoScalarType(k schema.Kind) string {
	switch k {
	case schema.KindSInt32, schema.KindInt32, schema.KindSFixed32:
		return "int32"
	case schema.KindSInt64, schema.KindInt64, schema.KindSFixed64:
		return "int64"
	case schema.KindUInt32, schema.KindFixed32:
		return "uint32"
	case schema.KindUInt64, schema.KindFixed64:
		return "uint64"
	case schema.KindBool:
		return "bool"
	case schema.KindFloat:
		return "float32"
	case schema.KindDouble:
		return "float64"
	case schema.KindString:
		return "string"
	case schema.KindBytes:
		return "[]byte"
	default:
		return "interface{}"
	}
}

// FieldElemGoType returns the Go type of a single element of field f,
// ignoring its occurrence (a repeated field's slice element type, or an
// optional field's pointee type).
func FieldElemGoType(f *schema.Field) string {
	switch f.Kind {
	case schema.KindEnum:
		return GoTypeName(f.EnumRef.Name)
	case schema.KindMessage:
		return "*" + GoTypeName(f.MsgRef.Name)
	default:
		return GoScalarType(f.Kind)
	}
}

// FieldGoType returns the full Go type of field f as it appears in the
// generated struct: T for required, *T for optional scalars/enums (message
// fields are already pointers and stay bare), []T for repeated.
func FieldGoType(f *schema.Field) string {
	elem := FieldElemGoType(f)
	switch f.Occurrence {
	case schema.Repeated:
		return "[]" + elem
	case schema.Optional:
		if f.Kind == schema.KindMessage {
			return elem // already a pointer
		}
		return "*" + elem
	default: // Required
		return elem
	}
}
