// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interop bridges gpbc's own schema.File representation to the
// wider protobuf ecosystem's descriptorpb.FileDescriptorProto, so a
// schema compiled by gpbc can be cross-checked against (or loaded from) a
// toolchain that speaks the standard descriptor wire format. This is
// additive: no pipeline stage depends on it.
package interop

import (
	"fmt"

	legacyproto "github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/gpbc-project/gpbc/gpberr"
	"github.com/gpbc-project/gpbc/schema"
)

// ToFileDescriptorProto converts a normalized schema.File into the
// FileDescriptorProto shape the rest of the protobuf ecosystem exchanges.
func ToFileDescriptorProto(f *schema.File, packageName string) *descriptorpb.FileDescriptorProto {
	fd := &descriptorpb.FileDescriptorProto{
		Name:    legacyproto.String(packageName + ".proto"),
		Package: legacyproto.String(packageName),
		Syntax:  legacyproto.String("proto2"),
	}
	for _, e := range f.Enums {
		fd.EnumType = append(fd.EnumType, enumDescriptorProto(e))
	}
	for _, m := range f.Messages {
		fd.MessageType = append(fd.MessageType, messageDescriptorProto(m))
	}
	return fd
}

func enumDescriptorProto(e *schema.Enum) *descriptorpb.EnumDescriptorProto {
	ed := &descriptorpb.EnumDescriptorProto{Name: legacyproto.String(localName(e.Name))}
	for _, v := range e.Values {
		ed.Value = append(ed.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   legacyproto.String(v.Symbol),
			Number: legacyproto.Int32(v.Value),
		})
	}
	return ed
}

func messageDescriptorProto(m *schema.Message) *descriptorpb.DescriptorProto {
	md := &descriptorpb.DescriptorProto{Name: legacyproto.String(localName(m.Name))}
	for _, f := range m.Fields {
		md.Field = append(md.Field, fieldDescriptorProto(f))
	}
	return md
}

func fieldDescriptorProto(f *schema.Field) *descriptorpb.FieldDescriptorProto {
	fdp := &descriptorpb.FieldDescriptorProto{
		Name:   legacyproto.String(f.Name),
		Number: legacyproto.Int32(f.FNum),
		Label:  labelOf(f.Occurrence).Enum(),
		Type:   typeOf(f.Kind).Enum(),
	}
	switch f.Kind {
	case schema.KindEnum:
		fdp.TypeName = legacyproto.String(f.EnumRef.Name)
	case schema.KindMessage:
		fdp.TypeName = legacyproto.String(f.MsgRef.Name)
	}
	if f.Packed {
		fdp.Options = &descriptorpb.FieldOptions{Packed: legacyproto.Bool(true)}
	}
	if f.HasDefault {
		fdp.DefaultValue = legacyproto.String(fmt.Sprint(f.Default))
	}
	return fdp
}

func labelOf(o schema.Occurrence) descriptorpb.FieldDescriptorProto_Label {
	switch o {
	case schema.Required:
		return descriptorpb.FieldDescriptorProto_LABEL_REQUIRED
	case schema.Repeated:
		return descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	default:
		return descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	}
}

func typeOf(k schema.Kind) descriptorpb.FieldDescriptorProto_Type {
	switch k {
	case schema.KindSInt32:
		return descriptorpb.FieldDescriptorProto_TYPE_SINT32
	case schema.KindSInt64:
		return descriptorpb.FieldDescriptorProto_TYPE_SINT64
	case schema.KindInt32:
		return descriptorpb.FieldDescriptorProto_TYPE_INT32
	case schema.KindInt64:
		return descriptorpb.FieldDescriptorProto_TYPE_INT64
	case schema.KindUInt32:
		return descriptorpb.FieldDescriptorProto_TYPE_UINT32
	case schema.KindUInt64:
		return descriptorpb.FieldDescriptorProto_TYPE_UINT64
	case schema.KindBool:
		return descriptorpb.FieldDescriptorProto_TYPE_BOOL
	case schema.KindFixed32:
		return descriptorpb.FieldDescriptorProto_TYPE_FIXED32
	case schema.KindSFixed32:
		return descriptorpb.FieldDescriptorProto_TYPE_SFIXED32
	case schema.KindFloat:
		return descriptorpb.FieldDescriptorProto_TYPE_FLOAT
	case schema.KindFixed64:
		return descriptorpb.FieldDescriptorProto_TYPE_FIXED64
	case schema.KindSFixed64:
		return descriptorpb.FieldDescriptorProto_TYPE_SFIXED64
	case schema.KindDouble:
		return descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	case schema.KindString:
		return descriptorpb.FieldDescriptorProto_TYPE_STRING
	case schema.KindBytes:
		return descriptorpb.FieldDescriptorProto_TYPE_BYTES
	case schema.KindEnum:
		return descriptorpb.FieldDescriptorProto_TYPE_ENUM
	default:
		return descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	}
}

// FromFileDescriptorProto converts a FileDescriptorProto back into the raw
// definition list the normalizer consumes, the reverse direction of
// ToFileDescriptorProto. Only the subset of descriptorpb this package
// itself produces is accepted; services, oneofs, and proto3 syntax are
// rejected as out of scope. A round trip through both functions does not
// reproduce a schema with nested definitions (ToFileDescriptorProto keeps
// only the last component of their names) or with non-string defaults
// (they come back as strings).
func FromFileDescriptorProto(fd *descriptorpb.FileDescriptorProto) (schema.RawSchema, error) {
	if fd.GetSyntax() != "" && fd.GetSyntax() != "proto2" {
		return schema.RawSchema{}, &gpberr.InternalError{Stage: "interop", Detail: "only proto2 syntax is supported"}
	}
	if len(fd.GetService()) > 0 {
		return schema.RawSchema{}, &gpberr.InternalError{Stage: "interop", Detail: "services are not supported"}
	}
	pkg := fd.GetPackage()
	var defs []schema.RawDef
	for _, ed := range fd.GetEnumType() {
		defs = append(defs, rawEnumDef(ed, pkg))
	}
	for _, md := range fd.GetMessageType() {
		def, err := rawMessageDef(md, pkg)
		if err != nil {
			return schema.RawSchema{}, err
		}
		defs = append(defs, def)
	}
	return schema.RawSchema{Defs: defs}, nil
}

func rawEnumDef(ed *descriptorpb.EnumDescriptorProto, pkg string) schema.RawDef {
	def := schema.RawDef{Kind: schema.EnumDefKind, Name: ed.GetName(), Package: pkg}
	for _, v := range ed.GetValue() {
		def.Values = append(def.Values, schema.RawEnumValue{Symbol: v.GetName(), Value: v.GetNumber()})
	}
	return def
}

func rawMessageDef(md *descriptorpb.DescriptorProto, pkg string) (schema.RawDef, error) {
	def := schema.RawDef{Kind: schema.MessageDefKind, Name: md.GetName(), Package: pkg}
	for _, fdp := range md.GetField() {
		if fdp.OneofIndex != nil {
			return schema.RawDef{}, &gpberr.InternalError{Stage: "interop", Detail: "oneof fields are not supported"}
		}
		rf, err := rawField(fdp)
		if err != nil {
			return schema.RawDef{}, err
		}
		def.Fields = append(def.Fields, rf)
	}
	return def, nil
}

func rawField(fdp *descriptorpb.FieldDescriptorProto) (schema.RawField, error) {
	rf := schema.RawField{
		Name:       fdp.GetName(),
		FNum:       fdp.GetNumber(),
		Occurrence: occurrenceOf(fdp.GetLabel()),
		Type:       typeNameOf(fdp),
	}
	if fdp.GetOptions().GetPacked() {
		rf.Opts = append(rf.Opts, schema.RawOption{Name: "packed", Value: true})
	}
	if fdp.DefaultValue != nil {
		rf.Opts = append(rf.Opts, schema.RawOption{Name: "default", Value: fdp.GetDefaultValue()})
	}
	return rf, nil
}

func occurrenceOf(l descriptorpb.FieldDescriptorProto_Label) schema.Occurrence {
	switch l {
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		return schema.Required
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		return schema.Repeated
	default:
		return schema.Optional
	}
}

func typeNameOf(fdp *descriptorpb.FieldDescriptorProto) string {
	switch fdp.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		// TypeName carries a leading '.' for a fully-qualified reference in
		// the standard descriptor format; the normalizer's own absolutification expects
		// a bare (possibly relative) name, so the leading dot is trimmed.
		name := fdp.GetTypeName()
		if len(name) > 0 && name[0] == '.' {
			name = name[1:]
		}
		return name
	default:
		return scalarTypeName(fdp.GetType())
	}
}

func scalarTypeName(t descriptorpb.FieldDescriptorProto_Type) string {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_SINT32:
		return "sint32"
	case descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		return "sint64"
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		return "int32"
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return "int64"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32:
		return "uint32"
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64:
		return "uint64"
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return "bool"
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return "fixed32"
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return "sfixed32"
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return "float"
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return "fixed64"
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return "sfixed64"
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return "double"
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return "string"
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return "bytes"
	default:
		return ""
	}
}

func localName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}

// MarshalFileDescriptorProto and UnmarshalFileDescriptorProto round-trip a
// FileDescriptorProto through the standard protobuf wire format, using the
// legacy github.com/golang/protobuf/proto entry points directly (the same
// shim protoc-gen-go's own internal/depv1 package exercises) over the
// google.golang.org/protobuf-generated descriptorpb message type.
func MarshalFileDescriptorProto(fd *descriptorpb.FileDescriptorProto) ([]byte, error) {
	return legacyproto.Marshal(fd)
}

func UnmarshalFileDescriptorProto(b []byte) (*descriptorpb.FileDescriptorProto, error) {
	fd := &descriptorpb.FileDescriptorProto{}
	if err := legacyproto.Unmarshal(b, fd); err != nil {
		return nil, err
	}
	return fd, nil
}
