// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"fmt"
	"strconv"

	"github.com/gpbc-project/gpbc/schema"
)

// GenerateTypes emits the Go named type for every enum and the Go struct
// for every message in f. This is the common model that encoder, decoder,
// merger, and verifier synthesis all generate code against; it
// corresponds to the struct/const declarations protoc-gen-go emits ahead
// of the methods that operate on them.
func GenerateTypes(s *Source, f *schema.File) {
	for _, e := range f.Enums {
		generateEnum(s, e)
	}
	for _, m := range f.Messages {
		generateMessageStruct(s, m)
	}
}

func generateEnum(s *Source, e *schema.Enum) {
	name := GoTypeName(e.Name)
	s.P("type ", name, " int32")
	s.P()
	s.P("const (")
	for _, v := range e.Values {
		s.P(name, "_", goIdentSafe(v.Symbol), " ", name, " = ", v.Value)
	}
	s.P(")")
	s.P()
	s.P("var ", name, "_name = map[int32]string{")
	for _, v := range e.Values {
		s.P(v.Value, ": ", strconv.Quote(v.Symbol), ",")
	}
	s.P("}")
	s.P()
	s.P("var ", name, "_value = map[string]int32{")
	for _, v := range e.Values {
		s.P(strconv.Quote(v.Symbol), ": ", v.Value, ",")
	}
	s.P("}")
	s.P()
	s.P("func (x ", name, ") String() string {")
	s.P("if n, ok := ", name, "_name[int32(x)]; ok {")
	s.P("return n")
	s.P("}")
	s.P(`return "` + name + `(" + strconv.FormatInt(int64(x), 10) + ")"`)
	s.P("}")
	s.P()
}

func generateMessageStruct(s *Source, m *schema.Message) {
	name := GoTypeName(m.Name)
	s.P("type ", name, " struct {")
	for _, f := range m.Fields {
		s.P(goIdentSafe(GoFieldName(f.Name)), " ", FieldGoType(f))
	}
	s.P("}")
	s.P()
	s.P("func (*", name, ") gpbMessageName() string { return ", strconv.Quote(m.Name), " }")
	s.P()
}

// fieldAccessor is a small helper encode.go uses for naming a field's Go
// struct accessor.
func fieldAccessor(recv string, f *schema.Field) string {
	return fmt.Sprintf("%s.%s", recv, goIdentSafe(GoFieldName(f.Name)))
}
