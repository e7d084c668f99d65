// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "strings"

// GoTypeName converts a fully-qualified schema name ("Outer.Sub") into the
// flat exported Go identifier protoc-gen-go itself would emit for a
// nested type ("Outer_Sub").
func GoTypeName(qualified string) string {
	return strings.ReplaceAll(qualified, ".", "_")
}

// GoFieldName converts a snake_case (or already-mixed-case) schema field
// name into an exported Go struct field name, the same transform
// internal/strs.JSONCamelCase performs for protobuf's JSON names, except
// the first letter is also capitalized since Go requires an exported
// identifier to start with an uppercase letter.
func GoFieldName(name string) string {
	var b strings.Builder
	upperNext := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			upperNext = true
			continue
		}
		if upperNext && 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = false
		b.WriteByte(c)
	}
	return b.String()
}

// goIdentSafe appends an underscore to identifiers that collide with a Go
// keyword or with the method names Reset and String.
func goIdentSafe(name string) string {
	switch name {
	case "type", "func", "interface", "struct", "map", "range", "go",
		"package", "import", "var", "const", "return", "defer", "Reset", "String":
		return name + "_"
	default:
		return name
	}
}
