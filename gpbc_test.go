// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpbc

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpbc-project/gpbc/feature"
	"github.com/gpbc-project/gpbc/schema"
)

// memFileWriter is an in-memory codegen.FileWriter, for hermetic testing of
// the non-binary artifact-emission path.
type memFileWriter map[string][]byte

func (m memFileWriter) WriteFile(dir, name string, contents []byte) error {
	key := name
	if dir != "" {
		key = dir + "/" + name
	}
	m[key] = append([]byte(nil), contents...)
	return nil
}

func simpleSchema() schema.RawSchema {
	return schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "x", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
	}}
}

func TestMsgDefsWritesSourceAndDefsFiles(t *testing.T) {
	fw := memFileWriter{}
	res, err := MsgDefs("testpb", simpleSchema(), Options{
		OutDir:     "out",
		FileWriter: fw,
		Verify:     feature.VerifyAlways,
	})
	require.NoError(t, err)
	assert.Len(t, res.WrittenFiles, 2)
	assert.Contains(t, fw, "out/testpb.go")
	assert.Contains(t, fw, "out/testpb.defs.yaml")

	fset := token.NewFileSet()
	_, err = parser.ParseFile(fset, "testpb.go", fw["out/testpb.go"], parser.AllErrors)
	require.NoError(t, err, "written source does not parse")
}

func TestMsgDefsRejectsInvalidSchema(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "M", Fields: []schema.RawField{
			{Name: "a", FNum: 1, Type: "int32", Occurrence: schema.Optional},
			{Name: "b", FNum: 1, Type: "string", Occurrence: schema.Optional},
		}},
	}}
	_, err := MsgDefs("testpb", raw, Options{OutDir: "out", FileWriter: memFileWriter{}})
	assert.Error(t, err, "expected a verify_defs_failed error for the duplicate field number")
}

func TestMsgDefsProbeDefsHookReceivesSortedSchema(t *testing.T) {
	raw := schema.RawSchema{Defs: []schema.RawDef{
		{Kind: schema.MessageDefKind, Name: "Top", Fields: []schema.RawField{
			{Name: "leaf", FNum: 1, Type: "Leaf", Occurrence: schema.Optional},
		}},
		{Kind: schema.MessageDefKind, Name: "Leaf", Fields: []schema.RawField{
			{Name: "v", FNum: 1, Type: "int32", Occurrence: schema.Required},
		}},
	}}

	var probed *schema.File
	_, err := MsgDefs("testpb", raw, Options{
		OutDir:     "out",
		FileWriter: memFileWriter{},
		ProbeDefs:  func(f *schema.File) { probed = f },
	})
	require.NoError(t, err)
	require.NotNil(t, probed)
	require.Len(t, probed.Messages, 2)
	assert.Equal(t, "Leaf", probed.Messages[0].Name)
}
