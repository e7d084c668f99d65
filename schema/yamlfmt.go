// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import "gopkg.in/yaml.v2"

// yamlEnum/yamlMessage/yamlField are plain, yaml-tagged mirrors of the
// resolved schema types. A direct yaml.Marshal of *File would recurse
// through MsgRef/EnumRef pointers and print each message's full
// definition every time it's referenced; these mirrors print only the
// referenced type's name, the way protoc-gen-yaml (LimKianAn/protoc-gen-yaml)
// renders a compiled descriptor as a flat, human-readable document.
type yamlEnum struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type yamlField struct {
	Name       string `yaml:"name"`
	FNum       int32  `yaml:"fnum"`
	RNum       int    `yaml:"rnum"`
	Type       string `yaml:"type"`
	Occurrence string `yaml:"occurrence"`
	Packed     bool   `yaml:"packed,omitempty"`
}

type yamlMessage struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlFile struct {
	Cyclic   bool          `yaml:"cyclic,omitempty"`
	Enums    []yamlEnum    `yaml:"enums,omitempty"`
	Messages []yamlMessage `yaml:"messages,omitempty"`
}

// DumpYAML renders a normalized (and, ideally, topologically sorted)
// schema as YAML; codegen.WriteArtifact writes it beside the generated
// source as the companion .defs.yaml file.
func (f *File) DumpYAML() ([]byte, error) {
	out := yamlFile{Cyclic: f.Cyclic}
	for _, e := range f.Enums {
		ye := yamlEnum{Name: e.Name}
		for _, v := range e.Values {
			ye.Values = append(ye.Values, v.Symbol)
		}
		out.Enums = append(out.Enums, ye)
	}
	for _, m := range f.Messages {
		ym := yamlMessage{Name: m.Name}
		for _, field := range m.Fields {
			typeName := field.Kind.String()
			if field.Kind == KindEnum {
				typeName = field.EnumRef.Name
			} else if field.Kind == KindMessage {
				typeName = field.MsgRef.Name
			}
			ym.Fields = append(ym.Fields, yamlField{
				Name:       field.Name,
				FNum:       field.FNum,
				RNum:       field.RNum,
				Type:       typeName,
				Occurrence: field.Occurrence.String(),
				Packed:     field.Packed,
			})
		}
		out.Messages = append(out.Messages, ym)
	}
	return yaml.Marshal(out)
}
