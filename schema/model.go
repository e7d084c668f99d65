// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

// EnumValue is a resolved (symbol, value) pair.
type EnumValue struct {
	Symbol string
	Value  int32
}

// Enum is a resolved enum definition: a fully-qualified name plus its
// ordered symbol/value pairs.
type Enum struct {
	Name   string
	Values []EnumValue
}

// ValueOf returns the integer bound to symbol and reports whether symbol
// is declared on e.
func (e *Enum) ValueOf(symbol string) (int32, bool) {
	for _, v := range e.Values {
		if v.Symbol == symbol {
			return v.Value, true
		}
	}
	return 0, false
}

// SymbolOf returns the first symbol bound to value and reports whether
// any symbol declares it.
func (e *Enum) SymbolOf(value int32) (string, bool) {
	for _, v := range e.Values {
		if v.Value == value {
			return v.Symbol, true
		}
	}
	return "", false
}

// Field is a fully resolved field descriptor.
type Field struct {
	Name       string
	FNum       int32
	RNum       int
	Kind       Kind
	Occurrence Occurrence
	EnumRef    *Enum    // set iff Kind == KindEnum
	MsgRef     *Message // set iff Kind == KindMessage
	Packed     bool
	HasDefault bool
	Default    interface{}
}

// Message is a fully resolved message definition: a qualified name plus
// an ordered list of field descriptors.
type Message struct {
	Name           string
	Fields         []*Field
	ReservedRanges []ReservedRange
}

// FieldByNumber returns the field with the given wire number, or nil.
func (m *Message) FieldByNumber(fnum int32) *Field {
	for _, f := range m.Fields {
		if f.FNum == fnum {
			return f
		}
	}
	return nil
}

// File is the canonicalized schema produced by the normalizer (and, once the topological sort has run,
// topologically ordered by message dependency).
type File struct {
	Enums    []*Enum
	Messages []*Message
	// Cyclic reports whether the topological sort detected a cycle in the
	// message reference graph; when true, Messages retains its pre-sort
	// declaration order.
	Cyclic bool
}

// EnumByName returns the enum with the given fully-qualified name, or nil.
func (f *File) EnumByName(name string) *Enum {
	for _, e := range f.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// MessageByName returns the message with the given fully-qualified name,
// or nil.
func (f *File) MessageByName(name string) *Message {
	for _, m := range f.Messages {
		if m.Name == name {
			return m
		}
	}
	return nil
}
