// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"
	"strings"

	"github.com/gpbc-project/gpbc/gpberr"
)

// Normalize runs the normalizer over raw, in order: absolutify names and
// flatten nested definitions, apply extend blocks, then resolve type
// references, assign dense rnum, and read field options. It then runs the
// field-invariant validation pass, which returns a
// *gpberr.VerifyDefsFailedError listing every violation it finds.
func Normalize(raw RawSchema) (*File, error) {
	b := &builder{
		enums:       map[string]*rawEnumEntry{},
		messages:    map[string]*rawMessageEntry{},
	}
	for _, d := range raw.Defs {
		if err := b.absolutifyAndFlatten(d, ""); err != nil {
			return nil, err
		}
	}
	if err := b.applyExtends(); err != nil {
		return nil, err
	}

	f := &File{}
	enumByName := map[string]*Enum{}
	for _, name := range b.enumOrder {
		re := b.enums[name]
		e := &Enum{Name: name, Values: append([]EnumValue(nil), re.values...)}
		enumByName[name] = e
		f.Enums = append(f.Enums, e)
	}

	msgByName := map[string]*Message{}
	for _, name := range b.messageOrder {
		m := &Message{Name: name, ReservedRanges: b.messages[name].reserved}
		msgByName[name] = m
		f.Messages = append(f.Messages, m)
	}

	// Second pass: resolve field types now that every message/enum name is
	// known, following reflect/protodesc/desc_resolve.go's two-pass shape
	// (declare everything, then resolve cross-references).
	for _, name := range b.messageOrder {
		rm := b.messages[name]
		m := msgByName[name]
		for rnum, rf := range rm.fields {
			field, err := b.resolveField(rf, rm.scope, enumByName, msgByName)
			if err != nil {
				return nil, err
			}
			field.RNum = rnum + 1 // rnum is dense, 1-based, in declaration order
			m.Fields = append(m.Fields, field)
		}
	}

	if err := validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

type rawEnumEntry struct {
	values []EnumValue
}

type rawMessageEntry struct {
	scope    string
	fields   []RawField
	reserved []ReservedRange
}

type builder struct {
	enums        map[string]*rawEnumEntry
	enumOrder    []string
	messages     map[string]*rawMessageEntry
	messageOrder []string
	extends      []extendOp
}

type extendOp struct {
	scope    string
	extendee string
	fields   []RawField
}

// absolutifyAndFlatten walks a raw definition tree, qualifying every name
// against its enclosing scope and flattening nested enum/message
// definitions into the builder's top-level tables.
func (b *builder) absolutifyAndFlatten(d RawDef, scope string) error {
	qualified := qualify(scope, d.Name)

	switch d.Kind {
	case EnumDefKind:
		if _, dup := b.enums[qualified]; dup {
			return verifyFailed("duplicate enum definition %q", qualified)
		}
		values := make([]EnumValue, len(d.Values))
		for i, v := range d.Values {
			values[i] = EnumValue{Symbol: v.Symbol, Value: v.Value}
		}
		b.enums[qualified] = &rawEnumEntry{values: values}
		b.enumOrder = append(b.enumOrder, qualified)
		return nil

	case MessageDefKind:
		if d.Extendee != "" {
			b.extends = append(b.extends, extendOp{
				scope:    scope,
				extendee: d.Extendee,
				fields:   d.Fields,
			})
			return nil
		}
		if _, dup := b.messages[qualified]; dup {
			return verifyFailed("duplicate message definition %q", qualified)
		}
		b.messages[qualified] = &rawMessageEntry{
			scope:    qualified,
			fields:   append([]RawField(nil), d.Fields...),
			reserved: append([]ReservedRange(nil), d.ReservedRanges...),
		}
		b.messageOrder = append(b.messageOrder, qualified)

		for _, nested := range d.Nested {
			if err := b.absolutifyAndFlatten(nested, qualified); err != nil {
				return err
			}
		}
		return nil

	default:
		return verifyFailed("unknown definition kind for %q", qualified)
	}
}

// applyExtends appends every `extend` block's fields to its resolved
// target message.
func (b *builder) applyExtends() error {
	for _, x := range b.extends {
		target, ok := resolveScopedMessage(b.messages, x.extendee, x.scope)
		if !ok {
			return verifyFailed("extend target %q not found", x.extendee)
		}
		entry := b.messages[target]
		entry.fields = append(entry.fields, x.fields...)
	}
	return nil
}

// resolveField converts a RawField into a resolved *Field, resolving
// scalar keywords directly and enum/message references via scope search.
func (b *builder) resolveField(rf RawField, scope string, enums map[string]*Enum, msgs map[string]*Message) (*Field, error) {
	f := &Field{
		Name:       rf.Name,
		FNum:       rf.FNum,
		Occurrence: rf.Occurrence,
	}

	if kind, ok := LookupScalarKind(rf.Type); ok {
		f.Kind = kind
	} else if name, ok := resolveScopedEnum(b.enums, rf.Type, scope); ok {
		f.Kind = KindEnum
		f.EnumRef = enums[name]
	} else if name, ok := resolveScopedMessage(b.messages, rf.Type, scope); ok {
		f.Kind = KindMessage
		f.MsgRef = msgs[name]
	} else {
		return nil, verifyFailed("field %s.%s: unresolved type %q", scope, rf.Name, rf.Type)
	}

	for _, opt := range rf.Opts {
		switch opt.Name {
		case "packed":
			packed, _ := opt.Value.(bool)
			f.Packed = packed
		case "default":
			f.HasDefault = true
			f.Default = opt.Value
		}
	}

	return f, nil
}

// resolveScopedName implements protobuf's C++-style nested scoping: a
// relative type name is looked up starting at the innermost enclosing
// scope and working outward to package scope, mirroring the fallback
// search in reflect/protodesc/desc_resolve.go's findEnumDescriptor and
// findMessageDescriptor. It is instantiated below for the enum and
// message tables since Go methods cannot themselves be generic.
func resolveScopedName[T any](table map[string]T, name, scope string) (string, bool) {
	if strings.HasPrefix(name, ".") {
		abs := strings.TrimPrefix(name, ".")
		if _, ok := table[abs]; ok {
			return abs, true
		}
		return "", false
	}
	for s := scope; ; s = parentScope(s) {
		candidate := qualify(s, name)
		if _, ok := table[candidate]; ok {
			return candidate, true
		}
		if s == "" {
			break
		}
	}
	if _, ok := table[name]; ok {
		return name, true
	}
	return "", false
}

func resolveScopedEnum(table map[string]*rawEnumEntry, name, scope string) (string, bool) {
	return resolveScopedName(table, name, scope)
}

func resolveScopedMessage(table map[string]*rawMessageEntry, name, scope string) (string, bool) {
	return resolveScopedName(table, name, scope)
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func parentScope(scope string) string {
	i := strings.LastIndex(scope, ".")
	if i < 0 {
		return ""
	}
	return scope[:i]
}

func verifyFailed(format string, args ...interface{}) error {
	return &gpberr.VerifyDefsFailedError{Reasons: []string{fmt.Sprintf(format, args...)}}
}
