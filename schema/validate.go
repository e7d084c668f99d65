// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"
	"math"

	"github.com/gpbc-project/gpbc/gpberr"
)

// validate enforces the field invariants once every field reference has been
// resolved, mirroring the split between resolution
// (reflect/protodesc/desc_resolve.go) and validation
// (reflect/protodesc/desc_validate.go) in protoc-gen-go.
func validate(f *File) error {
	var reasons []string
	report := func(format string, args ...interface{}) {
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	for _, m := range f.Messages {
		seen := map[int32]string{}
		for i, field := range m.Fields {
			if i+1 != field.RNum {
				report("%s.%s: rnum %d is not contiguous (expected %d)", m.Name, field.Name, field.RNum, i+1)
			}
			if prior, dup := seen[field.FNum]; dup {
				report("%s: field number %d used by both %q and %q", m.Name, field.FNum, prior, field.Name)
			} else {
				seen[field.FNum] = field.Name
			}
			if field.Packed && (field.Occurrence != Repeated || !field.Kind.IsPackable()) {
				report("%s.%s: packed is only admissible on repeated scalar fields", m.Name, field.Name)
			}
			for _, rr := range m.ReservedRanges {
				if rr.Contains(field.FNum) {
					report("%s.%s: field number %d falls in reserved range [%d, %d]", m.Name, field.Name, field.FNum, rr.Start, rr.End)
				}
			}
			if field.HasDefault {
				if err := validateDefault(field); err != nil {
					report("%s.%s: %s", m.Name, field.Name, err)
				}
			}
		}
	}

	if len(reasons) > 0 {
		return &gpberr.VerifyDefsFailedError{Reasons: reasons}
	}
	return nil
}

// validateDefault checks that a field's normalized default value is
// well-typed for its declared Kind.
func validateDefault(f *Field) error {
	switch f.Kind {
	case KindBool:
		if _, ok := f.Default.(bool); !ok {
			return fmt.Errorf("default %#v is not a bool", f.Default)
		}
	case KindString:
		if _, ok := f.Default.(string); !ok {
			return fmt.Errorf("default %#v is not a string", f.Default)
		}
	case KindBytes:
		switch f.Default.(type) {
		case []byte, string:
		default:
			return fmt.Errorf("default %#v is not bytes", f.Default)
		}
	case KindFloat, KindDouble:
		switch f.Default.(type) {
		case float32, float64, int, int32, int64:
		default:
			return fmt.Errorf("default %#v is not numeric", f.Default)
		}
	case KindEnum:
		symbol, ok := f.Default.(string)
		if !ok {
			return fmt.Errorf("default %#v is not an enum symbol", f.Default)
		}
		if _, ok := f.EnumRef.ValueOf(symbol); !ok {
			return fmt.Errorf("default %q is not a declared value of enum %s", symbol, f.EnumRef.Name)
		}
	case KindMessage:
		return fmt.Errorf("message fields may not declare a default")
	default:
		// Integer kinds: accept any Go integer type in range.
		v, ok := asInt64(f.Default)
		if !ok {
			return fmt.Errorf("default %#v is not an integer", f.Default)
		}
		lo, hi := integerRange(f.Kind)
		if v < lo || v > hi {
			return fmt.Errorf("default %d is out of range for %s", v, f.Kind)
		}
	}
	return nil
}

func asInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	default:
		return 0, false
	}
}

func integerRange(k Kind) (lo, hi int64) {
	switch k {
	case KindSInt32, KindInt32, KindSFixed32:
		return math.MinInt32, math.MaxInt32
	case KindUInt32, KindFixed32:
		return 0, math.MaxUint32
	case KindSInt64, KindInt64, KindSFixed64:
		return math.MinInt64, math.MaxInt64
	case KindUInt64, KindFixed64:
		return 0, math.MaxInt64 // int64 cannot represent the full uint64 range; see DESIGN.md
	default:
		return math.MinInt64, math.MaxInt64
	}
}
