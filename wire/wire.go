// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire implements the generic low-level helpers that every
// generated codec relies on: varint and zig-zag coding, fixed-width
// coding, tag framing, and length-delimited framing. gpbc's own
// compilation pipeline never calls it directly, but every
// Encode/Decode function the codegen package synthesizes imports it by
// name.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/gpbc-project/gpbc/gpberr"
)

// Type is the 3-bit wire-type tag suffix.
type Type uint8

const (
	VarintType  Type = 0
	Fixed64Type Type = 1
	BytesType   Type = 2
	Fixed32Type Type = 5
)

// Number is a field number.
type Number int32

// Sentinel lengths returned by the Consume* functions to signal a parse
// failure without allocating. They mirror the convention used throughout
// protoc-gen-go's internal/impl/decode.go (a negative length means "stop and
// translate via ParseError").
const (
	errCodeTruncated         = -1
	errCodeOverflow          = -2
	errCodeMalformedWireType = -3
)

// EncodeTag packs a field number and wire type into the single varint
// that precedes every field's value on the wire.
func EncodeTag(num Number, typ Type) uint64 {
	return uint64(num)<<3 | uint64(typ&7)
}

// DecodeTag splits a tag varint back into field number and wire type.
func DecodeTag(tag uint64) (Number, Type) {
	return Number(tag >> 3), Type(tag & 7)
}

// SizeVarint returns the number of bytes AppendVarint would emit for v.
func SizeVarint(v uint64) int {
	// Each group of 7 bits needs one byte.
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// AppendVarint appends the base-128 little-endian encoding of v to b.
func AppendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// ConsumeVarint parses a varint from the front of b, returning the value
// and the number of bytes consumed. A negative n signals a parse failure.
func ConsumeVarint(b []byte) (v uint64, n int) {
	var y uint64
	if len(b) == 0 {
		return 0, errCodeTruncated
	}
	for shift := uint(0); shift < 64; shift += 7 {
		if n >= len(b) {
			return 0, errCodeTruncated
		}
		y = uint64(b[n])
		n++
		v |= (y & 0x7f) << shift
		if y&0x80 == 0 {
			return v, n
		}
	}
	return 0, errCodeOverflow
}

// AppendFixed32 appends the little-endian bytes of v.
func AppendFixed32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

// ConsumeFixed32 reads 4 little-endian bytes from the front of b.
func ConsumeFixed32(b []byte) (v uint32, n int) {
	if len(b) < 4 {
		return 0, errCodeTruncated
	}
	return binary.LittleEndian.Uint32(b), 4
}

// AppendFixed64 appends the little-endian bytes of v.
func AppendFixed64(b []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(b, tmp[:]...)
}

// ConsumeFixed64 reads 8 little-endian bytes from the front of b.
func ConsumeFixed64(b []byte) (v uint64, n int) {
	if len(b) < 8 {
		return 0, errCodeTruncated
	}
	return binary.LittleEndian.Uint64(b), 8
}

// AppendBytes appends a length-delimited record: the varint length of v,
// followed by v itself.
func AppendBytes(b []byte, v []byte) []byte {
	b = AppendVarint(b, uint64(len(v)))
	return append(b, v...)
}

// ConsumeBytes reads a length-delimited record from the front of b and
// returns the slice it delimits (aliasing b) plus the total bytes consumed
// including the length prefix.
func ConsumeBytes(b []byte) (v []byte, n int) {
	m, ln := ConsumeVarint(b)
	if ln < 0 {
		return nil, ln
	}
	if m > uint64(len(b)-ln) {
		return nil, errCodeTruncated
	}
	return b[ln : ln+int(m)], ln + int(m)
}

// EncodeZigZag32 maps a signed 32-bit integer to the zig-zag-coded
// unsigned integer used for the sint32 wire representation.
func EncodeZigZag32(v int32) uint64 {
	return uint64(uint32((v << 1) ^ (v >> 31)))
}

// DecodeZigZag32 inverts EncodeZigZag32.
func DecodeZigZag32(v uint64) int32 {
	x := uint32(v)
	return int32(x>>1) ^ -int32(x&1)
}

// EncodeZigZag64 maps a signed 64-bit integer to the zig-zag-coded
// unsigned integer used for the sint64 wire representation.
func EncodeZigZag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// DecodeZigZag64 inverts EncodeZigZag64.
func DecodeZigZag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// EncodeFloat32/EncodeFloat64 and the Decode counterparts convert between
// the IEEE-754 bit pattern used on the wire and the Go float type.
func EncodeFloat32(f float32) uint32 { return math.Float32bits(f) }
func DecodeFloat32(v uint32) float32 { return math.Float32frombits(v) }
func EncodeFloat64(f float64) uint64 { return math.Float64bits(f) }
func DecodeFloat64(v uint64) float64 { return math.Float64frombits(v) }

// BoolToVarint maps a bool to the 0/1 varint the wire format uses for it.
func BoolToVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// VarintToBool inverts BoolToVarint; any nonzero value is true, matching
// the convention the reference protobuf implementations use for a bool
// field's unpacked wire value.
func VarintToBool(v uint64) bool {
	return v != 0
}

// ParseError translates one of the negative lengths returned by the
// Consume* functions in this package into a concrete gpberr error.
func ParseError(n int) error {
	switch n {
	case errCodeTruncated:
		return &gpberr.TruncatedError{}
	case errCodeOverflow:
		return &gpberr.TruncatedError{Detail: "varint overflow"}
	case errCodeMalformedWireType:
		return &gpberr.MalformedWireTypeError{}
	default:
		return &gpberr.TruncatedError{Detail: "malformed input"}
	}
}

// SkipField advances past the value of a field whose wire type is typ,
// one of the four skip rules an unknown field needs to be left intact by
// a decoder. It returns the number of bytes consumed, or a negative
// length on failure.
func SkipField(b []byte, typ Type) (n int) {
	switch typ {
	case VarintType:
		_, n = ConsumeVarint(b)
		return n
	case Fixed32Type:
		_, n = ConsumeFixed32(b)
		return n
	case Fixed64Type:
		_, n = ConsumeFixed64(b)
		return n
	case BytesType:
		_, n = ConsumeBytes(b)
		return n
	default:
		// 3, 4, 6, and 7 are not wire types this format defines (the group
		// types were deprecated before proto2 shipped, and 6/7 were never
		// assigned); a tag carrying one of them is malformed, not merely
		// truncated.
		return errCodeMalformedWireType
	}
}
