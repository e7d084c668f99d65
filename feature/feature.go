// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feature implements feature negotiation: deciding, from caller
// options and the topological sort's cycle advisory, whether type
// annotations, the bytes-copy strategy, and the verification mode are
// enabled for this generation run.
package feature

// CopyBytesMode selects the bytes-copy strategy for decoded bytes fields.
type CopyBytesMode int

const (
	// CopyNever never copies: decoded bytes fields alias the input buffer.
	CopyNever CopyBytesMode = iota
	// CopyAlways always copies into a freshly allocated slice.
	CopyAlways
	// CopyAuto decides at generation time whether the target runtime
	// supports an efficient sub-buffer copy, falling back to CopyNever
	// when it does not. Go always supports an efficient
	// copy (a single append/copy call), so CopyAuto resolves to
	// CopyAlways for this target; see DESIGN.md.
	CopyAuto
	// CopyThreshold copies only when the underlying input buffer's
	// capacity is at least Threshold times the decoded slice's length.
	CopyThreshold
)

// VerifyMode selects when a generated EncodeMsg verifies first.
type VerifyMode int

const (
	VerifyAlways VerifyMode = iota
	VerifyNever
	VerifyOptionally
)

// Options are the caller-supplied knobs feature negotiation negotiates over.
type Options struct {
	// TypeSpecs requests structural type annotations in generated output.
	TypeSpecs bool
	// CopyBytes selects the bytes-copy strategy; when CopyBytes is
	// CopyThreshold, CopyBytesThreshold gives the numeric factor.
	CopyBytes CopyBytesMode
	CopyBytesThreshold int
	// Verify selects the verification mode.
	Verify VerifyMode
}

// Decision is feature negotiation's output: the resolved feature set plus any warnings the
// caller's diagnostic sink should see.
type Decision struct {
	TypeAnnotations    bool
	CopyBytes          CopyBytesMode
	CopyBytesThreshold int
	Verify             VerifyMode
	Warnings           []string
}

// Negotiate runs feature negotiation: it resolves CopyAuto to a concrete
// mode, and forcibly disables type annotations — emitting a warning
// instead of failing — when the schema's message-reference graph is
// cyclic, since a cyclic schema cannot be expressed as structural
// annotations without forward declarations the target surface may not
// support.
func Negotiate(opts Options, cyclic bool) Decision {
	d := Decision{
		TypeAnnotations:    opts.TypeSpecs,
		CopyBytes:          opts.CopyBytes,
		CopyBytesThreshold: opts.CopyBytesThreshold,
		Verify:             opts.Verify,
	}

	if d.CopyBytes == CopyAuto {
		// Go can always cheaply return a sub-slice of the decoded input
		// buffer (append/copy are O(n) in the copied length, not the
		// source buffer's length), so "auto" always resolves to a real
		// copy: the only way to avoid pinning the input buffer.
		d.CopyBytes = CopyAlways
	}

	if cyclic && d.TypeAnnotations {
		d.TypeAnnotations = false
		d.Warnings = append(d.Warnings, "type annotations disabled: message reference graph is cyclic")
	}

	return d
}
