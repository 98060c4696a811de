/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package wlsb

import (
	"container/ring"
	"fmt"
)

// Reference names one of the two active references a Window exposes, per
// the design note in §9: a pair of generation counters, REF_0 (last
// accepted) and REF_MINUS_1 (previous), rather than a cyclic pointer graph.
type Reference uint8

// The two references the repair policy (§4.2) may pick between.
const (
	Ref0 Reference = iota
	RefMinus1
)

type refEntry struct {
	value uint64
	seqno uint64
	set   bool
}

// Window is a per-field W-LSB reference window: a fixed-size ring of
// (value, seqno) pairs indexed modulo the configured width, plus the
// field's bit width, maximum-k ceiling and interpretation-offset function.
// Window is not safe for concurrent use; it is owned by exactly one
// context, itself owned by exactly one engine (§5).
type Window struct {
	entries  *ring.Ring
	cur      *ring.Ring
	width    int
	bitWidth uint
	maxK     uint
	pf       POffsetFunc
}

// NewWindow builds a Window of the given width (one of the powers of two
// in {1,2,4,8,16,32,64} that wlsb_window_width accepts), for a field of
// bitWidth bits, capped at maxK bits per transmission, interpreted with pf.
func NewWindow(width int, bitWidth uint, maxK uint, pf POffsetFunc) *Window {
	if width < 1 {
		width = 1
	}
	r := ring.New(width)
	for i := 0; i < width; i++ {
		r.Value = refEntry{}
		r = r.Next()
	}
	return &Window{entries: r, cur: nil, width: width, bitWidth: bitWidth, maxK: maxK, pf: pf}
}

// Push records v as the newest accepted reference, advancing REF_MINUS_1
// to what was REF_0. Called after the compressor transmits a value it is
// confident the peer will adopt, or after the decompressor's CRC check
// passes (§4.2's "deliberate policy: no speculative updates").
func (w *Window) Push(v uint64, seqno uint64) {
	if w.cur == nil {
		w.cur = w.entries
	} else {
		w.cur = w.cur.Next()
	}
	w.cur.Value = refEntry{value: v, seqno: seqno, set: true}
}

// at returns the entry n slots behind the current one (n=0 is REF_0).
func (w *Window) at(n int) (refEntry, bool) {
	if w.cur == nil {
		return refEntry{}, false
	}
	r := w.cur
	for range n {
		r = r.Prev()
	}
	e, ok := r.Value.(refEntry)
	if !ok || !e.set {
		return refEntry{}, false
	}
	return e, true
}

// Ref returns the value of the requested reference.
func (w *Window) Ref(which Reference) (uint64, bool) {
	n := 0
	if which == RefMinus1 {
		n = 1
	}
	e, ok := w.at(n)
	return e.value, ok
}

// RefSeqno returns both the value and the seqno it was Push-ed under, for
// callers that need to measure how far a later seqno has advanced past
// this reference (e.g. inferring a field the wire format omitted).
func (w *Window) RefSeqno(which Reference) (value uint64, seqno uint64, ok bool) {
	n := 0
	if which == RefMinus1 {
		n = 1
	}
	e, ok := w.at(n)
	return e.value, e.seqno, ok
}

// Encode finds the minimum k (capped at the window's maxK) and the low
// bits to transmit for v against REF_0.
func (w *Window) Encode(v uint64) (k uint, bits uint64, err error) {
	ref, ok := w.Ref(Ref0)
	if !ok {
		return 0, 0, fmt.Errorf("wlsb: no reference value established yet")
	}
	return Encode(v, ref, w.bitWidth, w.maxK, w.pf)
}

// RequiredBits is Encode without the bit pattern, for the packet-type
// decision engine's pre-commit bit-budget computation (§4.1).
func (w *Window) RequiredBits(v uint64) (uint, error) {
	k, _, err := w.Encode(v)
	return k, err
}

// Decode decodes received low bits against the named reference.
func (w *Window) Decode(received uint64, k uint, which Reference) (uint64, error) {
	ref, ok := w.Ref(which)
	if !ok {
		return 0, fmt.Errorf("wlsb: no reference value established yet")
	}
	return Decode(received, k, ref, w.pf(k), w.bitWidth)
}

// BitWidth returns the field's declared bit width.
func (w *Window) BitWidth() uint { return w.bitWidth }

// MaxK returns the window's configured k ceiling.
func (w *Window) MaxK() uint { return w.maxK }
