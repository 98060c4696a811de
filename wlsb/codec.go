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

// Package wlsb implements Window-based Least-Significant-Bits coding
// (§4.3): the interval-arithmetic codec used to compress monotonically
// changing fields (sequence numbers, timestamps, IP-IDs) into a handful of
// low bits that still decode unambiguously under packet loss and reorder.
package wlsb

import "fmt"

// POffsetFunc computes the interpretation offset p for a candidate k. Most
// fields use a k-independent constant; wrap-safe timestamp fields need p to
// grow with k, so the function form is taken rather than a bare value.
type POffsetFunc func(k uint) int64

// POffsetConstant returns a POffsetFunc that ignores k.
func POffsetConstant(p int64) POffsetFunc {
	return func(uint) int64 { return p }
}

// POffsetSN is p = -1, used for the sequence number field in R-mode.
func POffsetSN() POffsetFunc { return POffsetConstant(-1) }

// POffsetAscending is p = 0, used for strictly ascending-only fields.
func POffsetAscending() POffsetFunc { return POffsetConstant(0) }

// POffsetWrapSafe is p = 2^(k-2) - 1, used for fields (notably RTP
// timestamps) that must tolerate wraparound within the interpretation
// window; for k < 2 it collapses to 0.
func POffsetWrapSafe() POffsetFunc {
	return func(k uint) int64 {
		if k < 2 {
			return 0
		}
		return int64(1)<<(k-2) - 1
	}
}

// POffsetIPID is the offset used for IP-ID fields classified SEQ: like
// ascending fields but the field itself may be byte-swapped by the caller
// before coding, so the offset is plain 0.
func POffsetIPID() POffsetFunc { return POffsetConstant(0) }

func fieldMod(bitWidth uint) uint64 {
	if bitWidth >= 64 {
		return 0 // treated as 1<<64, representable as wraparound of uint64
	}
	return uint64(1) << bitWidth
}

// Decode implements §4.3: given the low k bits actually received, the
// reference value v_ref, the interpretation offset p and the field's bit
// width, return the unique value in the interpretation interval whose low
// k bits equal the received bits. Fails only when k exceeds the field's
// bit width (malformed input); loss of synchronization is a correctness
// bug in the caller, not a representable error here.
func Decode(received uint64, k uint, vRef uint64, p int64, bitWidth uint) (uint64, error) {
	if k == 0 || k > bitWidth {
		return 0, fmt.Errorf("decode_failed: k=%d not in 1..%d", k, bitWidth)
	}
	mod := fieldMod(bitWidth)
	mask := mod - 1
	kMod := uint64(1) << k
	kMask := kMod - 1

	lower := int64(vRef) - p
	// normalize lower into [0, mod)
	lowerMod := uint64(((lower % int64(mod)) + int64(mod)) % int64(mod))

	base := lowerMod &^ kMask
	candidate := (base | (received & kMask)) & mask
	if candidate < lowerMod {
		candidate = (candidate + kMod) & mask
	}
	return candidate, nil
}

// Encode implements the encode mirror of §4.3: the smallest k in
// [1, maxK] such that v round-trips through Decode against the same
// reference and offset function. maxK is capped by the caller to the bit
// budget of the packet type under consideration (§4.1).
func Encode(v uint64, vRef uint64, bitWidth uint, maxK uint, pf POffsetFunc) (k uint, bits uint64, err error) {
	if maxK > bitWidth {
		maxK = bitWidth
	}
	for cand := uint(1); cand <= maxK; cand++ {
		p := pf(cand)
		kMask := uint64(1)<<cand - 1
		candBits := v & kMask
		decoded, derr := Decode(candBits, cand, vRef, p, bitWidth)
		if derr == nil && decoded == v {
			return cand, candBits, nil
		}
	}
	return 0, 0, fmt.Errorf("no k in 1..%d round-trips v=%d against ref=%d", maxK, v, vRef)
}

// RequiredBits computes the minimum k without returning the bit pattern;
// the packet-type decision engine calls this repeatedly (once per
// candidate field) before it has chosen a format, and therefore before it
// wants to commit to emitting anything.
func RequiredBits(v uint64, vRef uint64, bitWidth uint, maxK uint, pf POffsetFunc) (uint, error) {
	k, _, err := Encode(v, vRef, bitWidth, maxK, pf)
	return k, err
}
