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
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	k, bits, err := Encode(1000, 995, 16, 8, POffsetAscending())
	require.NoError(t, err)
	got, err := Decode(bits, k, 995, 0, 16)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), got)
}

func TestDecodeFailsOnOversizedK(t *testing.T) {
	_, err := Decode(1, 20, 10, 0, 16)
	require.Error(t, err)
}

// TestIPIDRollover mirrors spec.md scenario 2: IP-ID = 0xFFFE, 0xFFFF,
// 0x0000, 0x0001 classified SEQ (offset 0 each step).
func TestIPIDRollover(t *testing.T) {
	ids := []uint64{0xFFFE, 0xFFFF, 0x0000, 0x0001}
	ref := ids[0]
	for i, id := range ids {
		if i == 0 {
			continue
		}
		k, bits, err := Encode(id, ref, 16, 16, POffsetIPID())
		require.NoError(t, err)
		got, err := Decode(bits, k, ref, 0, 16)
		require.NoError(t, err)
		require.Equal(t, id, got)
		ref = id
	}
}

func TestWindowEncodeDecodeAgainstRef0(t *testing.T) {
	w := NewWindow(4, 16, 14, POffsetSN())
	w.Push(100, 1)
	k, bits, err := w.Encode(103)
	require.NoError(t, err)
	got, err := w.Decode(bits, k, Ref0)
	require.NoError(t, err)
	require.Equal(t, uint64(103), got)
}

func TestWindowRefMinus1SurvivesPush(t *testing.T) {
	w := NewWindow(4, 16, 14, POffsetSN())
	w.Push(100, 1)
	w.Push(103, 2)
	v0, ok := w.Ref(Ref0)
	require.True(t, ok)
	require.Equal(t, uint64(103), v0)
	vm1, ok := w.Ref(RefMinus1)
	require.True(t, ok)
	require.Equal(t, uint64(100), vm1)
}

// TestRoundTripProperty is the round-trip law from spec.md §8 applied
// directly to the codec: any v within 2^(maxK-1) of vRef must encode and
// decode back to itself, for every bit width large enough to hold both.
func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bitWidth := uint(rapid.IntRange(8, 32).Draw(t, "bitWidth"))
		maxK := uint(rapid.IntRange(1, int(bitWidth)).Draw(t, "maxK"))
		fieldMax := uint64(1)<<bitWidth - 1
		vRef := rapid.Uint64Range(0, fieldMax).Draw(t, "vRef")
		// keep v within reach of the maximum window so some k round-trips
		span := uint64(1) << (maxK - 1)
		delta := rapid.Uint64Range(0, span).Draw(t, "delta")
		v := (vRef + delta) & fieldMax

		k, bits, err := Encode(v, vRef, bitWidth, maxK, POffsetAscending())
		if err != nil {
			return // no k in range round-trips; not a property violation
		}
		got, err := Decode(bits, k, vRef, 0, bitWidth)
		require.NoError(t, err)
		require.Equal(t, v, got)
	})
}
