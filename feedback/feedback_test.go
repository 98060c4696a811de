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

package feedback

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFeedback1RoundTrip(t *testing.T) {
	b := EncodeFeedback1(KindNack, 0x2a)
	kind, bits := DecodeFeedback1(b)
	require.Equal(t, KindNack, kind)
	require.Equal(t, uint8(0x2a), bits)
}

func TestFeedback2RoundTrip(t *testing.T) {
	p := Packet{
		Kind: KindNack,
		Mode: 1,
		Options: []Option{
			{Type: OptSN, Value: []byte{0x01, 0x23}},
			{Type: OptCRC, Value: []byte{0x07}},
		},
	}
	b, err := EncodeFeedback2(p)
	require.NoError(t, err)
	got, err := DecodeFeedback2(b)
	require.NoError(t, err)
	require.True(t, got.IsFB2)
	require.Equal(t, p.Kind, got.Kind)
	require.Equal(t, p.Mode, got.Mode)
	require.Equal(t, p.Options, got.Options)

	sn, ok := got.SNOption()
	require.True(t, ok)
	require.Equal(t, []byte{0x01, 0x23}, sn)
}

func TestFeedback2TruncatedOption(t *testing.T) {
	_, err := DecodeFeedback2([]byte{0x00, byte(OptSN), 0x04, 0x01})
	require.Error(t, err)
}

func TestFeedback2Empty(t *testing.T) {
	_, err := DecodeFeedback2(nil)
	require.Error(t, err)
}

// TestFeedback2Idempotent checks that re-encoding a decoded FEEDBACK-2
// message reproduces the original bytes exactly, no matter how many
// options it carries.
func TestFeedback2Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		p := Packet{
			Kind: Kind(rapid.IntRange(0, 2).Draw(rt, "kind")),
			Mode: uint8(rapid.IntRange(0, 3).Draw(rt, "mode")),
		}
		for i := 0; i < n; i++ {
			valLen := rapid.IntRange(0, 4).Draw(rt, "vlen")
			val := rapid.SliceOfN(rapid.Byte(), valLen, valLen).Draw(rt, "val")
			p.Options = append(p.Options, Option{
				Type:  OptionType(rapid.IntRange(1, 7).Draw(rt, "otype")),
				Value: val,
			})
		}
		b, err := EncodeFeedback2(p)
		require.NoError(rt, err)
		got, err := DecodeFeedback2(b)
		require.NoError(rt, err)

		b2, err := EncodeFeedback2(got)
		require.NoError(rt, err)
		require.Equal(rt, b, b2)
	})
}
