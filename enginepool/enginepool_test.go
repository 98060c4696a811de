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

package enginepool

import (
	"context"
	"testing"
	"time"

	"github.com/facebook/rohc/compressor"
	"github.com/facebook/rohc/profile"
	"github.com/facebook/rohc/rohc"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *compressor.Engine {
	t.Helper()
	e, err := compressor.New(compressor.Config{
		CIDType:  rohc.CIDTypeSmall,
		Profiles: []profile.ID{profile.IDUncompressed},
	})
	require.NoError(t, err)
	return e
}

func rtpPacket() *profile.Packet {
	return &profile.Packet{
		IP: profile.IPv4Fields{
			SrcIP:    [4]byte{10, 0, 0, 1},
			DstIP:    [4]byte{10, 0, 0, 2},
			Protocol: 17,
			TTL:      64,
		},
	}
}

func TestPoolAddAndGet(t *testing.T) {
	p := NewCompressorPool()
	e := newTestEngine(t)
	p.Add("flow-a", e)

	got, ok := p.Get("flow-a")
	require.True(t, ok)
	require.Same(t, e, got)
	require.Equal(t, 1, p.Len())
}

func TestRunDispatchesToEachFlow(t *testing.T) {
	p := NewCompressorPool()
	p.Add("a", newTestEngine(t))
	p.Add("b", newTestEngine(t))

	var seen []string
	err := p.Run(context.Background(), []Job{
		{Flow: "a", Fn: func(e *compressor.Engine) error { seen = append(seen, "a"); return nil }},
		{Flow: "b", Fn: func(e *compressor.Engine) error { seen = append(seen, "b"); return nil }},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, seen)
}

func TestRunFailsOnUnknownFlow(t *testing.T) {
	p := NewCompressorPool()
	err := p.Run(context.Background(), []Job{{Flow: "missing", Fn: func(e *compressor.Engine) error { return nil }}})
	require.Error(t, err)
}

func TestCompressAllCompressesEveryFlow(t *testing.T) {
	p := NewCompressorPool()
	p.Add("a", newTestEngine(t))
	p.Add("b", newTestEngine(t))

	now := time.Unix(0, 0)
	results, err := p.CompressAll(context.Background(), func() time.Time { return now }, func(flow string) *profile.Packet {
		return rtpPacket()
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.Equal(t, rohc.StatusOK, r.Status)
		require.NotEmpty(t, r.Wire)
	}
}

func TestCompressAllSkipsNilPacket(t *testing.T) {
	p := NewCompressorPool()
	p.Add("a", newTestEngine(t))

	now := time.Unix(0, 0)
	results, err := p.CompressAll(context.Background(), func() time.Time { return now }, func(flow string) *profile.Packet {
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Empty(t, results[0].Wire)
}
