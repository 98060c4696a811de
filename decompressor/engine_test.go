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

package decompressor

import (
	"testing"
	"time"

	"github.com/facebook/rohc/compressor"
	"github.com/facebook/rohc/profile"
	"github.com/facebook/rohc/rohc"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T) (*compressor.Engine, *Engine) {
	t.Helper()
	profiles := []profile.ID{profile.IDRTP, profile.IDUDP, profile.IDIP, profile.IDUncompressed}
	comp, err := compressor.New(compressor.Config{CIDType: rohc.CIDTypeSmall, Profiles: profiles})
	require.NoError(t, err)
	decomp, err := New(Config{CIDType: rohc.CIDTypeSmall, Profiles: profiles})
	require.NoError(t, err)
	return comp, decomp
}

func rtpPacket(seq uint16, ts uint32) *profile.Packet {
	return &profile.Packet{
		IP: profile.IPv4Fields{
			SrcIP:    [4]byte{10, 0, 0, 1},
			DstIP:    [4]byte{10, 0, 0, 2},
			Protocol: 17,
			TTL:      64,
		},
		HasUDP: true,
		UDP:    profile.UDPFields{SrcPort: 5000, DstPort: 5004},
		HasRTP: true,
		RTP: profile.RTPFields{
			SequenceNumber: seq,
			Timestamp:      ts,
			SSRC:           0xcafef00d,
		},
	}
}

func TestDecompressIRBringsContextToSC(t *testing.T) {
	comp, decomp := newPair(t)
	now := time.Unix(0, 0)

	wire, status := comp.Compress(rtpPacket(1, 8000), now)
	require.Equal(t, rohc.StatusOK, status)

	pkt, dstatus := decomp.Decompress(wire, now)
	require.Equal(t, rohc.StatusOK, dstatus)
	require.Equal(t, uint16(1), pkt.RTP.SequenceNumber)
	require.Equal(t, uint32(8000), pkt.RTP.Timestamp)

	c, ok := decomp.table.Get(0)
	require.True(t, ok)
	require.Equal(t, StateSC, c.State)
}

func TestDecompressUnknownCIDIsNoContext(t *testing.T) {
	_, decomp := newPair(t)
	now := time.Unix(0, 0)
	_, status := decomp.Decompress([]byte{0xe1, 0x00}, now)
	require.Equal(t, rohc.StatusNoContext, status)
}

func TestDecompressConvergesToFC(t *testing.T) {
	comp, decomp := newPair(t)
	now := time.Unix(0, 0)

	var lastState State
	for i := uint16(1); i <= 60; i++ {
		now = now.Add(20 * time.Millisecond)
		wantTS := 8000 + uint32(i)*160
		wire, status := comp.Compress(rtpPacket(i, wantTS), now)
		require.Equal(t, rohc.StatusOK, status)
		pkt, dstatus := decomp.Decompress(wire, now)
		require.Equal(t, rohc.StatusOK, dstatus)
		require.Equal(t, i, pkt.RTP.SequenceNumber)
		require.Equal(t, wantTS, pkt.RTP.Timestamp)

		c, ok := decomp.table.Get(0)
		require.True(t, ok)
		lastState = c.State
	}
	require.Equal(t, StateFC, lastState)
}

func TestDecompressRoundTripPreservesHeaderFields(t *testing.T) {
	comp, decomp := newPair(t)
	now := time.Unix(0, 0)

	for i := uint16(1); i <= 20; i++ {
		now = now.Add(20 * time.Millisecond)
		wantTS := 8000 + uint32(i)*160
		wire, status := comp.Compress(rtpPacket(i, wantTS), now)
		require.Equal(t, rohc.StatusOK, status)
		pkt, dstatus := decomp.Decompress(wire, now)
		require.Equal(t, rohc.StatusOK, dstatus)
		require.Equal(t, [4]byte{10, 0, 0, 1}, pkt.IP.SrcIP)
		require.Equal(t, [4]byte{10, 0, 0, 2}, pkt.IP.DstIP)
		require.EqualValues(t, 17, pkt.IP.Protocol)
		require.Equal(t, uint16(5000), pkt.UDP.SrcPort)
		require.Equal(t, uint16(5004), pkt.UDP.DstPort)
		require.Equal(t, uint32(0xcafef00d), pkt.RTP.SSRC)
		require.Equal(t, wantTS, pkt.RTP.Timestamp)
	}
}

func TestDecompressBadCRCQueuesNack(t *testing.T) {
	comp, decomp := newPair(t)
	now := time.Unix(0, 0)

	// Drive the compressor past IR into FO, where it starts emitting
	// IR-DYN: handleIRDyn is the path that queues a NACK on CRC failure.
	for i := uint16(1); i <= 4; i++ {
		now = now.Add(20 * time.Millisecond)
		wire, status := comp.Compress(rtpPacket(i, 8000+uint32(i)*160), now)
		require.Equal(t, rohc.StatusOK, status)
		_, dstatus := decomp.Decompress(wire, now)
		require.Equal(t, rohc.StatusOK, dstatus)
	}

	now = now.Add(20 * time.Millisecond)
	wire, status := comp.Compress(rtpPacket(5, 8800), now)
	require.Equal(t, rohc.StatusOK, status)
	corrupted := append([]byte(nil), wire...)
	corrupted[len(corrupted)-1] ^= 0xff

	_, dstatus := decomp.Decompress(corrupted, now)
	require.Equal(t, rohc.StatusBadCRC, dstatus)

	fb := decomp.EmitFeedback(0)
	require.NotEmpty(t, fb)
}

func TestSlidingCounterUpgradeAndDowngrade(t *testing.T) {
	up := NewSlidingCounter(k2, n2)
	require.False(t, up.Satisfied())
	for i := 0; i < n2; i++ {
		up.Record(true)
	}
	require.True(t, up.Satisfied())

	up.Reset()
	up.Record(true)
	for i := 0; i < n2-1; i++ {
		up.Record(false)
	}
	require.False(t, up.Satisfied())

	down := NewSlidingCounter(k1, n1)
	for i := 0; i < n1; i++ {
		down.Record(true)
	}
	require.True(t, down.Satisfied())
}

func TestOnCompressedOutcomeDrivesStateMachine(t *testing.T) {
	c := newCtx(nil)
	c.State = StateSC
	for i := 0; i < n2; i++ {
		c.onCompressedOutcome(true)
	}
	require.Equal(t, StateFC, c.State)

	for i := 0; i < n1; i++ {
		c.onCompressedOutcome(false)
	}
	require.Equal(t, StateSC, c.State)
}
