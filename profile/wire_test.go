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

package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUO0RoundTrip(t *testing.T) {
	b := EncodeUO0(0x0a, 0x05)
	snLSB, crc3, err := ParseUO0(b)
	require.NoError(t, err)
	require.Equal(t, uint8(0x0a), snLSB)
	require.Equal(t, uint8(0x05), crc3)
}

func TestUO1RoundTrip(t *testing.T) {
	b := EncodeUO1(0x2a, true, 0x07, 0x03)
	payload, marker, snLSB, crc3, err := ParseUO1(b)
	require.NoError(t, err)
	require.Equal(t, uint8(0x2a), payload)
	require.True(t, marker)
	require.Equal(t, uint8(0x07), snLSB)
	require.Equal(t, uint8(0x03), crc3)
}

func TestUOR2RoundTrip(t *testing.T) {
	b := EncodeUOR2(0x15, false, 0x41, 0x33)
	sn, ext, payload, crc7, err := ParseUOR2(b)
	require.NoError(t, err)
	require.Equal(t, uint8(0x15), sn)
	require.False(t, ext)
	require.Equal(t, uint8(0x41), payload)
	require.Equal(t, uint8(0x33), crc7)
}

func TestDetectFamily(t *testing.T) {
	fam, ok := DetectFamily(0x00)
	require.True(t, ok)
	require.Equal(t, PTUO0, fam)

	fam, ok = DetectFamily(0x80)
	require.True(t, ok)
	require.Equal(t, PTUO1RTP, fam)

	fam, ok = DetectFamily(0xc0)
	require.True(t, ok)
	require.Equal(t, PTUOR2RTP, fam)

	fam, ok = DetectFamily(discIR)
	require.True(t, ok)
	require.Equal(t, PTIR, fam)

	fam, ok = DetectFamily(discIRDyn)
	require.True(t, ok)
	require.Equal(t, PTIRDyn, fam)
}

func TestIRRoundTrip(t *testing.T) {
	ip := IPv4Fields{SrcIP: [4]byte{10, 0, 0, 1}, DstIP: [4]byte{10, 0, 0, 2}, Protocol: 17}
	udp := UDPFields{SrcPort: 5004, DstPort: 5004}
	static := append(StaticChainIP(ip), StaticChainUDP(udp)...)
	static = append(static, StaticChainRTP(0xDEADBEEF)...)
	dyn := DynamicChainIP(ip, 0)
	dyn = append(dyn, DynamicChainUDP(udp)...)
	dyn = append(dyn, DynamicChainRTP(RTPFields{SequenceNumber: 1, Timestamp: 1000}, nil)...)

	pkt := EncodeIR(IDRTP, static, dyn, 0x42)
	id, crc8, chains, err := ParseIR(pkt)
	require.NoError(t, err)
	require.Equal(t, IDRTP, id)
	require.Equal(t, uint8(0x42), crc8)
	require.Equal(t, append(static, dyn...), chains)
}

func TestDecisionPrecedence(t *testing.T) {
	pt, ok := DecideSO(DecisionInput{NrSN: 3})
	require.True(t, ok)
	require.Equal(t, PTUO0, pt)

	pt, ok = DecideSO(DecisionInput{NrSN: 3, NrTS: 4, NonRandIPv4: 0})
	require.True(t, ok)
	require.Equal(t, PTUO1RTP, pt)

	pt, ok = DecideSO(DecisionInput{NrSN: 3, NonRandIPv4: 1, NrIPID: 0, NrTS: 4})
	require.True(t, ok)
	require.Equal(t, PTUO1TS, pt)

	pt, ok = DecideSO(DecisionInput{NrSN: 3, NonRandIPv4: 1, NrIPID: 3})
	require.True(t, ok)
	require.Equal(t, PTUO1ID, pt)

	pt, ok = DecideSO(DecisionInput{NonRandIPv4: 1, NrIPID: 6, TSSDVLEncodes: true})
	require.True(t, ok)
	require.Equal(t, PTUOR2ID, pt)

	pt, ok = DecideSO(DecisionInput{NonRandIPv4: 1, NrTS: 20})
	require.True(t, ok)
	require.Equal(t, PTUOR2TS, pt)

	pt, ok = DecideSO(DecisionInput{HasRTP: true, NrTS: 20})
	require.True(t, ok)
	require.Equal(t, PTUOR2RTP, pt)
}
