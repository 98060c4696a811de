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

package diag

import (
	"bytes"
	"testing"
	"time"

	"github.com/facebook/rohc/compressor"
	"github.com/facebook/rohc/decompressor"
	"github.com/facebook/rohc/profile"
	"github.com/facebook/rohc/rohc"
	"github.com/stretchr/testify/require"
)

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

func TestDumpRendersCompressorRows(t *testing.T) {
	profiles := []profile.ID{profile.IDRTP, profile.IDUncompressed}
	comp, err := compressor.New(compressor.Config{CIDType: rohc.CIDTypeSmall, Profiles: profiles})
	require.NoError(t, err)

	_, status := comp.Compress(rtpPacket(1, 8000), time.Unix(0, 0))
	require.Equal(t, rohc.StatusOK, status)

	rows := RowsFromCompressor(comp)
	require.Len(t, rows, 1)
	require.Equal(t, 0, rows[0].CID)
	require.Equal(t, "IR", rows[0].State)
	require.Contains(t, rows[0].FlowSummary, "10.0.0.1:5000->10.0.0.2:5004")

	var buf bytes.Buffer
	Dump(&buf, rows)
	require.NotEmpty(t, buf.String())
}

func TestDumpRendersDecompressorRows(t *testing.T) {
	profiles := []profile.ID{profile.IDRTP, profile.IDUncompressed}
	comp, err := compressor.New(compressor.Config{CIDType: rohc.CIDTypeSmall, Profiles: profiles})
	require.NoError(t, err)
	decomp, err := decompressor.New(decompressor.Config{CIDType: rohc.CIDTypeSmall, Profiles: profiles})
	require.NoError(t, err)

	wire, status := comp.Compress(rtpPacket(1, 8000), time.Unix(0, 0))
	require.Equal(t, rohc.StatusOK, status)
	_, dstatus := decomp.Decompress(wire, time.Unix(0, 0))
	require.Equal(t, rohc.StatusOK, dstatus)

	rows := RowsFromDecompressor(decomp)
	require.Len(t, rows, 1)
	require.Equal(t, "SC", rows[0].State)

	var buf bytes.Buffer
	Dump(&buf, rows)
	require.NotEmpty(t, buf.String())
}
