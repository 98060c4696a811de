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

package mocks

import (
	"testing"
	"time"

	"github.com/facebook/rohc/compressor"
	"github.com/facebook/rohc/profile"
	"github.com/facebook/rohc/rohc"
	"github.com/facebook/rohc/rohclog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
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

func TestCompressorUsesMockRNGForCIDAllocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rng := NewMockRNG(ctrl)
	rng.EXPECT().Uint32().Return(uint32(0)).AnyTimes()

	e, err := compressor.New(compressor.Config{
		CIDType:  rohc.CIDTypeSmall,
		Profiles: []profile.ID{profile.IDRTP, profile.IDUncompressed},
		RNG:      rng,
	})
	require.NoError(t, err)

	_, status := e.Compress(rtpPacket(1, 8000), time.Unix(0, 0))
	require.Equal(t, rohc.StatusOK, status)
}

func TestCompressorUsesMockRTPDetector(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	det := NewMockRTPDetector(ctrl)
	det.EXPECT().IsRTP(gomock.Any()).Return(true)

	e, err := compressor.New(compressor.Config{
		CIDType:     rohc.CIDTypeSmall,
		Profiles:    []profile.ID{profile.IDRTP, profile.IDUncompressed},
		RTPDetector: det,
	})
	require.NoError(t, err)

	require.True(t, e.ClassifyRTP(5004, []byte("not really rtp but the mock says so")))
}

func TestTraceHookReceivesForwardedEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hook := NewMockTraceHook(ctrl)
	hook.EXPECT().Trace(rohclog.LevelError, "compressor", uint16(1), gomock.Any()).Times(1)

	log := logrus.New()
	wrapped := rohclog.WithTraceHook(log, "compressor", 1, hook)
	wrapped.Error("bad crc")
}
