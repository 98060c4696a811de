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

package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCollectorRegistersMetrics(t *testing.T) {
	c := NewCollector("compressor")
	c.ContextsActive.Set(3)
	c.PacketsByType.WithLabelValues("UO-0").Inc()
	c.CRCFailures.Inc()
	c.StateTransitions.WithLabelValues("SO").Inc()

	mfs, err := c.Registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestPacketSizeStatsAccumulate(t *testing.T) {
	c := NewCollector("decompressor")
	c.ObservePacketSize(10)
	c.ObservePacketSize(20)
	c.ObservePacketSize(30)

	mean, stddev := c.PacketSizeStats()
	require.InDelta(t, 20.0, mean, 0.001)
	require.Greater(t, stddev, 0.0)
}

func TestWLSBWidthStatsAccumulate(t *testing.T) {
	c := NewCollector("compressor")
	c.ObserveWLSBWidth(4)
	c.ObserveWLSBWidth(4)
	c.ObserveWLSBWidth(8)

	mean, _ := c.WLSBWidthStats()
	require.InDelta(t, 16.0/3.0, mean, 0.001)
}

func TestProcessRSSReturnsPositiveValue(t *testing.T) {
	rss, err := ProcessRSS()
	require.NoError(t, err)
	require.Greater(t, rss, uint64(0))
}
