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

// Package stats exposes per-engine runtime counters: contexts active,
// packets by type, CRC failures and state transitions, as Prometheus
// gauges/counters, plus streaming size/width statistics and process RSS
// for correlating max_contexts against actual memory use.
package stats

import (
	"os"

	"github.com/eclesh/welford"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/process"
)

// Collector is a per-engine set of Prometheus metrics plus two running
// Welford accumulators for emitted-packet size and W-LSB k-width, which
// need a streaming mean/variance rather than a histogram bucket set.
type Collector struct {
	Registry *prometheus.Registry

	ContextsActive   prometheus.Gauge
	PacketsByType    *prometheus.CounterVec
	CRCFailures      prometheus.Counter
	StateTransitions *prometheus.CounterVec

	packetSize *welford.Stats
	wlsbWidth  *welford.Stats
}

// NewCollector builds a Collector registered under entity (e.g.
// "compressor" or "decompressor"), so a process hosting several engine
// instances (§5: independent per-flow engines) can tell them apart.
func NewCollector(entity string) *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		Registry: reg,
		ContextsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rohc_contexts_active",
			Help: "Number of contexts currently bound in the context table.",
			ConstLabels: prometheus.Labels{
				"entity": entity,
			},
		}),
		PacketsByType: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rohc_packets_total",
			Help: "Packets processed, partitioned by wire packet type.",
			ConstLabels: prometheus.Labels{
				"entity": entity,
			},
		}, []string{"packet_type"}),
		CRCFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rohc_crc_failures_total",
			Help: "Decompressed packets that failed CRC verification.",
			ConstLabels: prometheus.Labels{
				"entity": entity,
			},
		}),
		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rohc_state_transitions_total",
			Help: "Context state machine transitions, partitioned by destination state.",
			ConstLabels: prometheus.Labels{
				"entity": entity,
			},
		}, []string{"state"}),
		packetSize: welford.New(),
		wlsbWidth:  welford.New(),
	}
	reg.MustRegister(c.ContextsActive, c.PacketsByType, c.CRCFailures, c.StateTransitions)
	return c
}

// ObservePacketSize folds one emitted packet's wire size into the
// streaming mean/variance.
func (c *Collector) ObservePacketSize(n int) {
	c.packetSize.Add(float64(n))
}

// ObserveWLSBWidth folds one W-LSB encode's chosen k-width into the
// streaming mean/variance.
func (c *Collector) ObserveWLSBWidth(k int) {
	c.wlsbWidth.Add(float64(k))
}

// PacketSizeStats reports the running mean and standard deviation of
// emitted packet sizes observed so far.
func (c *Collector) PacketSizeStats() (mean, stddev float64) {
	return c.packetSize.Mean(), c.packetSize.Stddev()
}

// WLSBWidthStats reports the running mean and standard deviation of
// W-LSB k-widths observed so far.
func (c *Collector) WLSBWidthStats() (mean, stddev float64) {
	return c.wlsbWidth.Mean(), c.wlsbWidth.Stddev()
}

// ProcessRSS reports the calling process's resident set size in bytes,
// so an embedder can correlate max_contexts against actual memory use.
func ProcessRSS() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}
