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
	"fmt"

	"github.com/facebook/rohc/compressor"
	"github.com/facebook/rohc/decompressor"
	"github.com/facebook/rohc/profile"
)

func hasUDP(kind profile.Kind) bool {
	switch kind {
	case profile.KindUDP, profile.KindUDPLite, profile.KindRTP, profile.KindV2IPUDP, profile.KindV2IPUDPRTP:
		return true
	default:
		return false
	}
}

func flowSummary(ip profile.IPv4Fields, udp profile.UDPFields, kind profile.Kind) string {
	if !hasUDP(kind) {
		return fmt.Sprintf("%d.%d.%d.%d->%d.%d.%d.%d proto=%d",
			ip.SrcIP[0], ip.SrcIP[1], ip.SrcIP[2], ip.SrcIP[3],
			ip.DstIP[0], ip.DstIP[1], ip.DstIP[2], ip.DstIP[3], ip.Protocol)
	}
	return fmt.Sprintf("%d.%d.%d.%d:%d->%d.%d.%d.%d:%d",
		ip.SrcIP[0], ip.SrcIP[1], ip.SrcIP[2], ip.SrcIP[3], udp.SrcPort,
		ip.DstIP[0], ip.DstIP[1], ip.DstIP[2], ip.DstIP[3], udp.DstPort)
}

// RowsFromCompressor snapshots a compressor engine's context table into
// diag rows, one per bound CID.
func RowsFromCompressor(e *compressor.Engine) []ContextRow {
	entries := e.Contexts()
	rows := make([]ContextRow, 0, len(entries))
	for _, ent := range entries {
		rows = append(rows, ContextRow{
			CID:         ent.CID,
			Profile:     ent.Ctx.Profile.Name,
			State:       ent.Ctx.State.String(),
			PacketsSent: ent.Ctx.PacketsSentIR,
			FlowSummary: flowSummary(ent.Ctx.IP, ent.Ctx.UDP, ent.Ctx.Profile.Kind),
		})
	}
	return rows
}

// RowsFromDecompressor snapshots a decompressor engine's context table
// into diag rows, one per bound CID, marking CRCFailed when feedback is
// queued and waiting to be drained.
func RowsFromDecompressor(e *decompressor.Engine) []ContextRow {
	entries := e.Contexts()
	rows := make([]ContextRow, 0, len(entries))
	for _, ent := range entries {
		rows = append(rows, ContextRow{
			CID:         ent.CID,
			Profile:     ent.Ctx.Profile.Name,
			State:       ent.Ctx.State.String(),
			CRCFailed:   len(ent.Ctx.PendingFB) > 0,
			FlowSummary: flowSummary(ent.Ctx.IP, ent.Ctx.UDP, ent.Ctx.Profile.Kind),
		})
	}
	return rows
}
