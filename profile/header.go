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

// Package profile implements the RFC 3095 / RFC 5225 profile handlers:
// the match predicates, static/dynamic/irregular chain coders and
// packet-type decision tables that the compressor and decompressor
// engines dispatch to by profile ID (§4, design note "Profile
// polymorphism").
package profile

import "net"

// IPv4Fields holds the IPv4 header fields ROHC contexts track.
type IPv4Fields struct {
	SrcIP    [4]byte
	DstIP    [4]byte
	Protocol uint8
	TOS      uint8
	TTL      uint8
	IPID     uint16
	DF       bool
}

// UDPFields holds the UDP header fields ROHC contexts track.
type UDPFields struct {
	SrcPort  uint16
	DstPort  uint16
	Checksum uint16
}

// UDPLiteFields extends UDPFields with the checksum coverage length
// UDP-Lite adds.
type UDPLiteFields struct {
	UDPFields
	CoverageLength uint16
}

// ESPFields holds the fields of an ESP header ROHC tracks: only the
// Security Parameters Index, static for the life of the flow. The ESP
// sequence number is not tracked; an ESP flow's MSN is the engine's own
// counter.
type ESPFields struct {
	SPI uint32
}

// RTPFields holds the RTP header fields ROHC contexts track.
type RTPFields struct {
	Marker         bool
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
	CSRC           []uint32
}

// Packet is the uncompressed packet the compressor accepts and the
// decompressor produces: a profile-tagged bundle of the header layers a
// profile cares about, plus the opaque payload bytes. The PCAP framer and
// link-layer code that assemble/disassemble this from real wire bytes are
// explicit out-of-scope external collaborators (§1).
type Packet struct {
	IP      IPv4Fields
	HasUDP  bool
	UDP     UDPFields
	HasESP  bool
	ESP     ESPFields
	HasRTP  bool
	RTP     RTPFields
	Payload []byte
}

// FlowKey is the tuple that identifies which context an uncompressed
// packet belongs to, independent of the profile ultimately chosen for it.
// It is used only for opportunistic CID binding (see context.BindingCache)
// - the spec's explicit context binding API is still authoritative.
type FlowKey struct {
	SrcIP, DstIP     [4]byte
	Protocol         uint8
	SrcPort, DstPort uint16
	SSRC             uint32
}

// Key derives the FlowKey for an uncompressed packet.
func (p *Packet) Key() FlowKey {
	k := FlowKey{SrcIP: p.IP.SrcIP, DstIP: p.IP.DstIP, Protocol: p.IP.Protocol}
	if p.HasUDP {
		k.SrcPort, k.DstPort = p.UDP.SrcPort, p.UDP.DstPort
	}
	if p.HasRTP {
		k.SSRC = p.RTP.SSRC
	}
	return k
}

// SrcIPNet returns the source address as a net.IP for diagnostics.
func (f IPv4Fields) SrcIPNet() net.IP { return net.IP(f.SrcIP[:]) }

// DstIPNet returns the destination address as a net.IP for diagnostics.
func (f IPv4Fields) DstIPNet() net.IP { return net.IP(f.DstIP[:]) }
