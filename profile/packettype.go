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

import "fmt"

// PacketType is a ROHC compressed packet format (§4.4).
type PacketType uint8

// Packet types this engine emits and parses. UOR2RTP/TS/ID and UO1RTP/TS/ID
// are resolved by context state, not by extra framing bits, once the
// top-level discriminator has selected the UO-1 or UOR-2 family.
const (
	PTUO0 PacketType = iota
	PTUO1RTP
	PTUO1TS
	PTUO1ID
	PTUOR2RTP
	PTUOR2TS
	PTUOR2ID
	PTIRDyn
	PTIR
)

var packetTypeNames = map[PacketType]string{
	PTUO0:     "UO-0",
	PTUO1RTP:  "UO-1-RTP",
	PTUO1TS:   "UO-1-TS",
	PTUO1ID:   "UO-1-ID",
	PTUOR2RTP: "UOR-2-RTP",
	PTUOR2TS:  "UOR-2-TS",
	PTUOR2ID:  "UOR-2-ID",
	PTIRDyn:   "IR-DYN",
	PTIR:      "IR",
}

func (t PacketType) String() string {
	if n, ok := packetTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("PacketType(%d)", uint8(t))
}

// discriminators, §4.4. IR and IR-DYN are full-byte prefixes; the others
// are short prefixes matched against the top bits of the first post-CID
// byte.
const (
	discIR    byte = 0b11111101
	discIRDyn byte = 0b11111100
)

// DetectFamily reads the first post-CID byte and returns which
// discriminator family it belongs to, without yet resolving which UO-1 or
// UOR-2 subtype it is (that needs context state). Detection never looks
// past this one byte (§4.4: "there is no lookahead").
func DetectFamily(b byte) (family PacketType, ok bool) {
	switch {
	case b == discIR:
		return PTIR, true
	case b == discIRDyn:
		return PTIRDyn, true
	case b&0x80 == 0x00:
		return PTUO0, true
	case b&0xc0 == 0x80:
		return PTUO1RTP, true // stands in for the whole UO-1 family
	case b&0xe0 == 0xc0:
		return PTUOR2RTP, true // stands in for the whole UOR-2 family
	default:
		return 0, false
	}
}

// ResolveUO1 picks the concrete UO-1 subtype for a context given its
// profile and IP-ID behavior, matching the precedence in §4.1.
func ResolveUO1(hasRTP bool, nonRandIPv4 int, nrIPID int) PacketType {
	switch {
	case !hasRTP || nonRandIPv4 == 0:
		return PTUO1RTP
	case nonRandIPv4 == 1 && nrIPID == 0:
		return PTUO1TS
	default:
		return PTUO1ID
	}
}

// ResolveUOR2 picks the concrete UOR-2 subtype, matching §4.1's
// precedence for steps 5-7.
func ResolveUOR2(hasRTP bool, nonRandIPv4 int, nrIPID int) PacketType {
	switch {
	case nrIPID > 0:
		return PTUOR2ID
	case nonRandIPv4 > 0:
		return PTUOR2TS
	default:
		return PTUOR2RTP
	}
}
