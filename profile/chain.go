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
	"encoding/binary"
	"fmt"
)

// Static and dynamic chain coders. Byte offsets here are this engine's own
// compact layout rather than a byte-for-byte reproduction of RFC 3095's
// tables (§1: "profile-specific wire-layout tables are treated as data
// accompanying this spec, not as design"); what matters for the engine is
// that every static field the context must never re-derive is carried in
// the static chain, and every field that can change packet-to-packet but
// isn't W-LSB-coded is carried in the dynamic chain.

// StaticChainIP encodes the part of the static chain every IP-bearing
// profile carries: source/destination address and the IPv4 protocol
// number (ESP/UDP/UDP-Lite/RTP-over-UDP all sit on top of this).
func StaticChainIP(ip IPv4Fields) []byte {
	b := make([]byte, 9)
	copy(b[0:4], ip.SrcIP[:])
	copy(b[4:8], ip.DstIP[:])
	b[8] = ip.Protocol
	return b
}

// ParseStaticChainIP reads StaticChainIP's output.
func ParseStaticChainIP(b []byte) (IPv4Fields, int, error) {
	if len(b) < 9 {
		return IPv4Fields{}, 0, fmt.Errorf("profile: static IP chain truncated")
	}
	var ip IPv4Fields
	copy(ip.SrcIP[:], b[0:4])
	copy(ip.DstIP[:], b[4:8])
	ip.Protocol = b[8]
	return ip, 9, nil
}

// StaticChainUDP appends the UDP ports, which are static for the life of
// the flow.
func StaticChainUDP(udp UDPFields) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b[0:], udp.SrcPort)
	binary.BigEndian.PutUint16(b[2:], udp.DstPort)
	return b
}

// ParseStaticChainUDP reads StaticChainUDP's output.
func ParseStaticChainUDP(b []byte) (UDPFields, int, error) {
	if len(b) < 4 {
		return UDPFields{}, 0, fmt.Errorf("profile: static UDP chain truncated")
	}
	return UDPFields{
		SrcPort: binary.BigEndian.Uint16(b[0:]),
		DstPort: binary.BigEndian.Uint16(b[2:]),
	}, 4, nil
}

// StaticChainESP appends the ESP Security Parameters Index.
func StaticChainESP(esp ESPFields) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, esp.SPI)
	return b
}

// ParseStaticChainESP reads StaticChainESP's output.
func ParseStaticChainESP(b []byte) (ESPFields, int, error) {
	if len(b) < 4 {
		return ESPFields{}, 0, fmt.Errorf("profile: static ESP chain truncated")
	}
	return ESPFields{SPI: binary.BigEndian.Uint32(b)}, 4, nil
}

// StaticChainRTP appends the RTP SSRC, static for the life of the stream.
func StaticChainRTP(ssrc uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, ssrc)
	return b
}

// ParseStaticChainRTP reads StaticChainRTP's output.
func ParseStaticChainRTP(b []byte) (uint32, int, error) {
	if len(b) < 4 {
		return 0, 0, fmt.Errorf("profile: static RTP chain truncated")
	}
	return binary.BigEndian.Uint32(b), 4, nil
}

// DynamicChainIP carries the fields the static chain omits but which must
// be known in full on every IR/IR-DYN: TOS/TTL, the DF bit, a one-byte
// IP-ID behavior tag and, when the behavior needs it, the current IP-ID.
func DynamicChainIP(ip IPv4Fields, behavior byte) []byte {
	df := byte(0)
	if ip.DF {
		df = 1
	}
	b := []byte{ip.TOS, ip.TTL, df, behavior}
	if behavior == 0 || behavior == 1 { // SEQ or SEQ_SWAP: carry the current value
		idb := make([]byte, 2)
		binary.BigEndian.PutUint16(idb, ip.IPID)
		b = append(b, idb...)
	}
	return b
}

// ParseDynamicChainIP reads DynamicChainIP's output into ip (SrcIP/DstIP/
// Protocol must already be populated from the static chain) and returns
// the IP-ID behavior byte alongside the number of bytes consumed.
func ParseDynamicChainIP(b []byte, ip *IPv4Fields) (behavior byte, n int, err error) {
	if len(b) < 4 {
		return 0, 0, fmt.Errorf("profile: dynamic IP chain truncated")
	}
	ip.TOS, ip.TTL = b[0], b[1]
	ip.DF = b[2] != 0
	behavior = b[3]
	n = 4
	if behavior == 0 || behavior == 1 {
		if len(b) < 6 {
			return 0, 0, fmt.Errorf("profile: dynamic IP chain missing IP-ID")
		}
		ip.IPID = binary.BigEndian.Uint16(b[4:6])
		n = 6
	}
	return behavior, n, nil
}

// DynamicChainUDP carries the UDP checksum, which can legitimately be
// zero (NO_IP_CHECKSUMS feature) or vary packet to packet.
func DynamicChainUDP(udp UDPFields) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, udp.Checksum)
	return b
}

// ParseDynamicChainUDP reads DynamicChainUDP's output.
func ParseDynamicChainUDP(b []byte) (uint16, int, error) {
	if len(b) < 2 {
		return 0, 0, fmt.Errorf("profile: dynamic UDP chain truncated")
	}
	return binary.BigEndian.Uint16(b), 2, nil
}

// DynamicChainUDPLite carries UDP-Lite's checksum coverage length
// alongside the checksum itself.
func DynamicChainUDPLite(f UDPLiteFields) []byte {
	b := DynamicChainUDP(f.UDPFields)
	cov := make([]byte, 2)
	binary.BigEndian.PutUint16(cov, f.CoverageLength)
	return append(b, cov...)
}

// ParseDynamicChainUDPLite reads DynamicChainUDPLite's output.
func ParseDynamicChainUDPLite(b []byte) (UDPLiteFields, int, error) {
	udp, n, err := ParseDynamicChainUDP(b)
	if err != nil {
		return UDPLiteFields{}, 0, err
	}
	if len(b) < n+2 {
		return UDPLiteFields{}, 0, fmt.Errorf("profile: dynamic UDP-Lite chain truncated")
	}
	cov := binary.BigEndian.Uint16(b[n : n+2])
	return UDPLiteFields{UDPFields: UDPFields{Checksum: udp}, CoverageLength: cov}, n + 2, nil
}

// DynamicChainRTP carries the MSN (the RTP sequence number), the full
// timestamp, and the marker/payload-type byte; TS_STRIDE is appended as
// an SDVL field only once the compressor has one to propose.
func DynamicChainRTP(rtp RTPFields, strideSDVL []byte) []byte {
	b := make([]byte, 7, 7+len(strideSDVL))
	binary.BigEndian.PutUint16(b[0:], rtp.SequenceNumber)
	binary.BigEndian.PutUint32(b[2:], rtp.Timestamp)
	flags := rtp.PayloadType & 0x7f
	if rtp.Marker {
		flags |= 0x80
	}
	b[6] = flags
	return append(b, strideSDVL...)
}

// ParseDynamicChainRTP reads DynamicChainRTP's fixed part only. Its
// caller, ParseDynamicChain, treats any bytes left after the fixed part
// as the trailing SDVL stride.
func ParseDynamicChainRTP(b []byte) (RTPFields, int, error) {
	if len(b) < 7 {
		return RTPFields{}, 0, fmt.Errorf("profile: dynamic RTP chain truncated")
	}
	var rtp RTPFields
	rtp.SequenceNumber = binary.BigEndian.Uint16(b[0:])
	rtp.Timestamp = binary.BigEndian.Uint32(b[2:])
	rtp.Marker = b[6]&0x80 != 0
	rtp.PayloadType = b[6] & 0x7f
	return rtp, 7, nil
}
