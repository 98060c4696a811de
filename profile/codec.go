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

// BuildStaticChain assembles the static chain for pkt under kind, the
// dispatch point the compressor and decompressor share so neither needs
// to know the byte layout of a profile it isn't using (§9 "Profile
// polymorphism").
func BuildStaticChain(kind Kind, pkt *Packet) []byte {
	var b []byte
	b = append(b, StaticChainIP(pkt.IP)...)
	switch kind {
	case KindESP:
		b = append(b, StaticChainESP(pkt.ESP)...)
	case KindUDP, KindUDPLite, KindV2IPUDP:
		b = append(b, StaticChainUDP(pkt.UDP)...)
	case KindRTP, KindV2IPUDPRTP:
		b = append(b, StaticChainUDP(pkt.UDP)...)
		b = append(b, StaticChainRTP(pkt.RTP.SSRC)...)
	}
	return b
}

// ParseStaticChain is BuildStaticChain's inverse, filling pkt's header
// fields from the static chain bytes.
func ParseStaticChain(kind Kind, b []byte, pkt *Packet) (int, error) {
	ip, n, err := ParseStaticChainIP(b)
	if err != nil {
		return 0, err
	}
	pkt.IP = ip
	total := n
	switch kind {
	case KindESP:
		esp, n2, err := ParseStaticChainESP(b[total:])
		if err != nil {
			return 0, err
		}
		pkt.ESP, pkt.HasESP = esp, true
		total += n2
	case KindUDP, KindUDPLite, KindV2IPUDP:
		udp, n2, err := ParseStaticChainUDP(b[total:])
		if err != nil {
			return 0, err
		}
		pkt.UDP, pkt.HasUDP = udp, true
		total += n2
	case KindRTP, KindV2IPUDPRTP:
		udp, n2, err := ParseStaticChainUDP(b[total:])
		if err != nil {
			return 0, err
		}
		pkt.UDP, pkt.HasUDP = udp, true
		total += n2
		ssrc, n3, err := ParseStaticChainRTP(b[total:])
		if err != nil {
			return 0, err
		}
		pkt.RTP.SSRC, pkt.HasRTP = ssrc, true
		total += n3
	}
	return total, nil
}

// BuildDynamicChain assembles the dynamic chain for pkt under kind.
// strideSDVL is appended to the RTP chain only while TS scaling is in
// INIT_STRIDE and has a stride to propose (empty otherwise).
func BuildDynamicChain(kind Kind, pkt *Packet, ipBehavior byte, strideSDVL []byte) []byte {
	b := DynamicChainIP(pkt.IP, ipBehavior)
	switch kind {
	case KindUDP, KindV2IPUDP:
		b = append(b, DynamicChainUDP(pkt.UDP)...)
	case KindUDPLite:
		b = append(b, DynamicChainUDPLite(UDPLiteFields{UDPFields: pkt.UDP})...)
	case KindRTP, KindV2IPUDPRTP:
		b = append(b, DynamicChainUDP(pkt.UDP)...)
		b = append(b, DynamicChainRTP(pkt.RTP, strideSDVL)...)
	}
	return b
}

// ParseDynamicChain is BuildDynamicChain's inverse.
func ParseDynamicChain(kind Kind, b []byte, pkt *Packet) (ipBehavior byte, strideSDVL []byte, err error) {
	ipBehavior, n, err := ParseDynamicChainIP(b, &pkt.IP)
	if err != nil {
		return 0, nil, err
	}
	total := n
	switch kind {
	case KindUDP, KindV2IPUDP:
		udp, n2, err := ParseDynamicChainUDP(b[total:])
		if err != nil {
			return 0, nil, err
		}
		pkt.UDP.Checksum, pkt.HasUDP = udp, true
		total += n2
	case KindUDPLite:
		lite, n2, err := ParseDynamicChainUDPLite(b[total:])
		if err != nil {
			return 0, nil, err
		}
		pkt.UDP, pkt.HasUDP = lite.UDPFields, true
		_ = n2
	case KindRTP, KindV2IPUDPRTP:
		udp, n2, err := ParseDynamicChainUDP(b[total:])
		if err != nil {
			return 0, nil, err
		}
		pkt.UDP.Checksum, pkt.HasUDP = udp, true
		total += n2
		rtp, n3, err := ParseDynamicChainRTP(b[total:])
		if err != nil {
			return 0, nil, err
		}
		pkt.RTP.SequenceNumber, pkt.RTP.Timestamp = rtp.SequenceNumber, rtp.Timestamp
		pkt.RTP.Marker, pkt.RTP.PayloadType, pkt.HasRTP = rtp.Marker, rtp.PayloadType, true
		total += n3
		if total < len(b) {
			stride, n4, err := sdvlPeek(b[total:])
			if err == nil {
				strideSDVL = append([]byte(nil), b[total:total+n4]...)
				_ = stride
			}
		}
	}
	return ipBehavior, strideSDVL, nil
}

// sdvlPeek is a tiny indirection so profile doesn't need to import sdvl
// just to discover how many bytes a trailing stride field occupies; the
// engines that actually decode the stride value import sdvl directly.
func sdvlPeek(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("profile: no trailing stride field")
	}
	n := 1
	switch {
	case b[0]&0x80 == 0:
		n = 1
	case b[0]&0xc0 == 0x80:
		n = 2
	case b[0]&0xe0 == 0xc0:
		n = 3
	case b[0]&0xf0 == 0xe0:
		n = 4
	}
	if len(b) < n {
		return 0, 0, fmt.Errorf("profile: truncated stride field")
	}
	return 0, n, nil
}
