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

// EncodeIR assembles a complete IR packet: discriminator, profile ID, a
// CRC-8 byte, then the static and dynamic chains (§4.4, §6 "IR"). The
// caller computes crc8 over the profile ID and both chains.
func EncodeIR(id ID, staticChain, dynamicChain []byte, crc8 byte) []byte {
	b := make([]byte, 0, 4+len(staticChain)+len(dynamicChain))
	b = append(b, discIR)
	idb := make([]byte, 2)
	binary.BigEndian.PutUint16(idb, uint16(id))
	b = append(b, idb...)
	b = append(b, crc8)
	b = append(b, staticChain...)
	b = append(b, dynamicChain...)
	return b
}

// ParseIR splits an IR packet into its profile ID, declared CRC-8 and the
// chain bytes that follow (the caller parses static/dynamic chains with
// the profile-specific helpers and recomputes the CRC to verify it).
func ParseIR(b []byte) (id ID, crc8 byte, chains []byte, err error) {
	if len(b) < 4 || b[0] != discIR {
		return 0, 0, nil, fmt.Errorf("profile: not an IR packet")
	}
	id = ID(binary.BigEndian.Uint16(b[1:3]))
	crc8 = b[3]
	return id, crc8, b[4:], nil
}

// EncodeIRDyn assembles an IR-DYN packet: discriminator, profile ID,
// CRC-8, then the dynamic chain only (the static chain is assumed
// already known from a prior IR).
func EncodeIRDyn(id ID, dynamicChain []byte, crc8 byte) []byte {
	b := make([]byte, 0, 4+len(dynamicChain))
	b = append(b, discIRDyn)
	idb := make([]byte, 2)
	binary.BigEndian.PutUint16(idb, uint16(id))
	b = append(b, idb...)
	b = append(b, crc8)
	return append(b, dynamicChain...)
}

// ParseIRDyn mirrors ParseIR for IR-DYN.
func ParseIRDyn(b []byte) (id ID, crc8 byte, dynamicChain []byte, err error) {
	if len(b) < 4 || b[0] != discIRDyn {
		return 0, 0, nil, fmt.Errorf("profile: not an IR-DYN packet")
	}
	id = ID(binary.BigEndian.Uint16(b[1:3]))
	crc8 = b[3]
	return id, crc8, b[4:], nil
}

// EncodeUO0 packs the 1-byte UO-0 format: discriminator 0, 4 SN bits, 3
// CRC-3 bits.
func EncodeUO0(snLSB uint8, crc3 uint8) []byte {
	return []byte{(snLSB&0x0f)<<3 | (crc3 & 0x07)}
}

// ParseUO0 unpacks EncodeUO0's output.
func ParseUO0(b []byte) (snLSB uint8, crc3 uint8, err error) {
	if len(b) < 1 || b[0]&0x80 != 0 {
		return 0, 0, fmt.Errorf("profile: not a UO-0 packet")
	}
	return (b[0] >> 3) & 0x0f, b[0] & 0x07, nil
}

// EncodeUO1 packs the 2-byte UO-1 format: discriminator 10, up to 6
// payload-specific bits (TS or IP-ID LSBs, meaning resolved by context
// state per ResolveUO1), then marker, 4 SN bits and CRC-3.
func EncodeUO1(payload6 uint8, marker bool, snLSB uint8, crc3 uint8) []byte {
	b0 := 0x80 | (payload6 & 0x3f)
	b1 := (snLSB & 0x0f) << 3
	if marker {
		b1 |= 0x80
	}
	b1 |= crc3 & 0x07
	return []byte{b0, b1}
}

// ParseUO1 unpacks EncodeUO1's output.
func ParseUO1(b []byte) (payload6 uint8, marker bool, snLSB uint8, crc3 uint8, err error) {
	if len(b) < 2 || b[0]&0xc0 != 0x80 {
		return 0, false, 0, 0, fmt.Errorf("profile: not a UO-1 packet")
	}
	payload6 = b[0] & 0x3f
	marker = b[1]&0x80 != 0
	snLSB = (b[1] >> 3) & 0x0f
	crc3 = b[1] & 0x07
	return payload6, marker, snLSB, crc3, nil
}

// EncodeUOR2 packs the base 3-byte UOR-2 format: discriminator 110, 5 SN
// bits, an extension flag X, 7 payload-specific bits (TS or IP-ID LSBs,
// meaning resolved by context state per ResolveUOR2) and CRC-7.
func EncodeUOR2(snLSB uint8, ext bool, payload7 uint8, crc7 uint8) []byte {
	b0 := 0xc0 | (snLSB & 0x1f)
	b1 := payload7 & 0x7f
	if ext {
		b1 |= 0x80
	}
	b2 := crc7 & 0x7f
	return []byte{b0, b1, b2}
}

// ParseUOR2 unpacks EncodeUOR2's output.
func ParseUOR2(b []byte) (snLSB uint8, ext bool, payload7 uint8, crc7 uint8, err error) {
	if len(b) < 3 || b[0]&0xe0 != 0xc0 {
		return 0, false, 0, 0, fmt.Errorf("profile: not a UOR-2 packet")
	}
	snLSB = b[0] & 0x1f
	ext = b[1]&0x80 != 0
	payload7 = b[1] & 0x7f
	crc7 = b[2] & 0x7f
	return snLSB, ext, payload7, crc7, nil
}
