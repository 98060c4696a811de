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

package rohc

import (
	"fmt"

	"github.com/facebook/rohc/sdvl"
)

const addCIDPrefix = 0xe0 // top nibble 1110, per §4.4 Add-CID octet

// PrependCID frames pkt with its CID, per the CID space the engine was
// built with (§4.4): CID 0 in the small space needs no framing at all,
// CID 1-15 gets a single Add-CID octet, and the large-CID space carries
// an SDVL-encoded value ahead of the packet.
func PrependCID(cidType CIDType, cid int, pkt []byte) ([]byte, error) {
	if cidType == CIDTypeLarge {
		return PrependLargeCID(cid, pkt)
	}
	if cid == 0 {
		return pkt, nil
	}
	if cid < 0 || cid > 15 {
		return nil, fmt.Errorf("rohc: CID %d out of range for small CID space", cid)
	}
	out := make([]byte, 0, 1+len(pkt))
	out = append(out, addCIDPrefix|byte(cid))
	out = append(out, pkt...)
	return out, nil
}

// StripCID reverses PrependCID: given a small or large CID space and the
// bytes as received off the wire, it returns the CID (0 if none was
// framed) and the remaining packet bytes. The large-CID space always
// frames explicitly, even for CID 0, so there is no ambiguity with the
// first packet-type byte.
func StripCID(cidType CIDType, b []byte) (cid int, rest []byte, err error) {
	if len(b) == 0 {
		return 0, nil, fmt.Errorf("rohc: empty input")
	}
	if cidType == CIDTypeLarge {
		return StripLargeCID(b)
	}
	if b[0]&0xf0 == addCIDPrefix {
		return int(b[0] & 0x0f), b[1:], nil
	}
	return 0, b, nil
}

// PrependLargeCID explicitly frames a large-CID packet, even for CID 0.
func PrependLargeCID(cid int, pkt []byte) ([]byte, error) {
	enc, err := sdvl.Encode(nil, uint32(cid))
	if err != nil {
		return nil, fmt.Errorf("rohc: encoding large CID: %w", err)
	}
	return append(enc, pkt...), nil
}

// StripLargeCID reverses PrependLargeCID.
func StripLargeCID(b []byte) (cid int, rest []byte, err error) {
	v, n, err := sdvl.Decode(b)
	if err != nil {
		return 0, nil, fmt.Errorf("rohc: stripping large CID: %w", err)
	}
	return int(v), b[n:], nil
}
