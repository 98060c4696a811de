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

// ID is a ROHC profile identifier, RFC 3095 §8 / RFC 5225 §9.
type ID uint16

// Profile IDs this engine knows about.
const (
	IDUncompressed ID = 0x0000
	IDRTP          ID = 0x0001
	IDUDP          ID = 0x0002
	IDESP          ID = 0x0003
	IDIP           ID = 0x0004
	IDUDPLite1     ID = 0x0007
	IDUDPLite2     ID = 0x0008
	IDv2IP         ID = 0x0101
	IDv2IPUDP      ID = 0x0102
	IDv2IPUDPRTP   ID = 0x0103
)

var idNames = map[ID]string{
	IDUncompressed: "UNCOMPRESSED",
	IDRTP:          "RTP",
	IDUDP:          "UDP",
	IDESP:          "ESP",
	IDIP:           "IP",
	IDUDPLite1:     "UDP-LITE-1",
	IDUDPLite2:     "UDP-LITE-2",
	IDv2IP:         "ROHCv2-IP",
	IDv2IPUDP:      "ROHCv2-IP/UDP",
	IDv2IPUDPRTP:   "ROHCv2-IP/UDP/RTP",
}

func (p ID) String() string {
	if n, ok := idNames[p]; ok {
		return n
	}
	return fmt.Sprintf("ID(0x%04x)", uint16(p))
}

// FallbackOrder is the compressor's profile-mismatch retry order (§7):
// try the richest profile first, fall back towards Uncompressed, which
// always matches.
var FallbackOrder = []ID{IDRTP, IDUDP, IDESP, IDUDPLite1, IDIP, IDUncompressed}
