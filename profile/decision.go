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

// DecisionInput bundles the per-packet bit requirements and flags the
// decision engine needs, computed by the compressor from the current
// W-LSB windows *before* a packet type is chosen (§4.1).
type DecisionInput struct {
	NrSN          uint // bits required for the sequence/MSN field
	NrTS          uint // bits required for the (possibly scaled) RTP timestamp
	NrIPID        uint // bits required for the single tracked IPv4 IP-ID field
	Marker        bool // RTP marker bit, M
	NonRandIPv4   int  // count of IPv4 headers classified non-random (not RAND)
	HasRTP        bool
	TSSDVLEncodes bool // whether NrTS's full value fits an SDVL field
}

// DecideSO runs the SO-state packet-type decision table from §4.1. It
// returns ok=false when nothing fits and the caller must fall back to FO
// and emit IR-DYN.
func DecideSO(in DecisionInput) (pt PacketType, ok bool) {
	switch {
	case in.NrSN <= 4 && in.NrIPID == 0 && in.NrTS == 0 && !in.Marker:
		return PTUO0, true
	case in.NonRandIPv4 == 0 && in.NrSN <= 4 && in.NrTS <= 6:
		return PTUO1RTP, true
	case in.NonRandIPv4 == 1 && in.NrIPID == 0 && in.NrSN <= 4 && in.NrTS <= 5:
		return PTUO1TS, true
	case in.NonRandIPv4 >= 1 && in.NrIPID <= 5 && in.NrSN <= 4 && in.NrTS == 0 && !in.Marker:
		return PTUO1ID, true
	case in.NrIPID > 0 && in.TSSDVLEncodes:
		return PTUOR2ID, true
	case in.NonRandIPv4 > 0:
		return PTUOR2TS, true
	case in.HasRTP:
		return PTUOR2RTP, true
	default:
		return 0, false
	}
}
