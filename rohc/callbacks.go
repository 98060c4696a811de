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

// RNG is the new_compressor(..., rng_cb, ...) collaborator (§6):
// required on the compressor for generating unpredictable fields, such
// as an initial IR CID picked to avoid collision when two peers
// bootstrap a context without coordination.
type RNG interface {
	Uint32() uint32
}

// RTPDetector is the rtp_detection_cb collaborator (§6): a
// caller-supplied classifier deciding whether a UDP payload is RTP, used
// before building a Packet so the profile registry's RTP/UDP match
// predicates see the right HasRTP value.
type RTPDetector interface {
	IsRTP(udpPayload []byte) bool
}
