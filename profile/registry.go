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

// Kind classifies which chain layout a profile uses; the compressor and
// decompressor dispatch on this rather than on an interface's dynamic
// pointer, keeping the hot path monomorphic (§9 "Profile polymorphism").
type Kind uint8

// Profile kinds. Each corresponds to one concrete chain/decision
// implementation in this package.
const (
	KindUncompressed Kind = iota
	KindIP
	KindUDP
	KindESP
	KindUDPLite
	KindRTP
	KindV2IP
	KindV2IPUDP
	KindV2IPUDPRTP
)

// Descriptor is the immutable, per-profile capability set (§3 "A profile
// is immutable"): a match predicate plus which Kind of chain coder and
// decision table the engines should use for contexts bound to it.
type Descriptor struct {
	ID   ID
	Name string
	Kind Kind
	// Match reports whether pkt's header shape is compatible with this
	// profile (e.g. RTP requires HasUDP+HasRTP).
	Match func(pkt *Packet) bool
	// Disabled marks profiles that are registered but never match,
	// mirroring the source's "#if 0"-disabled ROHCv2 RTP profile (open
	// question in spec.md §9): present in the registry for completeness,
	// never selected until RTPv2 chain coding is implemented.
	Disabled bool
}

func isRTP(pkt *Packet) bool  { return pkt.HasUDP && pkt.HasRTP }
func isUDP(pkt *Packet) bool  { return pkt.HasUDP && !pkt.HasRTP }
func isESP(pkt *Packet) bool  { return pkt.HasESP }
func isIPOnly(pkt *Packet) bool {
	return !pkt.HasUDP && !pkt.HasESP
}

// Registry is the set of profiles an engine was configured with
// (enable_profiles, §6). A profile not enabled cannot match any packet.
type Registry struct {
	enabled map[ID]Descriptor
}

// NewRegistry returns an empty Registry; use Enable to populate it.
func NewRegistry() *Registry {
	return &Registry{enabled: make(map[ID]Descriptor)}
}

// All is the full catalogue of profiles this engine implements. Its order
// is not the fallback order; Classify walks FallbackOrder instead.
func All() []Descriptor {
	return []Descriptor{
		{ID: IDRTP, Name: "RTP", Kind: KindRTP, Match: isRTP},
		{ID: IDESP, Name: "ESP", Kind: KindESP, Match: isESP},
		{ID: IDUDPLite1, Name: "UDP-Lite", Kind: KindUDPLite, Match: isUDP},
		{ID: IDUDP, Name: "UDP", Kind: KindUDP, Match: isUDP},
		{ID: IDIP, Name: "IP", Kind: KindIP, Match: isIPOnly},
		{ID: IDUncompressed, Name: "Uncompressed", Kind: KindUncompressed, Match: func(*Packet) bool { return true }},
		{ID: IDv2IP, Name: "ROHCv2-IP", Kind: KindV2IP, Match: isIPOnly},
		{ID: IDv2IPUDP, Name: "ROHCv2-IP/UDP", Kind: KindV2IPUDP, Match: isUDP},
		{ID: IDv2IPUDPRTP, Name: "ROHCv2-IP/UDP/RTP", Kind: KindV2IPUDPRTP, Match: isRTP, Disabled: true},
	}
}

// Enable adds every profile in ids to the registry, erroring on an
// unrecognized ID.
func (r *Registry) Enable(ids ...ID) error {
	catalogue := make(map[ID]Descriptor, len(All()))
	for _, d := range All() {
		catalogue[d.ID] = d
	}
	for _, id := range ids {
		d, ok := catalogue[id]
		if !ok {
			return fmt.Errorf("profile: unknown profile id %s", id)
		}
		r.enabled[id] = d
	}
	return nil
}

// Enabled reports whether id is enabled.
func (r *Registry) Enabled(id ID) bool {
	_, ok := r.enabled[id]
	return ok
}

// Get returns the Descriptor for id if it is enabled.
func (r *Registry) Get(id ID) (Descriptor, bool) {
	d, ok := r.enabled[id]
	return d, ok
}

// Classify returns the first enabled, non-disabled profile (in
// FallbackOrder) whose Match predicate accepts pkt. Uncompressed always
// matches, so Classify never fails if Uncompressed is enabled (§7:
// "A packet always finds a home in the Uncompressed profile").
func (r *Registry) Classify(pkt *Packet) (Descriptor, bool) {
	for _, id := range FallbackOrder {
		d, ok := r.enabled[id]
		if !ok || d.Disabled {
			continue
		}
		if d.Match(pkt) {
			return d, true
		}
	}
	return Descriptor{}, false
}
