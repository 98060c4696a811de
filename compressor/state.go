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

package compressor

// State is the compressor-side state machine position (§4.1): IR, First
// Order or Second Order. Higher states emit smaller packets but require
// more confidence that the peer's context already agrees.
type State uint8

// Compressor states, in ascending order of compression.
const (
	StateIR State = iota
	StateFO
	StateSO
)

func (s State) String() string {
	switch s {
	case StateIR:
		return "IR"
	case StateFO:
		return "FO"
	case StateSO:
		return "SO"
	default:
		return "?"
	}
}

// minConfirmations is the number of consecutive successfully-sent packets
// required before the state machine advances a step, mirroring the
// stride-confirmation count tsscale uses for the same purpose (§4.1).
const minConfirmations = 3

// advance computes the next state given the current one and how many
// consecutive packets have gone out unchanged since the last transition.
// It never skips a state: IR always steps to FO first, matching "the
// state machine as a ratchet" (§4.1, §9).
func advance(cur State, confirmCount int) State {
	if confirmCount < minConfirmations {
		return cur
	}
	switch cur {
	case StateIR:
		return StateFO
	case StateFO:
		return StateSO
	default:
		return StateSO
	}
}
