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

// Package tsscale implements the RTP Timestamp-Scaled subsystem (§3, §4.1):
// the three-state machine that learns a constant TS_STRIDE and, once
// confirmed, lets the compressor transmit scaled timestamps instead of
// full 32-bit values.
package tsscale

// State is one of the three TS scaling states.
type State uint8

const (
	// StateInitTS is the initial state: no stride known yet.
	StateInitTS State = iota
	// StateInitStride: a stride has been proposed and is being confirmed.
	StateInitStride
	// StateSendScaled: scaled timestamps are flowing.
	StateSendScaled
)

func (s State) String() string {
	switch s {
	case StateInitTS:
		return "INIT_TS"
	case StateInitStride:
		return "INIT_STRIDE"
	case StateSendScaled:
		return "SEND_SCALED"
	default:
		return "?"
	}
}

// MinStrideConfirmations is ROHC_INIT_TS_STRIDE_MIN (§4.1): the number of
// consecutive packets, counting the one that proposed TS_STRIDE, whose
// timestamp delta must equal the stride before the machine moves to
// SEND_SCALED. It counts packets observed, not how many times the stride
// field itself went out on the wire.
const MinStrideConfirmations = 3

// Machine tracks TS_STRIDE/TS_OFFSET and the confirmation counter for one
// RTP flow's timestamp field.
type Machine struct {
	state               State
	stride              uint32
	offset              uint32
	nrInitStridePackets int
	haveLastTS          bool
	lastTS              uint32
	minConfirmations    int
}

// NewMachine returns a Machine in StateInitTS.
func NewMachine() *Machine {
	return &Machine{state: StateInitTS, minConfirmations: MinStrideConfirmations}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Stride returns the currently agreed TS_STRIDE.
func (m *Machine) Stride() uint32 { return m.stride }

// Offset returns TS_OFFSET, the stride-phase reference point.
func (m *Machine) Offset() uint32 { return m.offset }

// Observe feeds the next RTP timestamp seen by the compressor and advances
// the state machine. It returns the state the packet carrying ts should
// be formatted in.
func (m *Machine) Observe(ts uint32) State {
	defer func() { m.lastTS, m.haveLastTS = ts, true }()

	if !m.haveLastTS {
		return m.state
	}
	delta := ts - m.lastTS // wraps correctly for uint32

	switch m.state {
	case StateInitTS:
		if delta == 0 {
			// TS constant: stay in IR-equivalent state rather than propose
			// a zero stride (§4.1).
			return m.state
		}
		m.stride = delta
		m.offset = ts % delta
		m.nrInitStridePackets = 1
		m.state = StateInitStride
	case StateInitStride:
		if delta != m.stride {
			// stride changed before confirmation; restart the proposal.
			m.stride = delta
			if delta != 0 {
				m.offset = ts % delta
			}
			m.nrInitStridePackets = 1
			break
		}
		m.nrInitStridePackets++
		if m.nrInitStridePackets >= m.minConfirmations {
			m.state = StateSendScaled
		}
	case StateSendScaled:
		if delta != 0 && delta != m.stride {
			// stride broke down; re-learn it.
			m.state = StateInitTS
			m.nrInitStridePackets = 0
		}
	}
	return m.state
}

// Scale converts an absolute timestamp to its scaled form, valid only once
// State() == StateSendScaled.
func (m *Machine) Scale(ts uint32) uint32 {
	if m.stride == 0 {
		return 0
	}
	return (ts - m.offset) / m.stride
}

// Unscale reconstructs an absolute timestamp from its scaled form.
func (m *Machine) Unscale(scaled uint32) uint32 {
	return scaled*m.stride + m.offset
}

// Reset returns the machine to StateInitTS, used when a context is
// reinitialized via IR (§4.1, §4.2).
func (m *Machine) Reset() {
	*m = Machine{state: StateInitTS, minConfirmations: m.minConfirmations}
}
