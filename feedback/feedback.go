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

// Package feedback parses and builds the ROHC feedback channel (§6):
// FEEDBACK-1, a single profile-specific octet, and FEEDBACK-2, which
// carries a typed option list driving mode and state transitions.
package feedback

import "fmt"

// Kind is the acknowledgement class a feedback packet carries.
type Kind uint8

// Feedback kinds (§4.1, §4.2, §7).
const (
	KindAck Kind = iota
	KindNack
	KindStaticNack
)

func (k Kind) String() string {
	switch k {
	case KindAck:
		return "ACK"
	case KindNack:
		return "NACK"
	case KindStaticNack:
		return "STATIC-NACK"
	default:
		return "?"
	}
}

// OptionType is a FEEDBACK-2 option type (§6).
type OptionType uint8

// FEEDBACK-2 option types.
const (
	OptCRC OptionType = iota + 1
	OptReject
	OptSNNotValid
	OptSN
	OptClock
	OptJitter
	OptLoss
)

// Option is one (type, length, value) FEEDBACK-2 option.
type Option struct {
	Type  OptionType
	Value []byte
}

// Packet is a parsed feedback message, FEEDBACK-1 or FEEDBACK-2.
type Packet struct {
	Kind    Kind
	IsFB2   bool
	Mode    uint8 // only meaningful for FEEDBACK-2
	Options []Option
}

// EncodeFeedback1 packs the single-octet FEEDBACK-1 form: top 2 bits are
// the Kind, low 6 bits are profile-specific (commonly the low bits of the
// SN being acknowledged).
func EncodeFeedback1(kind Kind, profileBits uint8) byte {
	return byte(kind)<<6 | (profileBits & 0x3f)
}

// DecodeFeedback1 reverses EncodeFeedback1.
func DecodeFeedback1(b byte) (kind Kind, profileBits uint8) {
	return Kind(b >> 6), b & 0x3f
}

// EncodeFeedback2 packs a FEEDBACK-2 message: a header byte (kind, mode)
// followed by each option as (type byte, length byte, value bytes).
func EncodeFeedback2(p Packet) ([]byte, error) {
	out := []byte{byte(p.Kind)<<6 | (p.Mode & 0x03)}
	for _, opt := range p.Options {
		if len(opt.Value) > 255 {
			return nil, fmt.Errorf("feedback: option %d value too long (%d bytes)", opt.Type, len(opt.Value))
		}
		out = append(out, byte(opt.Type), byte(len(opt.Value)))
		out = append(out, opt.Value...)
	}
	return out, nil
}

// DecodeFeedback2 reverses EncodeFeedback2.
func DecodeFeedback2(b []byte) (Packet, error) {
	if len(b) < 1 {
		return Packet{}, fmt.Errorf("feedback: empty FEEDBACK-2 message")
	}
	p := Packet{Kind: Kind(b[0] >> 6), IsFB2: true, Mode: b[0] & 0x03}
	rest := b[1:]
	for len(rest) > 0 {
		if len(rest) < 2 {
			return Packet{}, fmt.Errorf("feedback: truncated option header")
		}
		optType := OptionType(rest[0])
		length := int(rest[1])
		if len(rest) < 2+length {
			return Packet{}, fmt.Errorf("feedback: option %d truncated value", optType)
		}
		value := append([]byte(nil), rest[2:2+length]...)
		p.Options = append(p.Options, Option{Type: optType, Value: value})
		rest = rest[2+length:]
	}
	return p, nil
}

// SNOption returns the raw bytes of the SN option in p, if present.
func (p Packet) SNOption() ([]byte, bool) {
	for _, opt := range p.Options {
		if opt.Type == OptSN {
			return opt.Value, true
		}
	}
	return nil, false
}
