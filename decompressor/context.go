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

// Package decompressor implements the decompress() engine (§4.2, §6):
// the NC/SC/FC state machine, packet-type dispatch, W-LSB decode against
// context references, CRC verification and the ordered repair attempts
// that run on CRC failure before a packet is given up on.
package decompressor

import "github.com/facebook/rohc/context"

// Ctx wraps a shared context.Context with the decompressor-only state:
// where the state machine sits and the two sliding-window counters that
// drive its transitions.
type Ctx struct {
	*context.Context
	State      State
	upgrade    *SlidingCounter // records compressed-packet CRC outcomes in SC
	downgrade  *SlidingCounter // records compressed-packet CRC outcomes in FC
	PendingFB  [][]byte        // feedback queued for emit_feedback, oldest first
}

func newCtx(c *context.Context) *Ctx {
	return &Ctx{
		Context:   c,
		State:     StateNC,
		upgrade:   NewSlidingCounter(k2, n2),
		downgrade: NewSlidingCounter(k2, n2),
	}
}

// onIRSuccess is called once an IR packet's CRC-8 verifies: the context
// now has a confirmed static chain, so NC always advances to SC (§4.2).
func (c *Ctx) onIRSuccess() {
	if c.State == StateNC {
		c.State = StateSC
	}
	c.upgrade.Reset()
	c.downgrade.Reset()
}

// onCompressedOutcome records a compressed (non-IR) packet's CRC verdict
// and applies the sliding-window transition rules.
func (c *Ctx) onCompressedOutcome(ok bool) {
	switch c.State {
	case StateSC:
		c.upgrade.Record(ok)
		if c.upgrade.Satisfied() {
			c.State = StateFC
			c.upgrade.Reset()
			c.downgrade.Reset()
		}
	case StateFC:
		c.downgrade.Record(!ok)
		if c.downgrade.Satisfied() {
			c.State = StateSC
			c.downgrade.Reset()
			c.upgrade.Reset()
		}
	}
}

// queueFeedback appends a feedback message for the caller to drain via
// emit_feedback.
func (c *Ctx) queueFeedback(b []byte) {
	c.PendingFB = append(c.PendingFB, b)
}
