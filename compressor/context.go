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

// Package compressor implements the compress() engine (§4.1, §6): the
// IR/FO/SO state machine, packet-type decision and the per-context
// counters that drive both.
package compressor

import (
	"github.com/facebook/rohc/context"
)

// Ctx wraps a shared context.Context with the compressor-only state the
// decompressor side never needs: where the state machine sits, and how
// many consecutive packets have gone out unchanged since it last moved.
type Ctx struct {
	*context.Context
	State        State
	ConfirmCount int
	// PacketsSentIR counts packets sent since the context last carried a
	// full IR, the periodic-refresh clock IRRefreshInterval compares
	// against.
	PacketsSentIR  int
	NackedSinceAck bool
}

// newCtx wraps a freshly allocated context.Context, starting in IR as
// every new context must (§4.1: "a context is born in IR").
func newCtx(c *context.Context) *Ctx {
	return &Ctx{Context: c, State: StateIR}
}

// onSendSuccess records that a packet went out and was accepted, pushing
// the state machine towards higher compression.
func (c *Ctx) onSendSuccess() {
	c.ConfirmCount++
	c.State = advance(c.State, c.ConfirmCount)
	if c.State != StateIR {
		c.ConfirmCount = 0
	}
}

// forceIR resets the state machine to IR, used on static-field change,
// explicit NACK/STATIC-NACK feedback, or profile reclassification.
func (c *Ctx) forceIR() {
	c.State = StateIR
	c.ConfirmCount = 0
	c.PacketsSentIR = 0
}

// downgrade drops the state machine one notch, used on a plain NACK
// (§4.1: "a NACK asks for the next richer format, not necessarily IR").
func (c *Ctx) downgrade() {
	switch c.State {
	case StateSO:
		c.State = StateFO
	case StateFO, StateIR:
		c.State = StateIR
	}
	c.ConfirmCount = 0
}
