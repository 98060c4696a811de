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

package context

import (
	"time"

	"github.com/facebook/rohc/ipid"
	"github.com/facebook/rohc/profile"
	"github.com/facebook/rohc/tsscale"
	"github.com/facebook/rohc/wlsb"
)

// Context is the per-flow record shared by the compressor and
// decompressor sides (§3): the last known value of every header field the
// engine has ever transmitted/accepted, the W-LSB reference windows, the
// IP-ID behavior classifier, RTP timestamp scaling state, and the
// counters each side's state machine needs. A single struct is used on
// both sides because the tracked values are symmetric; only the state
// machine built on top differs (compressor.state vs decompressor.state).
type Context struct {
	CID     int
	Profile profile.Descriptor

	IP  profile.IPv4Fields
	UDP profile.UDPFields
	ESP profile.ESPFields
	RTP profile.RTPFields

	// MSN is the Master Sequence Number: the RTP sequence number for
	// RTP-bearing profiles, or an engine-maintained counter otherwise.
	MSN uint16

	IPIDClassifier *ipid.Classifier
	IPIDBehavior   ipid.Behavior

	TS *tsscale.Machine

	SNWindow   *wlsb.Window
	TSWindow   *wlsb.Window
	IPIDWindow *wlsb.Window

	// TSScaledWindow tracks the scaled timestamp once tsscale.Machine
	// reaches StateSendScaled; it is a separate, narrower window because
	// the scaled value has its own much smaller natural bit width.
	TSScaledWindow *wlsb.Window

	// StaticFingerprint is a snapshot of the static-chain bytes last
	// confirmed on the wire; a mismatch against a newly observed packet
	// is what §4.1 calls a "static-field change" and forces IR.
	StaticFingerprint []byte

	// LastSeen is the most recent externally supplied wall-clock
	// timestamp this context was touched at, driving the periodic
	// refresh timer (§5: "driven by externally supplied wall-clock
	// timestamps passed in on each packet; no internal timer").
	LastSeen time.Time
	Created  time.Time
}

// WindowWidth is the default wlsb_window_width (§6) used when a caller
// doesn't override it via config.
const WindowWidth = 16

// New builds a fresh Context bound to cid and desc, with empty W-LSB
// windows sized per windowWidth.
func New(cid int, desc profile.Descriptor, windowWidth int, now time.Time) *Context {
	return &Context{
		CID:            cid,
		Profile:        desc,
		IPIDClassifier: ipid.NewClassifier(3),
		TS:             tsscale.NewMachine(),
		SNWindow:       wlsb.NewWindow(windowWidth, 16, 14, wlsb.POffsetAscending()),
		TSWindow:       wlsb.NewWindow(windowWidth, 32, 32, wlsb.POffsetWrapSafe()),
		IPIDWindow:     wlsb.NewWindow(windowWidth, 16, 16, wlsb.POffsetIPID()),
		TSScaledWindow: wlsb.NewWindow(windowWidth, 16, 16, wlsb.POffsetWrapSafe()),
		Created:        now,
		LastSeen:       now,
	}
}

// NonRandIPv4Count returns how many of this context's tracked IPv4 headers
// are classified as something other than RAND, used by the packet-type
// decision engine (§4.1). This engine tracks a single IPv4 header per
// context, so the count is 0 or 1.
func (c *Context) NonRandIPv4Count() int {
	if c.IPIDBehavior == ipid.BehaviorRand {
		return 0
	}
	return 1
}
