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

import (
	"bytes"
	"fmt"
	"time"

	"github.com/facebook/rohc/context"
	"github.com/facebook/rohc/crc"
	"github.com/facebook/rohc/feedback"
	"github.com/facebook/rohc/ipid"
	"github.com/facebook/rohc/profile"
	"github.com/facebook/rohc/rohc"
	"github.com/facebook/rohc/sdvl"
	"github.com/facebook/rohc/tsscale"
	"github.com/sirupsen/logrus"
)

// Config configures a new_compressor (§6).
type Config struct {
	CIDType     rohc.CIDType
	MaxContexts int
	WindowWidth int
	Mode        rohc.Mode
	Features    rohc.FeatureSet
	Profiles    []profile.ID

	// IRRefreshInterval is how many packets a context sends in SO/FO
	// before the state machine is forced back to IR as a periodic
	// resync, independent of any loss (§5: "driven by externally
	// supplied wall-clock timestamps" when FeatureTimeBasedRefreshes is
	// set; otherwise this is a plain packet count).
	IRRefreshInterval int
	// RefreshPeriod forces a context back to IR once at least this much
	// wall-clock time separates its previous packet from the current one,
	// used only when Features has FeatureTimeBasedRefreshes set. It does
	// not measure time since the last IR: a context whose packets arrive
	// closer together than RefreshPeriod is never refreshed by it.
	RefreshPeriod time.Duration

	Logger logrus.FieldLogger

	// RNG, if set, is used to pick initial CIDs for new flows so two
	// peers bootstrapping without coordination are unlikely to collide
	// (new_compressor's rng_cb, §6). Nil falls back to lowest-free-CID
	// allocation.
	RNG rohc.RNG
	// RTPDetector, if set, backs ClassifyRTP (rtp_detection_cb, §6).
	RTPDetector rohc.RTPDetector
}

// Engine is a compress() instance: one profile registry, one CID table,
// one binding cache, all scoped to a single pair of peers (§5).
type Engine struct {
	cfg      Config
	registry *profile.Registry
	table    *context.Table[Ctx]
	bindings *context.BindingCache
	log      logrus.FieldLogger
}

// New builds a compressor Engine per cfg, enabling every profile in
// cfg.Profiles (new_compressor + enable_profiles, §6).
func New(cfg Config) (*Engine, error) {
	if cfg.WindowWidth == 0 {
		cfg.WindowWidth = context.WindowWidth
	}
	if cfg.MaxContexts == 0 {
		cfg.MaxContexts = cfg.CIDType.MaxCID() + 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	reg := profile.NewRegistry()
	if err := reg.Enable(cfg.Profiles...); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		registry: reg,
		table:    context.NewTable[Ctx](cfg.CIDType, cfg.MaxContexts),
		bindings: context.NewBindingCache(),
		log:      cfg.Logger,
	}, nil
}

// ClassifyRTP reports whether udpPayload looks like RTP, deferring to
// cfg.RTPDetector when configured and otherwise falling back to the
// common convention of RTP living on an even-numbered port pair (RFC
// 3550 §11: the associated RTCP stream uses the next odd port), which a
// caller may use to decide pkt.HasRTP before calling Compress.
func (e *Engine) ClassifyRTP(dstPort uint16, udpPayload []byte) bool {
	if e.cfg.RTPDetector != nil {
		return e.cfg.RTPDetector.IsRTP(udpPayload)
	}
	return dstPort%2 == 0 && len(udpPayload) >= 12
}

// Contexts returns every currently bound context, for read-only
// diagnostics (the DUMP_PACKETS feature's context/packet dump).
func (e *Engine) Contexts() []context.Entry[Ctx] {
	return e.table.All()
}

// EnableProfiles adds more profiles to the engine's registry at runtime
// (enable_profiles, §6).
func (e *Engine) EnableProfiles(ids ...profile.ID) error {
	return e.registry.Enable(ids...)
}

// SetWLSBWidth changes the W-LSB window width new contexts are created
// with (set_wlsb_width, §6). It does not retroactively resize existing
// contexts' windows.
func (e *Engine) SetWLSBWidth(width int) {
	e.cfg.WindowWidth = width
}

// SetFeatures replaces the engine's feature bitset (set_features, §6).
func (e *Engine) SetFeatures(fs rohc.FeatureSet) {
	e.cfg.Features = fs
}

// lookupOrCreate resolves pkt's context, creating and binding a fresh one
// if this is the first packet seen for its flow.
func (e *Engine) lookupOrCreate(pkt *profile.Packet, now time.Time) (*Ctx, rohc.Status) {
	key := pkt.Key()
	if cid, ok := e.bindings.Lookup(key); ok {
		if c, ok := e.table.Get(cid); ok {
			return c, rohc.StatusOK
		}
		// Evicted since binding; fall through to reclassify/reallocate.
	}

	desc, ok := e.registry.Classify(pkt)
	if !ok {
		return nil, rohc.StatusNoMatchingProfile
	}
	var cid int
	var err error
	if e.cfg.RNG != nil {
		cid, err = e.table.AllocateCIDRandom(e.cfg.RNG)
	} else {
		cid, err = e.table.AllocateCID()
	}
	if err != nil {
		return nil, rohc.StatusError
	}
	c := newCtx(context.New(cid, desc, e.cfg.WindowWidth, now))
	if evictedCID, evicted := e.table.Put(cid, c); evicted {
		e.log.WithFields(logrus.Fields{"evicted_cid": evictedCID, "new_cid": cid}).Debug("rohc: evicted LRU context")
	}
	e.bindings.Bind(key, cid)
	return c, rohc.StatusOK
}

// Compress implements compress() (§4): classify/create the context,
// decide a packet type for the current state, encode it, and advance the
// state machine on success. The context is left completely unchanged on
// any failure path (§7: "a failed compress never mutates context state").
func (e *Engine) Compress(pkt *profile.Packet, now time.Time) ([]byte, rohc.Status) {
	c, status := e.lookupOrCreate(pkt, now)
	if status != rohc.StatusOK {
		return nil, status
	}

	kind := c.Profile.Kind
	staticBytes := profile.BuildStaticChain(kind, pkt)
	if c.StaticFingerprint != nil && !bytes.Equal(c.StaticFingerprint, staticBytes) {
		c.forceIR()
	}
	if e.dueForRefresh(c, now) {
		c.forceIR()
	}

	msn := e.nextMSN(c, pkt)
	behavior := e.classifyIPID(c, msn, pkt.IP.IPID)
	tsState := tsStateFor(c, kind, pkt)

	var out []byte
	var err error
	switch c.State {
	case StateIR:
		out, err = e.encodeIR(c, kind, pkt, staticBytes, msn, behavior)
	case StateFO:
		out, err = e.encodeIRDyn(c, kind, pkt, msn, behavior)
	default: // StateSO
		out, err = e.encodeSO(c, kind, pkt, msn, behavior, tsState)
		if out == nil && err == nil {
			// DecideSO found nothing that fits; drop to FO for this packet.
			out, err = e.encodeIRDyn(c, kind, pkt, msn, behavior)
			c.downgrade()
			c.State = StateFO
		}
	}
	if err != nil {
		return nil, rohc.StatusError
	}

	framed, ferr := rohc.PrependCID(e.cfg.CIDType, c.CID, out)
	if ferr != nil {
		return nil, rohc.StatusError
	}

	e.commit(c, kind, pkt, staticBytes, msn, behavior, now)
	c.onSendSuccess()
	return framed, rohc.StatusOK
}

func (e *Engine) dueForRefresh(c *Ctx, now time.Time) bool {
	if c.State == StateIR {
		return false
	}
	if e.cfg.Features.Has(rohc.FeatureTimeBasedRefreshes) && e.cfg.RefreshPeriod > 0 {
		return now.Sub(c.LastSeen) >= e.cfg.RefreshPeriod
	}
	if e.cfg.IRRefreshInterval > 0 {
		return c.PacketsSentIR >= e.cfg.IRRefreshInterval
	}
	return false
}

// nextMSN computes the Master Sequence Number for pkt: the RTP sequence
// number when the profile carries RTP, otherwise an engine-maintained
// counter (§3).
func (e *Engine) nextMSN(c *Ctx, pkt *profile.Packet) uint16 {
	if pkt.HasRTP {
		return pkt.RTP.SequenceNumber
	}
	return c.MSN + 1
}

func (e *Engine) classifyIPID(c *Ctx, msn uint16, ipid16 uint16) ipid.Behavior {
	return c.IPIDClassifier.Observe(msn, ipid16)
}

type scaledTS struct {
	active bool
	value  uint32
}

func tsStateFor(c *Ctx, kind profile.Kind, pkt *profile.Packet) scaledTS {
	if !pkt.HasRTP {
		return scaledTS{}
	}
	c.TS.Observe(pkt.RTP.Timestamp)
	if c.TS.State() == tsscale.StateSendScaled {
		return scaledTS{active: true, value: c.TS.Scale(pkt.RTP.Timestamp)}
	}
	return scaledTS{}
}

func (e *Engine) encodeIR(c *Ctx, kind profile.Kind, pkt *profile.Packet, staticBytes []byte, msn uint16, behavior ipid.Behavior) ([]byte, error) {
	dyn := e.dynamicChain(c, kind, pkt, behavior, nil)
	body := append(append([]byte{}, uint16Bytes(uint16(c.Profile.ID))...), staticBytes...)
	body = append(body, dyn...)
	crc8 := crc.Type8.Compute(body)
	return profile.EncodeIR(c.Profile.ID, staticBytes, dyn, crc8), nil
}

func (e *Engine) encodeIRDyn(c *Ctx, kind profile.Kind, pkt *profile.Packet, msn uint16, behavior ipid.Behavior) ([]byte, error) {
	var strideSDVL []byte
	if pkt.HasRTP && c.TS.State() == tsscale.StateInitStride {
		enc, err := sdvl.Encode(nil, c.TS.Stride())
		if err == nil {
			strideSDVL = enc
		}
	}
	dyn := e.dynamicChain(c, kind, pkt, behavior, strideSDVL)
	crc8 := crc.Type8.Compute(dyn)
	return profile.EncodeIRDyn(c.Profile.ID, dyn, crc8), nil
}

func (e *Engine) dynamicChain(c *Ctx, kind profile.Kind, pkt *profile.Packet, behavior ipid.Behavior, strideSDVL []byte) []byte {
	behaviorByte := byte(behavior)
	return profile.BuildDynamicChain(kind, pkt, behaviorByte, strideSDVL)
}

func (e *Engine) encodeSO(c *Ctx, kind profile.Kind, pkt *profile.Packet, msn uint16, behavior ipid.Behavior, ts scaledTS) ([]byte, error) {
	nrSN, err := c.SNWindow.RequiredBits(uint64(msn))
	if err != nil {
		return nil, nil // no reference established yet; caller falls back to FO
	}
	var nrTS uint
	sdvlFits := true
	if pkt.HasRTP {
		if ts.active {
			// Once TS_STRIDE/TS_OFFSET are confirmed the scaled timestamp
			// advances by exactly one tick per MSN step by construction, so
			// the decompressor can always rebuild it from the MSN alone
			// (see inferTimestamp on the decompress side): it costs zero
			// transmitted bits, the same way a constant ZERO field does.
			nrTS = 0
		} else {
			nrTS, err = c.TSWindow.RequiredBits(uint64(pkt.RTP.Timestamp))
		}
		if err != nil {
			return nil, nil
		}
		if _, lerr := sdvl.Len(uint32(ts.value)); lerr != nil {
			sdvlFits = false
		}
	}
	var nrIPID uint
	nonRand := c.NonRandIPv4Count()
	// wlsb.Encode always searches from k=1, so it can never report 0 bits
	// even for a field that needs none; ZERO behavior means the field is
	// constant, so short-circuit it to nrIPID=0 instead of asking the
	// window.
	if nonRand > 0 && behavior != ipid.BehaviorZero {
		nrIPID, err = c.IPIDWindow.RequiredBits(uint64(ipid.Offset(behavior, pkt.IP.IPID)))
		if err != nil {
			return nil, nil
		}
	}

	in := profile.DecisionInput{
		NrSN:          nrSN,
		NrTS:          nrTS,
		NrIPID:        nrIPID,
		Marker:        pkt.HasRTP && pkt.RTP.Marker,
		NonRandIPv4:   nonRand,
		HasRTP:        pkt.HasRTP,
		TSSDVLEncodes: sdvlFits,
	}
	pt, ok := profile.DecideSO(in)
	if !ok {
		return nil, nil
	}

	ipv4Behaviors := []byte{}
	if nonRand > 0 {
		ipv4Behaviors = []byte{byte(behavior)}
	}
	snLSB := uint8(msn & 0x0f)

	switch pt {
	case profile.PTUO0:
		crc3 := crc.Control3(0, msn, ipv4Behaviors)
		return profile.EncodeUO0(snLSB, crc3), nil
	case profile.PTUO1RTP, profile.PTUO1TS, profile.PTUO1ID:
		crc3 := crc.Control3(0, msn, ipv4Behaviors)
		var payload6 uint8
		switch pt {
		case profile.PTUO1TS:
			if ts.active {
				payload6 = uint8(ts.value & 0x3f)
			}
		case profile.PTUO1ID:
			payload6 = uint8(ipid.Offset(behavior, pkt.IP.IPID) & 0x3f)
		}
		return profile.EncodeUO1(payload6, pkt.HasRTP && pkt.RTP.Marker, snLSB, crc3), nil
	default: // UOR-2 family
		crc7 := crc.Control7(0, msn, ipv4Behaviors)
		snLSB5 := uint8(msn & 0x1f)
		var payload7 uint8
		switch pt {
		case profile.PTUOR2TS:
			if ts.active {
				payload7 = uint8(ts.value & 0x7f)
			}
		case profile.PTUOR2ID:
			payload7 = uint8(ipid.Offset(behavior, pkt.IP.IPID) & 0x7f)
		}
		return profile.EncodeUOR2(snLSB5, false, payload7, crc7), nil
	}
}

// commit applies the successfully transmitted packet's fields to the
// context: reference windows, tracked header fields, and the static
// fingerprint used to detect the next static-field change.
func (e *Engine) commit(c *Ctx, kind profile.Kind, pkt *profile.Packet, staticBytes []byte, msn uint16, behavior ipid.Behavior, now time.Time) {
	c.SNWindow.Push(uint64(msn), uint64(msn))
	if c.NonRandIPv4Count() > 0 {
		c.IPIDWindow.Push(uint64(ipid.Offset(behavior, pkt.IP.IPID)), uint64(msn))
	}
	if pkt.HasRTP {
		c.TSWindow.Push(uint64(pkt.RTP.Timestamp), uint64(msn))
		if c.TS.State() == tsscale.StateSendScaled {
			c.TSScaledWindow.Push(uint64(c.TS.Scale(pkt.RTP.Timestamp)), uint64(msn))
		}
		c.RTP = pkt.RTP
	}
	c.IP = pkt.IP
	c.IPIDBehavior = behavior
	if pkt.HasUDP {
		c.UDP = pkt.UDP
	}
	if pkt.HasESP {
		c.ESP = pkt.ESP
	}
	c.MSN = msn
	c.StaticFingerprint = staticBytes
	c.LastSeen = now
	if c.State == StateIR {
		c.PacketsSentIR = 0
	} else {
		c.PacketsSentIR++
	}
}

// DeliverFeedback implements deliver_feedback(): apply a parsed
// FEEDBACK-1/2 message to the context it names (§4.2, §6). The CID is
// assumed stripped by the caller's channel framing, matching the
// decompressor's emit_feedback counterpart.
func (e *Engine) DeliverFeedback(cid int, raw []byte) error {
	c, ok := e.table.Get(cid)
	if !ok {
		return fmt.Errorf("compressor: feedback for unknown CID %d", cid)
	}
	if len(raw) == 1 {
		kind, _ := feedback.DecodeFeedback1(raw[0])
		return e.applyFeedback(c, kind)
	}
	p, err := feedback.DecodeFeedback2(raw)
	if err != nil {
		return err
	}
	return e.applyFeedback(c, p.Kind)
}

func (e *Engine) applyFeedback(c *Ctx, kind feedback.Kind) error {
	switch kind {
	case feedback.KindAck:
		c.NackedSinceAck = false
	case feedback.KindNack:
		c.NackedSinceAck = true
		c.downgrade()
	case feedback.KindStaticNack:
		c.forceIR()
	}
	return nil
}

func uint16Bytes(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}
