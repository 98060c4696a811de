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

package decompressor

import "github.com/facebook/rohc/wlsb"

// candidate is one guess at the decoded MSN the repair attempts produce,
// together with the reference the guess was built from.
type candidate struct {
	msn    uint16
	source string
}

// repairSNWrap guesses that the low bits decoded correctly but against
// the wrong wrap cycle of the k transmitted bits: common after a long
// burst of loss pushes the real value 2^k past where REF_0 expected it, so
// it redecodes with the reference moved forward by 2^k (§4.2 repair
// attempt 1, "SN wrap correction").
func repairSNWrap(snLSB uint8, k uint, win *wlsb.Window) (candidate, bool) {
	ref, ok := win.Ref(wlsb.Ref0)
	if !ok {
		return candidate{}, false
	}
	mod := uint64(1) << win.BitWidth()
	guess, err := wlsb.Decode(uint64(snLSB), k, (ref+(uint64(1)<<k))%mod, 0, win.BitWidth())
	if err != nil {
		return candidate{}, false
	}
	return candidate{msn: uint16(guess), source: "sn_wrap"}, true
}

// repairClockCorrection guesses that the decode was off by one step: it
// redecodes the SN bits against REF_0 + 1 instead of REF_0 (§4.2 repair
// attempt 2, "clock correction"). It runs for every context, RTP or not,
// and does not look at the timestamp or TS_STRIDE.
func repairClockCorrection(snLSB uint8, k uint, snWin *wlsb.Window) (candidate, bool) {
	ref, ok := snWin.Ref(wlsb.Ref0)
	if !ok {
		return candidate{}, false
	}
	guess, err := wlsb.Decode(uint64(snLSB), k, ref+1, 0, snWin.BitWidth())
	if err != nil {
		return candidate{}, false
	}
	return candidate{msn: uint16(guess), source: "clock_correction"}, true
}

// repairReferenceRollback retries the decode against REF_MINUS_1 instead
// of REF_0, for the case where the most recent reference was itself never
// confirmed by this peer (§4.2 repair attempt 3, "reference rollback").
func repairReferenceRollback(snLSB uint8, k uint, win *wlsb.Window) (candidate, bool) {
	ref, ok := win.Ref(wlsb.RefMinus1)
	if !ok {
		return candidate{}, false
	}
	guess, err := wlsb.Decode(uint64(snLSB), k, ref, 0, win.BitWidth())
	if err != nil {
		return candidate{}, false
	}
	return candidate{msn: uint16(guess), source: "reference_rollback"}, true
}
