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

// Package enginepool is a thin convenience manager for a process hosting
// many engine instances at once, one per flow direction per peer (§5: "a
// process may host many engine instances... independent"). It is not
// required by the single-engine core; it exists so a caller processing
// N independent flows doesn't have to hand-roll the fan-out.
package enginepool

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/facebook/rohc/compressor"
	"github.com/facebook/rohc/profile"
	"github.com/facebook/rohc/rohc"
)

// CompressorPool fans work for many independent flows out across their
// own compressor.Engine, running each flow's job concurrently and
// reporting the first error once every job has returned (mirroring the
// errgroup-based fan-out used for independent per-peer work in a
// replay/fuzz harness).
type CompressorPool struct {
	engines map[string]*compressor.Engine
}

// NewCompressorPool builds an empty pool; engines are added with Add.
func NewCompressorPool() *CompressorPool {
	return &CompressorPool{engines: make(map[string]*compressor.Engine)}
}

// Add registers engine under flow, replacing any engine already
// registered under that name.
func (p *CompressorPool) Add(flow string, engine *compressor.Engine) {
	p.engines[flow] = engine
}

// Get returns the engine registered under flow, if any.
func (p *CompressorPool) Get(flow string) (*compressor.Engine, bool) {
	e, ok := p.engines[flow]
	return e, ok
}

// Len reports how many flows are registered.
func (p *CompressorPool) Len() int {
	return len(p.engines)
}

// Job is one unit of work dispatched to a named flow's engine.
type Job struct {
	Flow string
	Fn   func(e *compressor.Engine) error
}

// Run dispatches every job to its flow's engine concurrently via
// errgroup and, once all of them have returned, returns the first error
// encountered. Jobs are not handed ctx, so a failing job does not cancel
// or stop the others. Unknown flow names fail immediately rather than
// being silently skipped.
func (p *CompressorPool) Run(ctx context.Context, jobs []Job) error {
	eg, _ := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		e, ok := p.engines[j.Flow]
		if !ok {
			return fmt.Errorf("enginepool: unknown flow %q", j.Flow)
		}
		eg.Go(func() error {
			return j.Fn(e)
		})
	}
	return eg.Wait()
}

// Result is one flow's outcome from CompressAll.
type Result struct {
	Flow   string
	Wire   []byte
	Status rohc.Status
}

// CompressAll calls packetFor(flow) for every registered engine
// concurrently via errgroup and compresses the result through that
// flow's engine, returning one Result per flow. The order of the results
// is not defined; each Result carries its Flow name. A single flow's
// non-OK status does not stop the others; packetFor returning a nil
// packet skips that flow.
func (p *CompressorPool) CompressAll(ctx context.Context, now func() time.Time, packetFor func(flow string) *profile.Packet) ([]Result, error) {
	flows := make([]string, 0, len(p.engines))
	for flow := range p.engines {
		flows = append(flows, flow)
	}
	results := make([]Result, len(flows))

	eg, _ := errgroup.WithContext(ctx)
	for i, flow := range flows {
		i, flow := i, flow
		eg.Go(func() error {
			pkt := packetFor(flow)
			if pkt == nil {
				results[i] = Result{Flow: flow, Status: rohc.StatusOK}
				return nil
			}
			wire, status := p.engines[flow].Compress(pkt, now())
			results[i] = Result{Flow: flow, Wire: wire, Status: status}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
