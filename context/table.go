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

// Package context implements the per-flow Context record (§3) and the CID
// table that owns it: a direct-indexed array keyed by CID (design note §9
// - "CIDs are dense small integers ... no hashing needed"), with LRU
// eviction tracked by an intrusive doubly-linked list of CIDs.
package context

import (
	"container/list"
	"fmt"

	"github.com/facebook/rohc/rohc"
)

// Table is a generic CID->*T map, sized by the engine's cidType and
// max_contexts (§5). It is owned by exactly one engine instance.
type Table[T any] struct {
	slots       []*T
	lru         *list.List
	lruElements map[int]*list.Element
	maxContexts int
	count       int
}

// NewTable builds a Table sized for cidType's CID space, allowing at most
// maxContexts simultaneously occupied slots.
func NewTable[T any](cidType rohc.CIDType, maxContexts int) *Table[T] {
	capacity := cidType.MaxCID() + 1
	if maxContexts > capacity {
		maxContexts = capacity
	}
	return &Table[T]{
		slots:       make([]*T, capacity),
		lru:         list.New(),
		lruElements: make(map[int]*list.Element),
		maxContexts: maxContexts,
	}
}

// Get returns the context at cid, if any, and marks it most-recently-used.
func (t *Table[T]) Get(cid int) (*T, bool) {
	if cid < 0 || cid >= len(t.slots) || t.slots[cid] == nil {
		return nil, false
	}
	t.touch(cid)
	return t.slots[cid], true
}

// Peek returns the context at cid without affecting LRU order, used by
// read-only diagnostics.
func (t *Table[T]) Peek(cid int) (*T, bool) {
	if cid < 0 || cid >= len(t.slots) || t.slots[cid] == nil {
		return nil, false
	}
	return t.slots[cid], true
}

// Entry is one occupied slot as reported by All.
type Entry[T any] struct {
	CID int
	Ctx *T
}

// All returns every occupied CID and its context, in CID order, without
// affecting LRU order. Used by read-only diagnostics that need to dump
// the whole table rather than a single context.
func (t *Table[T]) All() []Entry[T] {
	out := make([]Entry[T], 0, t.count)
	for cid, ctx := range t.slots {
		if ctx != nil {
			out = append(out, Entry[T]{CID: cid, Ctx: ctx})
		}
	}
	return out
}

func (t *Table[T]) touch(cid int) {
	if el, ok := t.lruElements[cid]; ok {
		t.lru.MoveToFront(el)
		return
	}
	t.lruElements[cid] = t.lru.PushFront(cid)
}

// Put installs ctx at cid, evicting the least-recently-used occupied slot
// first if the table is already at max_contexts and cid is not itself
// already occupied (§7 "Resource exhaustion ... evict least-recently-used
// context; never fail the call"). It returns the evicted CID, if any.
func (t *Table[T]) Put(cid int, ctx *T) (evictedCID int, evicted bool) {
	if cid < 0 || cid >= len(t.slots) {
		return 0, false
	}
	if t.slots[cid] == nil && t.count >= t.maxContexts {
		evictedCID, evicted = t.evictLRU()
	}
	if t.slots[cid] == nil {
		t.count++
	}
	t.slots[cid] = ctx
	t.touch(cid)
	return evictedCID, evicted
}

func (t *Table[T]) evictLRU() (int, bool) {
	back := t.lru.Back()
	if back == nil {
		return 0, false
	}
	cid := back.Value.(int)
	t.removeLocked(cid)
	return cid, true
}

// Remove destroys the context at cid, if present.
func (t *Table[T]) Remove(cid int) {
	t.removeLocked(cid)
}

func (t *Table[T]) removeLocked(cid int) {
	if cid < 0 || cid >= len(t.slots) || t.slots[cid] == nil {
		return
	}
	t.slots[cid] = nil
	t.count--
	if el, ok := t.lruElements[cid]; ok {
		t.lru.Remove(el)
		delete(t.lruElements, cid)
	}
}

// Len returns the number of occupied slots.
func (t *Table[T]) Len() int { return t.count }

// MaxContexts returns the configured ceiling.
func (t *Table[T]) MaxContexts() int { return t.maxContexts }

// AllocateCID picks a free CID, preferring the lowest unused value so
// small-CID-space engines keep using the Add-CID octet form as long as
// possible. It fails only when every CID in the space is occupied and the
// table is already below max_contexts (which Put's eviction makes
// unreachable in practice, since Put never fails the call).
func (t *Table[T]) AllocateCID() (int, error) {
	for cid := range t.slots {
		if t.slots[cid] == nil {
			return cid, nil
		}
	}
	return 0, fmt.Errorf("context: no free CID in a space of %d", len(t.slots))
}

// AllocateCIDRandom picks a free CID at a position chosen by rng rather
// than always the lowest, so two peers bootstrapping a context without
// coordination are unlikely to collide on the same initial CID (§6,
// new_compressor's rng_cb). rng.Uint32() is reduced modulo the number of
// free slots.
func (t *Table[T]) AllocateCIDRandom(rng rohc.RNG) (int, error) {
	free := make([]int, 0, len(t.slots))
	for cid := range t.slots {
		if t.slots[cid] == nil {
			free = append(free, cid)
		}
	}
	if len(free) == 0 {
		return 0, fmt.Errorf("context: no free CID in a space of %d", len(t.slots))
	}
	return free[rng.Uint32()%uint32(len(free))], nil
}
