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
	"encoding/binary"

	"github.com/cespare/xxhash"
	"github.com/facebook/rohc/profile"
)

// BindingCache maps an uncompressed packet's flow-identifying tuple to the
// CID the compressor has already bound it to, so repeated calls for the
// same flow resolve in O(1) instead of a linear scan of the CID table.
// This is an optimization on top of the spec's explicit context binding,
// not a replacement for it: the CID table in Table remains the source of
// truth, and a cache miss simply falls through to allocation.
type BindingCache struct {
	buckets map[uint64][]binding
}

type binding struct {
	key profile.FlowKey
	cid int
}

// NewBindingCache returns an empty cache.
func NewBindingCache() *BindingCache {
	return &BindingCache{buckets: make(map[uint64][]binding)}
}

func hashKey(k profile.FlowKey) uint64 {
	var buf [21]byte
	copy(buf[0:4], k.SrcIP[:])
	copy(buf[4:8], k.DstIP[:])
	buf[8] = k.Protocol
	binary.BigEndian.PutUint16(buf[9:11], k.SrcPort)
	binary.BigEndian.PutUint16(buf[11:13], k.DstPort)
	binary.BigEndian.PutUint32(buf[13:17], k.SSRC)
	return xxhash.Sum64(buf[:])
}

// Lookup returns the CID previously bound to key, if any.
func (c *BindingCache) Lookup(key profile.FlowKey) (int, bool) {
	h := hashKey(key)
	for _, b := range c.buckets[h] {
		if b.key == key {
			return b.cid, true
		}
	}
	return 0, false
}

// Bind records that key now resolves to cid, replacing any prior binding
// for the same key.
func (c *BindingCache) Bind(key profile.FlowKey, cid int) {
	h := hashKey(key)
	entries := c.buckets[h]
	for i, b := range entries {
		if b.key == key {
			entries[i].cid = cid
			return
		}
	}
	c.buckets[h] = append(entries, binding{key: key, cid: cid})
}

// Unbind removes any binding for key, used when a context is evicted.
func (c *BindingCache) Unbind(key profile.FlowKey) {
	h := hashKey(key)
	entries := c.buckets[h]
	for i, b := range entries {
		if b.key == key {
			c.buckets[h] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}
