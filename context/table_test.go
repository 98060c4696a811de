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
	"testing"

	"github.com/facebook/rohc/rohc"
	"github.com/stretchr/testify/require"
)

func TestTablePutGet(t *testing.T) {
	tbl := NewTable[int](rohc.CIDTypeSmall, 4)
	v := 42
	_, evicted := tbl.Put(3, &v)
	require.False(t, evicted)
	got, ok := tbl.Get(3)
	require.True(t, ok)
	require.Equal(t, 42, *got)
}

func TestTableEvictsLRUWhenFull(t *testing.T) {
	tbl := NewTable[int](rohc.CIDTypeSmall, 2)
	a, b, c := 1, 2, 3
	tbl.Put(0, &a)
	tbl.Put(1, &b)
	// touch 0 so it's more recently used than 1
	tbl.Get(0)
	evictedCID, evicted := tbl.Put(2, &c)
	require.True(t, evicted)
	require.Equal(t, 1, evictedCID)
	_, ok := tbl.Get(1)
	require.False(t, ok)
	_, ok = tbl.Get(0)
	require.True(t, ok)
	_, ok = tbl.Get(2)
	require.True(t, ok)
}

func TestAllocateCIDPicksLowest(t *testing.T) {
	tbl := NewTable[int](rohc.CIDTypeSmall, 16)
	v := 1
	tbl.Put(0, &v)
	cid, err := tbl.AllocateCID()
	require.NoError(t, err)
	require.Equal(t, 1, cid)
}

func TestAllReturnsOccupiedSlots(t *testing.T) {
	tbl := NewTable[int](rohc.CIDTypeSmall, 4)
	a, b := 10, 20
	tbl.Put(2, &a)
	tbl.Put(0, &b)

	entries := tbl.All()
	require.Len(t, entries, 2)
	require.Equal(t, 0, entries[0].CID)
	require.Equal(t, 10, *entries[1].Ctx)
}

func TestRemove(t *testing.T) {
	tbl := NewTable[int](rohc.CIDTypeSmall, 4)
	v := 1
	tbl.Put(0, &v)
	require.Equal(t, 1, tbl.Len())
	tbl.Remove(0)
	require.Equal(t, 0, tbl.Len())
	_, ok := tbl.Get(0)
	require.False(t, ok)
}
