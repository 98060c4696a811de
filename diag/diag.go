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

// Package diag renders the DUMP_PACKETS feature's human-readable
// context/packet dump: one row per context, with CRC failures and state
// transitions picked out in color.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// ContextRow is one context's state as rendered by Dump.
type ContextRow struct {
	CID          int
	Profile      string
	State        string
	PacketsSent  int
	LastPacket   string
	CRCFailed    bool
	JustChanged  bool
	FlowSummary  string
}

// Dump renders rows as a table to w, coloring the state column red on a
// CRC failure and yellow on a just-occurred state transition.
func Dump(w io.Writer, rows []ContextRow) {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"CID", "profile", "state", "sent", "last packet", "flow"})

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, r := range rows {
		state := r.State
		switch {
		case r.CRCFailed:
			state = red(state)
		case r.JustChanged:
			state = yellow(state)
		}
		table.Append([]string{
			fmt.Sprintf("%d", r.CID),
			r.Profile,
			state,
			fmt.Sprintf("%d", r.PacketsSent),
			r.LastPacket,
			r.FlowSummary,
		})
	}
	table.Render()
}
