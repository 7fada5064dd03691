// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package arch

// Table is the configured set of architectures a system accepts packages
// for, ordered by preference: the value is the priority, higher wins ties.
// A priority of 0 (the default for any architecture absent from the table)
// means "not for this system" and must filter a candidate out entirely.
type Table map[string]int32

// Priority looks up the configured priority for arch, returning 0 if the
// architecture is not present in the table.
func (t Table) Priority(a Arch) int32 {
	return t[a.String()]
}

// NewTable builds a Table from an ordered list of architecture strings,
// where earlier entries win ties (priority N, N-1, ..., 1), mirroring the
// way a system's primary architecture is listed first and foreign
// architectures follow, each strictly lower priority than the one before.
func NewTable(arches ...string) Table {
	t := make(Table, len(arches))
	n := len(arches)
	for i, a := range arches {
		t[a] = int32(n - i)
	}
	return t
}
