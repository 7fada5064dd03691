// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package catalog

import "github.com/oakpkg/opkgcore/types/status"

// FetchConflicts implements §4.8: the set of currently installed (or
// queued for install) packages that collide with pkg, excluding anything
// pkg itself replaces (which would otherwise register as a spurious
// self-conflict of an upgrading package).
//
// The historical implementation this package is modeled on had a
// conflict-walk loop that appeared to advance two loop variables in a way
// that could double-skip entries on some compilers; this implementation
// resolves that open question by iterating compounds once and atoms once,
// with no such double-advance possible.
func FetchConflicts(cat *Catalog, pkg *Package) []*Package {
	var conflicts []*Package
	seen := make(map[*Package]bool)

	for _, comp := range pkg.Conflicts {
		for i := range comp.Possibilities {
			atom := comp.Possibilities[i]
			target := atom.Target(cat)
			for _, cand := range target.Versions {
				if cand.StateStatus != status.Installed && cand.StateWant != WantInstall {
					continue
				}
				if !atom.Satisfies(cand.Version) {
					continue
				}
				if PkgReplaces(pkg, cand) {
					continue
				}
				if seen[cand] {
					continue
				}
				seen[cand] = true
				conflicts = append(conflicts, cand)
			}
		}
	}

	return conflicts
}

// PkgReplaces reports whether a replaces b: true iff any AbstractPackage in
// a.Replaces is also in b.Provides.
func PkgReplaces(a, b *Package) bool {
	bProvides := make(map[string]bool, len(b.Provides))
	for _, p := range b.Provides {
		bProvides[p.Name] = true
	}
	for _, r := range a.Replaces {
		if bProvides[r.Name] {
			return true
		}
	}
	return false
}
