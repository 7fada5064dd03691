// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package catalog

import "go.uber.org/zap"

// ReloadFunc re-reads the feeds, populating the catalog with full detail
// for any name that still has NeedDetail set at the time it runs.
type ReloadFunc func(cat *Catalog) error

// RunDetailReload implements §4.7: packages referenced only by name via
// Provides/Depends have no detail until a feed stanza for them is parsed.
// This repeatedly invokes reload until every AbstractPackage with
// NeedDetail set has been given a chance to pick up its detail, using the
// Marked bit to avoid re-counting a name already accounted for in the
// current pass. Termination is guaranteed because Marked is monotone
// within one invocation: every AbstractPackage is marked at most once, so
// the loop runs at most len(catalog)+1 times.
func RunDetailReload(cat *Catalog, reload ReloadFunc) error {
	for {
		pending := 0
		for _, name := range cat.Names() {
			apkg := cat.packages[name]
			if apkg.Flags&NeedDetail != 0 && apkg.Flags&Marked == 0 {
				pending++
				apkg.Flags |= Marked
			}
		}

		if pending == 0 {
			break
		}

		zap.L().Sugar().Debugw("reloading feeds for detail", "pending", pending)
		if err := reload(cat); err != nil {
			return err
		}
	}

	for _, name := range cat.Names() {
		cat.packages[name].Flags &^= Marked
	}

	return nil
}
