// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package catalog_test

import (
	"testing"

	"github.com/oakpkg/opkgcore/catalog"
	"github.com/stretchr/testify/require"
)

// S1: simple satisfaction. A depends on B (>= 2); two versions of B are
// installed, only one of which actually satisfies the constraint.
func TestScenarioS1SimpleSatisfaction(t *testing.T) {
	cat := newCat()

	b1 := installed(fixture(t, "b", "1.0"))
	cat.InsertConcrete(b1, true)
	b2 := installed(fixture(t, "b", "2.1"))
	cat.InsertConcrete(b2, true)

	pkgA := fixture(t, "a", "1.0")
	pkgA.Depends = []catalog.CompoundDependency{compound(catalog.KindDepend, atom("b", "2", t))}
	a := cat.InsertConcrete(pkgA, true)

	unsatisfied, unresolved := catalog.FetchUnsatisfied(cat, a, false)
	require.Empty(t, unsatisfied)
	require.Empty(t, unresolved)

	installedAtLeastTwo := func(cand *catalog.Package) bool {
		return cand.Installed() && cand.Version.Compare(mustVersion(t, "2")) >= 0
	}
	best := catalog.BestInstallationCandidate(cat, cat.Lookup("b"), installedAtLeastTwo, false)
	require.Same(t, b2, best)
}

// S2: virtual provider. mail-client depends on the virtual name mta; only
// postfix (installed) provides it.
func TestScenarioS2VirtualProvider(t *testing.T) {
	cat := newCat()

	postfix := installed(fixture(t, "postfix", "3.0"))
	postfix.Provides = []*catalog.AbstractPackage{cat.EnsureAbstract("mta")}
	cat.InsertConcrete(postfix, true)

	pkgMail := fixture(t, "mail-client", "1.0")
	pkgMail.Depends = []catalog.CompoundDependency{compound(catalog.KindDepend, atom("mta", "", t))}
	mailClient := cat.InsertConcrete(pkgMail, true)

	unsatisfied, unresolved := catalog.FetchUnsatisfied(cat, mailClient, false)
	require.Empty(t, unsatisfied)
	require.Empty(t, unresolved)

	always := func(*catalog.Package) bool { return true }
	best := catalog.BestInstallationCandidate(cat, cat.Lookup("mta"), always, false)
	require.NotNil(t, best)
	require.Equal(t, "postfix", best.Name)
}

// S3: a replacing, conflicting successor should be selected in place of the
// package it replaces once both are in the catalog.
func TestScenarioS3ReplaceConflictAutoUpgrade(t *testing.T) {
	cat := newCat()

	old := installed(fixture(t, "old", "1.0"))
	cat.InsertConcrete(old, true)

	pkgNew := fixture(t, "new", "2.0")
	pkgNew.Conflicts = []catalog.CompoundDependency{compound(catalog.KindConflicts, atom("old", "", t))}
	pkgNew.Replaces = []*catalog.AbstractPackage{cat.EnsureAbstract("old")}
	cat.InsertConcrete(pkgNew, true)

	oldAbstract := cat.Lookup("old")
	newAbstract := cat.Lookup("new")
	require.Same(t, newAbstract, oldAbstract.ReplacedBy["new"])

	always := func(*catalog.Package) bool { return true }
	best := catalog.BestInstallationCandidate(cat, oldAbstract, always, false)
	require.NotNil(t, best)
	require.Equal(t, "new", best.Name)
}

// S4: a two-node dependency cycle must terminate and must not double-count
// the shared member of the cycle.
func TestScenarioS4Cycle(t *testing.T) {
	cat := newCat()

	pkgA := fixture(t, "a", "1")
	pkgA.Depends = []catalog.CompoundDependency{compound(catalog.KindDepend, atom("b", "", t))}
	pkgB := fixture(t, "b", "1")
	pkgB.Depends = []catalog.CompoundDependency{compound(catalog.KindDepend, atom("a", "", t))}

	a := cat.InsertConcrete(pkgA, true)
	cat.InsertConcrete(pkgB, true)

	unsatisfied, unresolved := catalog.FetchUnsatisfied(cat, a, false)
	require.Empty(t, unresolved)
	require.Len(t, unsatisfied, 1)
	require.Equal(t, "b", unsatisfied[0].Name)
}

// S5: a greedy dependency pulls in every cleanly-installable provider and
// silently skips providers whose own dependencies can't be resolved.
func TestScenarioS5GreedyDependence(t *testing.T) {
	cat := newCat()

	pluginX := fixture(t, "plugin-x", "1")
	pluginX.Provides = []*catalog.AbstractPackage{cat.EnsureAbstract("plugin")}
	cat.InsertConcrete(pluginX, true)

	pluginY := fixture(t, "plugin-y", "1")
	pluginY.Provides = []*catalog.AbstractPackage{cat.EnsureAbstract("plugin")}
	pluginY.Depends = []catalog.CompoundDependency{compound(catalog.KindDepend, atom("missing", "", t))}
	cat.InsertConcrete(pluginY, true)

	pkgApp := fixture(t, "app", "1")
	greedyCompound := compound(catalog.KindGreedyDepend, atom("plugin", "", t))
	pkgApp.GreedyDepends = []catalog.CompoundDependency{greedyCompound}
	app := cat.InsertConcrete(pkgApp, true)

	unsatisfied, unresolved := catalog.FetchUnsatisfied(cat, app, false)
	require.Empty(t, unresolved)
	require.Len(t, unsatisfied, 1)
	require.Equal(t, "plugin-x", unsatisfied[0].Name)
}

// S6: a hard dependency with no possible satisfier anywhere in the catalog
// is reported as unresolved, not merely unsatisfied.
func TestScenarioS6UnresolvableHardDependency(t *testing.T) {
	cat := newCat()

	pkgA := fixture(t, "a", "1")
	pkgA.Depends = []catalog.CompoundDependency{compound(catalog.KindDepend, atom("ghost", "1", t))}
	a := cat.InsertConcrete(pkgA, true)

	unsatisfied, unresolved := catalog.FetchUnsatisfied(cat, a, false)
	require.Empty(t, unsatisfied)
	require.Equal(t, []string{"ghost (>= 1)"}, unresolved)
}

// S7: version parsing and comparison per the dpkg algebra.
func TestScenarioS7VersionParse(t *testing.T) {
	v := mustVersion(t, "2:1.4.0-r3")
	require.Equal(t, uint32(2), v.Epoch)
	require.Equal(t, "1.4.0", v.Upstream)
	require.Equal(t, "r3", v.Revision)

	require.Equal(t, 0, mustVersion(t, "1.0").Compare(mustVersion(t, "1.0")))
	require.Less(t, mustVersion(t, "1.0").Compare(mustVersion(t, "1.1")), 0)
	require.Greater(t, mustVersion(t, "1:1.0").Compare(mustVersion(t, "2.0")), 0)
	require.Less(t, mustVersion(t, "1.0-1").Compare(mustVersion(t, "1.0-2")), 0)
}
