// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package catalog

import (
	"sort"

	"go.uber.org/zap"
)

// BestInstallationCandidate picks the single best concrete Package to
// satisfy apkg under predicate, implementing the §4.5 algorithm. quiet
// suppresses the arch-priority tie-break pass (step 7), for use by callers
// (like the walker's satisfier search) that probe candidates; the log lines
// of the other steps are emitted whether or not quiet is set.
func BestInstallationCandidate(cat *Catalog, apkg *AbstractPackage, predicate func(*Package) bool, quiet bool) *Package {
	return bestInstallationCandidate(cat, apkg, predicate, quiet, nil)
}

// BestInstallationCandidateFor is BestInstallationCandidate with the
// outer CLI argument vector supplied, so the score-by-name pass (step 5)
// can award its "mentioned on the command line" bonus.
func BestInstallationCandidateFor(cat *Catalog, apkg *AbstractPackage, predicate func(*Package) bool, quiet bool, requested map[string]bool) *Package {
	return bestInstallationCandidate(cat, apkg, predicate, quiet, requested)
}

func bestInstallationCandidate(cat *Catalog, apkg *AbstractPackage, predicate func(*Package) bool, quiet bool, requested map[string]bool) *Package {
	if apkg == nil {
		return nil
	}

	log := zap.L().Sugar()

	// Step 1: accumulate providers, substituting replacers. apkg itself is
	// folded into the same candidate set as everything in its ProvidedBy
	// map and run through the identical substitution check: a package
	// that has been replaced (e.g. by a conflicting successor) is never a
	// candidate in its own right, the replacer stands in for it.
	candidates := make(map[string]*AbstractPackage, len(apkg.ProvidedBy)+1)
	candidates[apkg.Name] = apkg
	for name, provider := range apkg.ProvidedBy {
		candidates[name] = provider
	}

	providers := make(map[string]*AbstractPackage)
	for name, provider := range candidates {
		if len(provider.ReplacedBy) > 0 {
			replacers := make([]*AbstractPackage, 0, len(provider.ReplacedBy))
			for _, r := range provider.ReplacedBy {
				replacers = append(replacers, r)
			}
			sort.Slice(replacers, func(i, j int) bool { return replacers[i].Name < replacers[j].Name })
			if len(replacers) > 1 {
				log.Infow("multiple replacers for provider, using the first", "notice", true,
					"provider", provider.Name, "replacer", replacers[0].Name)
			}
			replacer := replacers[0]
			if _, already := providers[replacer.Name]; !already {
				providers[replacer.Name] = replacer
			}
			continue
		}
		providers[name] = provider
	}

	// Step 2: build matching_pkgs.
	var matching []*Package
	wrongArchFound := false
	for _, provider := range providers {
		sawAny := len(provider.Versions) > 0
		sawArchMatch := false
		for _, cand := range provider.Versions {
			cand.ArchPriority = cat.ArchTable.Priority(cand.Architecture)
			if cand.ArchPriority <= 0 {
				continue
			}
			sawArchMatch = true

			if !predicate(cand) {
				continue
			}

			if !hasImmediateSatisfiers(cat, cand) {
				continue
			}

			matching = append(matching, cand)
		}
		if sawAny && !sawArchMatch {
			wrongArchFound = true
		}
	}

	if len(matching) == 0 {
		if wrongArchFound {
			log.Errorw("no installation candidate for supported architecture", "package", apkg.Name)
		}
		return nil
	}

	// Step 4: sort ascending by (name, version, architecture).
	sort.Slice(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if cmp := a.Version.Compare(b.Version); cmp != 0 {
			return cmp < 0
		}
		return a.Architecture.String() < b.Architecture.String()
	})

	for _, cand := range matching {
		if cand.ProvidedByHand {
			return cand
		}
	}

	// Step 5: score-by-name pass. Every candidate starts from a baseline
	// score of 1; goodPkgByName is only considered "found" when a
	// candidate actually earns a preference bonus (exact name match, or a
	// mention on the outer CLI argument vector) — otherwise the baseline
	// would trivially win for any single-candidate query and the later,
	// more specific passes (held, already-installed, arch priority) would
	// never get a chance to run.
	var goodPkgByName *Package
	bestScore := 1
	for _, cand := range matching {
		score := 1
		if cand.Name == apkg.Name {
			score++
		}
		if requested != nil && requested[cand.Name] {
			score++
		}
		if score > bestScore {
			bestScore = score
			goodPkgByName = cand
		}
	}

	// Step 6: state passes.
	var latestMatching, latestInstalledParent, heldPkg *Package
	sawHeld := false
	for _, cand := range matching {
		latestMatching = cand
		if cand.Parent.AggregateStatus == AggregateInstalled || cand.Parent.AggregateStatus == AggregateUnpacked {
			latestInstalledParent = cand
		}
		if cand.StateFlags&(Hold|Prefer) != 0 {
			if sawHeld {
				log.Infow("multiple held/preferred candidates, using the last seen", "notice", true, "package", apkg.Name)
			}
			sawHeld = true
			heldPkg = cand
		}
	}

	// Step 7: arch-priority tie-break, only when not quiet and there are
	// multiple distinct provider apkgs.
	var priorizedMatching *Package
	if !quiet && len(providers) > 1 {
		for _, cand := range matching {
			if priorizedMatching == nil || cand.ArchPriority > priorizedMatching.ArchPriority {
				priorizedMatching = cand
			}
		}
	}

	// Step 8: precedence chain.
	switch {
	case goodPkgByName != nil:
		return goodPkgByName
	case heldPkg != nil:
		return heldPkg
	case latestInstalledParent != nil:
		return latestInstalledParent
	case priorizedMatching != nil:
		return priorizedMatching
	case len(providers) == 1:
		return latestMatching
	default:
		return nil
	}
}

// hasImmediateSatisfiers reports whether every hard (Pre-Depends/Depends)
// compound of cand has at least one possibility whose target abstract
// package carries a version-constraint-satisfying version, installed or
// not. This is deliberately a one-level check: it does not recurse into
// the satisfiers' own dependencies, which is what lets it run safely
// inside the candidate-matching loop without re-deriving the full,
// cycle-aware walk that FetchUnsatisfied performs separately (and with
// shared cycle-guard state) once a candidate has actually been chosen.
func hasImmediateSatisfiers(cat *Catalog, cand *Package) bool {
	for _, compounds := range [][]CompoundDependency{cand.PreDepends, cand.Depends} {
		for _, comp := range compounds {
			satisfied := false
			for i := range comp.Possibilities {
				atom := comp.Possibilities[i]
				target := atom.Target(cat)
				for _, provider := range target.ProvidedBy {
					for _, v := range provider.Versions {
						if cat.ArchTable.Priority(v.Architecture) > 0 && atom.Satisfies(v.Version) {
							satisfied = true
							break
						}
					}
					if satisfied {
						break
					}
				}
				if satisfied {
					break
				}
			}
			if !satisfied {
				return false
			}
		}
	}
	return true
}
