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
	"go.uber.org/zap"
)

// walkState is the per-walk cycle guard. The historical implementation
// this package is modeled on mutates deps_checked/predeps_checked flags
// directly on the AbstractPackage nodes, which (per the design notes this
// resolver followed) couples walk state to catalog state and forbids
// concurrent or nested walks. FetchUnsatisfied instead threads an explicit,
// caller-local visited set through the recursion, so the catalog itself
// carries no walk-scoped mutation and a caller may run as many walks as it
// likes without clearing anything in between.
type walkState struct {
	deps    map[string]bool
	preDeps map[string]bool
}

func newWalkState() *walkState {
	return &walkState{deps: make(map[string]bool), preDeps: make(map[string]bool)}
}

// visited reports (and marks) whether pkg's parent has already been visited
// in this walk for the given dependency strength. PRE_DEPEND tracks its own
// mark, separate from the weaker kinds, matching the historical
// deps_checked/predeps_checked split.
func (w *walkState) visited(name string, preDepend bool) bool {
	marks := w.deps
	if preDepend {
		marks = w.preDeps
	}
	if marks[name] {
		return true
	}
	marks[name] = true
	return false
}

// has peeks at a mark without setting it.
func (w *walkState) has(name string, preDepend bool) bool {
	if preDepend {
		return w.preDeps[name]
	}
	return w.deps[name]
}

// alreadyBeingWalked reports whether pkg's parent is already on the
// current call stack (deps mark set, and preDeps mark set too whenever pkg
// itself carries pre-dependencies). Used to short-circuit re-entering a
// subtree an ancestor frame is already responsible for, which is what
// keeps a dependency cycle from being double-counted in unsatisfied.
func (w *walkState) alreadyBeingWalked(pkg *Package) bool {
	if !w.has(pkg.Parent.Name, false) {
		return false
	}
	if len(pkg.PreDepends) > 0 && !w.has(pkg.Parent.Name, true) {
		return false
	}
	return true
}

// FetchUnsatisfied transitively expands pkg's dependency closure, per §4.6:
// unsatisfied accumulates every not-yet-installed concrete package required
// to satisfy pkg, and the returned unresolved slice holds the printable
// dependency strings of any hard dependency with no available satisfier.
//
// preCheck mode asks "is this candidate even installable" without
// collecting anything into unsatisfied or recursing into greedy
// dependencies, which never fail a walk and so are irrelevant to that
// question. The selector does not call it; its own candidate filter is the
// one-level hasImmediateSatisfiers check.
func FetchUnsatisfied(cat *Catalog, pkg *Package, preCheck bool) (unsatisfied []*Package, unresolved []string) {
	w := newWalkState()
	unsatisfied, unresolved = walk(cat, pkg, w, preCheck)
	return unsatisfied, unresolved
}

func walk(cat *Catalog, pkg *Package, w *walkState, preCheck bool) (unsatisfied []*Package, unresolved []string) {
	if pkg == nil || pkg.Parent == nil {
		return nil, nil
	}

	hasPreDepends := len(pkg.PreDepends) > 0
	depsSeen := w.visited(pkg.Parent.Name, false)
	preDepsSeen := true
	if hasPreDepends {
		preDepsSeen = w.visited(pkg.Parent.Name, true)
	}
	if depsSeen && preDepsSeen {
		return nil, nil
	}

	walkCompounds := func(compounds []CompoundDependency, kind Kind) {
		for _, comp := range compounds {
			switch kind {
			case KindGreedyDepend:
				if preCheck {
					continue
				}
				walkGreedy(cat, comp, w, &unsatisfied)
			default:
				sat, unres := walkHard(cat, pkg, comp, kind, w, preCheck, unsatisfied)
				unsatisfied = sat
				unresolved = append(unresolved, unres...)
			}
		}
	}

	walkCompounds(pkg.PreDepends, KindPreDepend)
	walkCompounds(pkg.Depends, KindDepend)
	walkCompounds(pkg.Recommends, KindRecommend)
	walkCompounds(pkg.Suggests, KindSuggest)
	if !preCheck {
		walkCompounds(pkg.GreedyDepends, KindGreedyDepend)
	}

	return unsatisfied, unresolved
}

// walkHard handles DEPEND, PRE_DEPEND, RECOMMEND and SUGGEST per §4.6.
func walkHard(cat *Catalog, pkg *Package, comp CompoundDependency, kind Kind, w *walkState, preCheck bool, unsatisfied []*Package) ([]*Package, []string) {
	installedPredicate := func(atom DependencyAtom) func(*Package) bool {
		return func(cand *Package) bool {
			return cand.Installed() && atom.Satisfies(cand.Version)
		}
	}
	installablePredicate := func(atom DependencyAtom) func(*Package) bool {
		return func(cand *Package) bool {
			return atom.Satisfies(cand.Version)
		}
	}

	var satisfier *Package
	for i := range comp.Possibilities {
		atom := comp.Possibilities[i]
		target := atom.Target(cat)

		if s := BestInstallationCandidate(cat, target, installedPredicate(atom), true); s != nil {
			satisfier = s
			break
		}
	}
	if satisfier == nil {
		for i := range comp.Possibilities {
			atom := comp.Possibilities[i]
			target := atom.Target(cat)

			if s := BestInstallationCandidate(cat, target, installablePredicate(atom), true); s != nil {
				satisfier = s
				break
			}
		}
	}

	if satisfier != nil && (satisfier.StateWant == WantDeinstall || satisfier.StateWant == WantPurge) &&
		(kind == KindRecommend || kind == KindSuggest) {
		zap.L().Sugar().Infow("ignoring recommendation at user request",
			"notice", true, "package", satisfier.Name, "kind", kind.String())
		return unsatisfied, nil
	}

	if satisfier != nil {
		// Already installed: nothing left for this walk to contribute.
		if satisfier.Installed() {
			return unsatisfied, nil
		}
		if satisfier.Name == pkg.Name && satisfier.Version.Compare(pkg.Version) == 0 {
			return unsatisfied, nil
		}
		for _, c := range unsatisfied {
			if c == satisfier {
				return unsatisfied, nil
			}
		}
		// The satisfier's own subtree is already being walked by an
		// ancestor frame (a dependency cycle) — let that frame account
		// for it, don't double-count it here.
		if w.alreadyBeingWalked(satisfier) {
			return unsatisfied, nil
		}

		if !preCheck {
			unsatisfied = append(unsatisfied, satisfier)
		}
		subUnsatisfied, subUnresolved := walk(cat, satisfier, w, preCheck)
		if !preCheck {
			for _, s := range subUnsatisfied {
				found := false
				for _, c := range unsatisfied {
					if c == s {
						found = true
						break
					}
				}
				if !found {
					unsatisfied = append(unsatisfied, s)
				}
			}
		}
		return unsatisfied, subUnresolved
	}

	switch kind {
	case KindDepend, KindPreDepend:
		return unsatisfied, []string{comp.String()}
	case KindRecommend:
		zap.L().Sugar().Infow("unsatisfied recommendation", "notice", true, "dependency", comp.String())
	case KindSuggest:
		zap.L().Sugar().Debugw("unsatisfied suggestion", "dependency", comp.String())
	}
	return unsatisfied, nil
}

// walkGreedy handles GREEDY_DEPEND per §4.6: it never contributes to
// unresolved, and only adds a candidate whose own sub-walk is completely
// clean (no unresolved names, and everything it pulled in is itself already
// wanted for install).
func walkGreedy(cat *Catalog, comp CompoundDependency, w *walkState, unsatisfied *[]*Package) {
	for i := range comp.Possibilities {
		target := comp.Possibilities[i].Target(cat)

		for _, provider := range target.ProvidedBy {
			for _, cand := range provider.Versions {
				if cand.StateWant == WantInstall {
					continue
				}
				already := false
				for _, c := range *unsatisfied {
					if c == cand {
						already = true
						break
					}
				}
				if already {
					continue
				}

				subUnsatisfied, subUnresolved := walk(cat, cand, w, false)
				if len(subUnresolved) > 0 {
					continue
				}
				allWanted := true
				for _, s := range subUnsatisfied {
					if s.StateWant != WantInstall {
						allWanted = false
						break
					}
				}
				if !allWanted {
					continue
				}

				zap.L().Sugar().Infow("adding satisfier for greedy dependence",
					"notice", true, "package", cand.Name)
				*unsatisfied = append(*unsatisfied, cand)
			}
		}
	}
}
