// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser

import (
	"strconv"
	"strings"

	"github.com/oakpkg/opkgcore/catalog"
	"github.com/oakpkg/opkgcore/types/dependency"
	"go.uber.org/zap"
)

// FieldMask lets a caller suppress parsing of selected control-file fields,
// per §4.3. GlobalFieldMask stands in for the "pfm" configuration-wide mask
// the spec describes: it ORs into every per-call mask, so a field disabled
// globally stays disabled no matter what an individual ParseFeed/ParseStatus
// call passes.
type FieldMask uint32

const (
	FieldDepends FieldMask = 1 << iota
	FieldConflicts
	FieldProvidesReplaces
	FieldConffiles
	FieldAlternatives
	FieldStatus
	FieldDescription
)

// GlobalFieldMask is the process-wide field mask (the spec's "pfm"),
// ORed into every call's mask before fields are suppressed. It is a package
// variable rather than a Catalog/Config field because it applies uniformly
// regardless of which catalog a given parse call happens to populate,
// mirroring how the spec describes it as configuration, not per-catalog state.
var GlobalFieldMask FieldMask

func (m FieldMask) suppresses(field FieldMask) bool {
	return m&field != 0
}

// convertDependency turns a parsed Dependency (the reflection-decoded,
// grammar-level shape) into the catalog's CompoundDependency list. A
// relation's trailing "*" always promotes the whole compound to
// KindGreedyDepend, regardless of which control field it was read from,
// per the grammar rule in §4.2/§6.
func convertDependency(dep dependency.Dependency, kind catalog.Kind) []catalog.CompoundDependency {
	if len(dep.Relations) == 0 {
		return nil
	}

	comps := make([]catalog.CompoundDependency, 0, len(dep.Relations))
	for _, rel := range dep.Relations {
		compKind := kind
		if rel.Greedy {
			compKind = catalog.KindGreedyDepend
		}

		comp := catalog.CompoundDependency{Kind: compKind}
		for _, possi := range rel.Possibilities {
			atom := catalog.DependencyAtom{TargetName: possi.Name}
			if possi.Version != nil {
				v := possi.Version.Version
				atom.Constraint = possi.Version.Constraint()
				atom.Version = &v
			}
			comp.Possibilities = append(comp.Possibilities, atom)
		}
		comps = append(comps, comp)
	}
	return comps
}

// resolveNames turns a plain name-list Dependency (as used by
// Provides/Replaces, which carry no version constraints of their own)
// into AbstractPackages, creating each one in cat if it isn't already
// present.
func resolveNames(cat *catalog.Catalog, dep dependency.Dependency) []*catalog.AbstractPackage {
	if len(dep.Relations) == 0 {
		return nil
	}

	apkgs := make([]*catalog.AbstractPackage, 0, len(dep.Relations))
	for _, rel := range dep.Relations {
		for _, possi := range rel.Possibilities {
			apkgs = append(apkgs, cat.EnsureAbstract(possi.Name))
		}
	}
	return apkgs
}

// parseConffiles turns the raw "path md5sum" continuation lines of a
// Conffiles: field into ConfFile pairs. Per §7's ParseStanza error kind, a
// malformed line is logged as an ERROR and skipped; it does not abort the
// rest of the field or the stanza.
func parseConffiles(pkgName string, lines []string) []catalog.ConfFile {
	var out []catalog.ConfFile
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			zap.L().Sugar().Errorw("malformed Conffiles line, skipping",
				"package", pkgName, "line", line)
			continue
		}
		out = append(out, catalog.ConfFile{Path: fields[0], MD5: fields[1]})
	}
	return out
}

// parseAlternatives turns the raw "priority:path:altpath" comma-separated
// items of an Alternatives: field into Alternative triples. Per §4.3, an
// item whose path isn't absolute or whose altpath is empty is silently
// skipped (no log); an item that doesn't even split into the three parts,
// or whose priority isn't an integer, is a malformed-field case per §7 and
// is logged as an ERROR before being skipped.
func parseAlternatives(pkgName string, items []string) []catalog.Alternative {
	var out []catalog.Alternative
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, ":", 3)
		if len(parts) != 3 {
			zap.L().Sugar().Errorw("malformed Alternatives item, skipping",
				"package", pkgName, "item", item)
			continue
		}
		priority, err := strconv.Atoi(parts[0])
		if err != nil {
			zap.L().Sugar().Errorw("malformed Alternatives priority, skipping",
				"package", pkgName, "item", item)
			continue
		}

		path, altPath := parts[1], parts[2]
		if !strings.HasPrefix(path, "/") || altPath == "" {
			continue
		}

		out = append(out, catalog.Alternative{Priority: priority, Path: path, AltPath: altPath})
	}
	return out
}

// normalizeDescription strips the single trailing newline the stanza
// reader always leaves on a continued field, since the rest of the
// Description's internal structure (blank lines from a lone "." on a
// continuation, paragraph breaks) is already exactly what the caller
// wants to keep.
func normalizeDescription(raw string) string {
	return strings.TrimSuffix(raw, "\n")
}
