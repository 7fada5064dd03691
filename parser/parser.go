// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package parser applies the §4.3 field semantics (the Status triple, the
// Conffiles/Alternatives continuation shapes, greedy-dependency promotion,
// and description normalization) on top of the reflection-decoded shape
// package ctrl produces, turning a feed or status file into catalog-ready
// concrete Packages. It never inserts a concrete Package into a Catalog
// itself (it only creates AbstractPackages for Provides/Replaces names via
// EnsureAbstract); the caller decides whether and when to call
// catalog.InsertConcrete, same as package loader does.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/oakpkg/opkgcore/catalog"
	"github.com/oakpkg/opkgcore/stanza"
	"github.com/oakpkg/opkgcore/types/ctrl"
	"github.com/oakpkg/opkgcore/types/status"
	"go.uber.org/zap"
)

// ParseFeed reads every package stanza from r (an available-packages feed)
// and returns the concrete Packages it describes, tagged with source as
// their FeedSource. mask, if given, suppresses parsing of selected fields
// for this call on top of GlobalFieldMask (§4.3's "pfm").
func ParseFeed(cat *catalog.Catalog, r io.Reader, source string, mask ...FieldMask) ([]*catalog.Package, error) {
	return parse(cat, r, source, "", effectiveMask(mask))
}

// ParseStatus reads every package stanza from r (an installation root's
// status file) and returns the concrete Packages it describes, tagged with
// destination as their Destination.
func ParseStatus(cat *catalog.Catalog, r io.Reader, destination string, mask ...FieldMask) ([]*catalog.Package, error) {
	return parse(cat, r, "", destination, effectiveMask(mask))
}

func effectiveMask(mask []FieldMask) FieldMask {
	var m FieldMask
	if len(mask) > 0 {
		m = mask[0]
	}
	return m | GlobalFieldMask
}

func parse(cat *catalog.Catalog, r io.Reader, source, destination string, mask FieldMask) ([]*catalog.Package, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stanzas: %w", err)
	}

	var raw []ctrl.Package
	if err := stanza.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding stanzas: %w", err)
	}

	pkgs := make([]*catalog.Package, 0, len(raw))
	for i := range raw {
		pkg := convertPackage(cat, &raw[i], source, destination, mask)
		if pkg == nil {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// convertPackage applies §4.3's output contract: a stanza with no Package
// name is a "blank stanza" and is discarded (nil, debug log only); a stanza with
// neither an architecture nor an arch-priority for one is discarded with a
// NOTICE. Both are normal, expected outcomes of feeding a real-world feed
// through this parser, not errors a caller needs to see.
func convertPackage(cat *catalog.Catalog, raw *ctrl.Package, source, destination string, mask FieldMask) *catalog.Package {
	if raw.Name == "" {
		zap.L().Sugar().Debugw("blank stanza, discarding")
		return nil
	}

	if raw.Architecture.CPU == "" && cat.ArchTable.Priority(raw.Architecture) == 0 {
		zap.L().Sugar().Infow("stanza lacks architecture and arch-priority, discarding",
			"notice", true, "kind", ErrorKindMissingIdentity, "package", raw.Name)
		return nil
	}

	pkg := &catalog.Package{
		Name:          raw.Name,
		Version:       raw.Version,
		Architecture:  raw.Architecture,
		FeedSource:    source,
		Destination:   destination,
		Section:       raw.Section,
		SourcePackage: raw.Source.Name,
		SourceVersion: raw.Source.Version,
		Maintainer:    raw.Maintainer,
		Filename:      raw.Filename,
		Size:          raw.Size,
		InstalledSize: raw.InstalledSize,
		InstalledTime: raw.InstalledTime,
		MD5Sum:        raw.MD5Sum,
		SHA256Sum:     raw.SHA256Sum,
		Tags:          []string(raw.Tags),
		ABIVersion:    raw.ABIVersion,
	}

	if !mask.suppresses(FieldDescription) {
		pkg.Description = normalizeDescription(raw.Description)
	}

	if !mask.suppresses(FieldConflicts) {
		pkg.Conflicts = convertDependency(raw.Conflicts, catalog.KindConflicts)
	}

	if !mask.suppresses(FieldProvidesReplaces) {
		pkg.Provides = resolveNames(cat, raw.Provides)
		pkg.Replaces = resolveNames(cat, raw.Replaces)
	}

	if !mask.suppresses(FieldDepends) {
		var greedy []catalog.CompoundDependency
		var g []catalog.CompoundDependency
		pkg.Depends, g = splitGreedy(convertDependency(raw.Depends, catalog.KindDepend))
		greedy = append(greedy, g...)
		pkg.PreDepends, g = splitGreedy(convertDependency(raw.PreDepends, catalog.KindPreDepend))
		greedy = append(greedy, g...)
		pkg.Recommends, g = splitGreedy(convertDependency(raw.Recommends, catalog.KindRecommend))
		greedy = append(greedy, g...)
		pkg.Suggests, g = splitGreedy(convertDependency(raw.Suggests, catalog.KindSuggest))
		greedy = append(greedy, g...)
		pkg.GreedyDepends = greedy
	}

	if raw.AutoInstalled != nil && bool(*raw.AutoInstalled) {
		pkg.StateFlags |= catalog.AutoInstalled
	}

	if !mask.suppresses(FieldConffiles) {
		pkg.Conffiles = parseConffiles(raw.Name, []string(raw.Conffiles))
	}

	if !mask.suppresses(FieldAlternatives) {
		pkg.Alternatives = parseAlternatives(raw.Name, []string(raw.Alternatives))
	}

	if !mask.suppresses(FieldStatus) && raw.Status != "" {
		parseStatusField(pkg, raw.Name, raw.Status)
	}

	return pkg
}

// parseStatusField applies the Status triple, per §7's ParseStanza kind: a
// malformed Status line is logged as an ERROR and skipped, leaving pkg's
// status fields at their zero values rather than aborting the stanza.
func parseStatusField(pkg *catalog.Package, pkgName, raw string) {
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		zap.L().Sugar().Errorw("malformed Status line, skipping",
			"package", pkgName, "status", raw)
		return
	}

	triple, err := status.ParseTriple(fields[0], fields[1], fields[2])
	if err != nil {
		zap.L().Sugar().Errorw("malformed Status line, skipping",
			"package", pkgName, "status", raw, "error", err)
		return
	}

	pkg.StateWant = catalog.Want(triple.Want)
	pkg.StateStatus = triple.Status
	if triple.Flag == status.FlagReinstallRequired {
		pkg.StateFlags |= catalog.ReinstallRequired
	}
}

func splitGreedy(comps []catalog.CompoundDependency) (hard, greedy []catalog.CompoundDependency) {
	for _, c := range comps {
		if c.Kind == catalog.KindGreedyDepend {
			greedy = append(greedy, c)
		} else {
			hard = append(hard, c)
		}
	}
	return hard, greedy
}
