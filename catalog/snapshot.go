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
	"fmt"
	"io"

	"github.com/oakpkg/opkgcore/stanza"
	"github.com/oakpkg/opkgcore/types/ctrl"
	"github.com/oakpkg/opkgcore/types/dependency"
	"github.com/oakpkg/opkgcore/types/list"
)

// WriteStatusSnapshot serializes every installed package in the catalog
// back out in status-file form, reusing the stanza package's generic
// struct<->stanza encoder the same way the control-file parser reuses its
// decoder: through the intermediate ctrl.Package shape.
func WriteStatusSnapshot(cat *Catalog, w io.Writer) error {
	var stanzas []ctrl.Package
	for _, pkg := range cat.FetchAllInstalled() {
		stanzas = append(stanzas, toCtrlPackage(pkg))
	}

	encoder, err := stanza.NewEncoder(w, nil)
	if err != nil {
		return err
	}
	if err := encoder.Encode(stanzas); err != nil {
		return err
	}
	return encoder.Close()
}

func toCtrlPackage(pkg *Package) ctrl.Package {
	triple := fmt.Sprintf("%s ok %s", pkg.StateWant, pkg.StateStatus)

	return ctrl.Package{
		Name:          pkg.Name,
		Version:       pkg.Version,
		Architecture:  pkg.Architecture,
		Depends:       compoundsToDependency(pkg.Depends),
		PreDepends:    compoundsToDependency(pkg.PreDepends),
		Recommends:    compoundsToDependency(pkg.Recommends),
		Suggests:      compoundsToDependency(pkg.Suggests),
		Conflicts:     compoundsToDependency(pkg.Conflicts),
		Replaces:      abstractsToDependency(pkg.Replaces),
		Provides:      abstractsToDependency(pkg.Provides),
		Section:       pkg.Section,
		Priority:      "",
		Source:        dependency.Source{Name: pkg.SourcePackage, Version: pkg.SourceVersion},
		Maintainer:    pkg.Maintainer,
		Filename:      pkg.Filename,
		Size:          pkg.Size,
		InstalledSize: pkg.InstalledSize,
		InstalledTime: pkg.InstalledTime,
		MD5Sum:        pkg.MD5Sum,
		SHA256Sum:     pkg.SHA256Sum,
		Description:   pkg.Description,
		Conffiles:     conffilesToList(pkg.Conffiles),
		Alternatives:  alternativesToList(pkg.Alternatives),
		Status:        triple,
		ABIVersion:    pkg.ABIVersion,
	}
}

func conffilesToList(confs []ConfFile) list.NewLineDelimited[string] {
	if len(confs) == 0 {
		return nil
	}
	out := make(list.NewLineDelimited[string], 0, len(confs))
	for _, c := range confs {
		out = append(out, c.Path+" "+c.MD5)
	}
	return out
}

func alternativesToList(alts []Alternative) list.CommaDelimited[string] {
	if len(alts) == 0 {
		return nil
	}
	out := make(list.CommaDelimited[string], 0, len(alts))
	for _, a := range alts {
		out = append(out, fmt.Sprintf("%d:%s:%s", a.Priority, a.Path, a.AltPath))
	}
	return out
}

func compoundsToDependency(comps []CompoundDependency) dependency.Dependency {
	var dep dependency.Dependency
	for _, comp := range comps {
		rel := dependency.Relation{Greedy: comp.Kind == KindGreedyDepend}
		for _, atom := range comp.Possibilities {
			pos := dependency.Possibility{Name: atom.TargetName}
			if atom.Version != nil {
				pos.Version = &dependency.VersionRelation{
					Operator: atom.Constraint.String(),
					Version:  *atom.Version,
				}
			}
			rel.Possibilities = append(rel.Possibilities, pos)
		}
		dep.Relations = append(dep.Relations, rel)
	}
	return dep
}

func abstractsToDependency(apkgs []*AbstractPackage) dependency.Dependency {
	var dep dependency.Dependency
	for _, apkg := range apkgs {
		dep.Relations = append(dep.Relations, dependency.Relation{
			Possibilities: []dependency.Possibility{{Name: apkg.Name}},
		})
	}
	return dep
}
