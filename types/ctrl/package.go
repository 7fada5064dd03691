// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package ctrl holds the raw, reflection-decoded shape of a single control
// stanza, before field-specific semantics (Status tuples, Conffiles pairs,
// Alternatives triples, Description trailing-newline trimming) are applied by
// package parser. It intentionally mirrors the field list a feed or status
// stanza may carry, nothing more — it is not the catalog's graph node.
package ctrl

import (
	"github.com/oakpkg/opkgcore/types/arch"
	"github.com/oakpkg/opkgcore/types/boolean"
	"github.com/oakpkg/opkgcore/types/dependency"
	"github.com/oakpkg/opkgcore/types/list"
	"github.com/oakpkg/opkgcore/types/version"
)

// Package is the reflection-decoded representation of one control stanza,
// spanning both feed stanzas and installed-status stanzas. Fields that only
// ever appear in one of the two are harmless zero values in the other.
type Package struct {
	Name         string `json:"Package"`
	Version      version.Version
	Architecture arch.Arch

	Depends    dependency.Dependency
	PreDepends dependency.Dependency `json:"Pre-Depends"`
	Recommends dependency.Dependency
	Suggests   dependency.Dependency
	Conflicts  dependency.Dependency
	Replaces   dependency.Dependency
	Provides   dependency.Dependency

	Section    string
	Priority   string
	Source     dependency.Source
	Maintainer string

	Filename      string
	Size          *int `json:",omitempty,string"`
	InstalledSize *int `json:"Installed-Size,omitempty,string"`
	InstalledTime *int64 `json:"Installed-Time,omitempty,string"`

	MD5Sum   string `json:"MD5sum"`
	SHA256Sum string `json:"SHA256sum"`

	// Description is kept raw (continuation lines still newline-joined by
	// the stanza reader); parser trims the trailing newline and keeps the
	// internal ones. Lines are never joined with spaces, whether or not
	// output goes to a terminal.
	Description string

	// Conffiles is the raw "path md5" continuation lines, one per entry.
	Conffiles list.NewLineDelimited[string] `json:",omitempty"`

	// Alternatives is the raw "prio:path:altpath" comma-separated items.
	Alternatives list.CommaDelimited[string] `json:",omitempty"`

	Tags list.CommaDelimited[string] `json:"Tags,omitempty"`

	Essential      *boolean.Boolean `json:",omitempty"`
	AutoInstalled  *boolean.Boolean `json:"Auto-Installed,omitempty"`

	// Status is the raw "want flag status" triple, parsed by parser.
	Status string `json:",omitempty"`

	ABIVersion string `json:"ABIVersion,omitempty"`
}
