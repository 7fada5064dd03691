// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 *
 * Portions of this file are based on code originally from: github.com/paultag/go-debian
 *
 * Copyright (c) Paul R. Tagliamonte <paultag@debian.org>, 2015
 */

// Package catalog holds the hash-backed graph of abstract and concrete
// packages that the rest of the resolver operates on: one AbstractPackage
// per name (real or virtual), each owning zero or more concrete Packages.
//
// The catalog is not safe for concurrent use. It is a long-lived, explicit
// context passed to every operation rather than read from a process-global,
// so a program can run more than one resolution universe (e.g. one per
// target root) side by side in tests.
package catalog

import (
	"github.com/oakpkg/opkgcore/types/arch"
	"github.com/oakpkg/opkgcore/types/dependency"
	"github.com/oakpkg/opkgcore/types/status"
	"github.com/oakpkg/opkgcore/types/version"
)

// Kind distinguishes the role a CompoundDependency plays on its owning
// Package: the same {possibilities} shape is reused for every relation
// field, only the Kind and the field it lives in differ.
type Kind int

const (
	KindDepend Kind = iota
	KindPreDepend
	KindRecommend
	KindSuggest
	KindGreedyDepend
	KindConflicts
)

func (k Kind) String() string {
	switch k {
	case KindPreDepend:
		return "Pre-Depends"
	case KindRecommend:
		return "Recommends"
	case KindSuggest:
		return "Suggests"
	case KindGreedyDepend:
		return "greedy depends"
	case KindConflicts:
		return "Conflicts"
	default:
		return "Depends"
	}
}

// DependencyAtom is one possibility within a CompoundDependency: a target
// name, an optional version constraint, and a lazily-resolved back-pointer
// to the target's AbstractPackage (resolved the first time it is needed,
// via Catalog.EnsureAbstract, so parsing dependency expressions never has
// to import this package).
type DependencyAtom struct {
	TargetName string
	Constraint dependency.Constraint
	Version    *version.Version

	target *AbstractPackage
}

// Target resolves (and caches) the AbstractPackage this atom refers to.
func (a *DependencyAtom) Target(cat *Catalog) *AbstractPackage {
	if a.target == nil {
		a.target = cat.EnsureAbstract(a.TargetName)
	}
	return a.target
}

// Satisfies implements version_constraints_satisfied for this atom.
func (a DependencyAtom) Satisfies(candidate version.Version) bool {
	if a.Constraint == dependency.ConstraintNone || a.Version == nil {
		return true
	}
	cmp := candidate.Compare(*a.Version)
	switch a.Constraint {
	case dependency.ConstraintEarlier:
		return cmp < 0
	case dependency.ConstraintEarlierEqual:
		return cmp <= 0
	case dependency.ConstraintEqual:
		return cmp == 0
	case dependency.ConstraintLaterEqual:
		return cmp >= 0
	case dependency.ConstraintLater:
		return cmp > 0
	default:
		return true
	}
}

func (a DependencyAtom) String() string {
	if a.Constraint == dependency.ConstraintNone || a.Version == nil {
		return a.TargetName
	}
	return a.TargetName + " (" + a.Constraint.String() + " " + a.Version.String() + ")"
}

// CompoundDependency is a disjunction of DependencyAtoms: any one
// possibility being satisfied satisfies the whole compound.
type CompoundDependency struct {
	Kind          Kind
	Possibilities []DependencyAtom
}

func (c CompoundDependency) String() string {
	s := ""
	for i, p := range c.Possibilities {
		if i > 0 {
			s += " | "
		}
		s += p.String()
	}
	return s
}

// AbstractFlags is a scratch/persistent bitset on an AbstractPackage.
type AbstractFlags uint8

const (
	// NeedDetail marks a name that was only ever seen as a dependency or
	// Provides target, never given a full stanza of its own; the next
	// detail-reload pass must fetch it.
	NeedDetail AbstractFlags = 1 << iota
	// Marked is scratch state for the detail-reload driver: set once a
	// NeedDetail name has been counted in the current reload pass.
	Marked
)

// AggregateStatus summarizes the highest installation state reached by any
// concrete version of an AbstractPackage.
type AggregateStatus int

const (
	AggregateNotInstalled AggregateStatus = iota
	AggregateUnpacked
	AggregateInstalled
)

// AbstractPackage is a name in the catalog: either a real package name
// backed by one or more concrete Versions, or a purely virtual capability
// reached only through other packages' Provides.
type AbstractPackage struct {
	Name string

	Versions []*Package

	ProvidedBy     map[string]*AbstractPackage
	ReplacedBy     map[string]*AbstractPackage
	DependedUponBy map[string]*AbstractPackage

	AggregateStatus AggregateStatus
	Flags           AbstractFlags

	// depsChecked/predepsChecked are the walker's per-walk cycle-cut
	// marks. The design note in §9 of the resolver's original spec flags
	// this coupling as a hazard; FetchUnsatisfied in this package uses an
	// explicit, caller-local visited set instead and never touches these
	// fields. They are unexported and nothing in this package reads or
	// writes them.
	depsChecked    bool
	predepsChecked bool
}

func newAbstractPackage(name string) *AbstractPackage {
	return &AbstractPackage{
		Name:           name,
		ProvidedBy:     make(map[string]*AbstractPackage),
		ReplacedBy:     make(map[string]*AbstractPackage),
		DependedUponBy: make(map[string]*AbstractPackage),
	}
}

// Want is the administrator's intent for a concrete package.
type Want int

const (
	WantUnknown Want = iota
	WantInstall
	WantDeinstall
	WantPurge
)

func (w Want) String() string {
	switch w {
	case WantInstall:
		return "install"
	case WantDeinstall:
		return "deinstall"
	case WantPurge:
		return "purge"
	default:
		return "unknown"
	}
}

// StateFlags is the concrete package's volatile+persistent flag bitset.
type StateFlags uint16

const (
	Hold StateFlags = 1 << iota
	NoPrune
	Prefer
	Replace
	Obsolete
	User
	AutoInstalled
	StateNeedDetail
	FilelistChanged
	// ReinstallRequired mirrors the status triple's "reinstreq" flag token:
	// dpkg-ancestry state meaning the package's files are on disk but its
	// maintainer scripts never finished, so it needs reinstalling rather
	// than merely configuring.
	ReinstallRequired
)

// nonVolatileStateFlags survives InsertConcrete merges unconditionally:
// an administrator's hold/preference/obsolete/user-requested marking on an
// already-catalogued version is never clobbered by re-parsing a feed.
const nonVolatileStateFlags = Hold | NoPrune | Prefer | Obsolete | User

// ConfFile is a (path, expected checksum) pair from a Conffiles: stanza.
type ConfFile struct {
	Path string
	MD5  string
}

// Alternative is a (priority, target path, source path) triple from an
// Alternatives: stanza, modeling an update-alternatives-style slot.
type Alternative struct {
	Priority int
	Path     string
	AltPath  string
}

// Package is a specific version of a specific architecture, from either a
// feed (FeedSource set) or an installation root (Destination set) — never
// both.
type Package struct {
	Name   string
	Parent *AbstractPackage

	Version      version.Version
	Architecture arch.Arch
	ArchPriority int32

	FeedSource  string
	Destination string

	StateWant   Want
	StateStatus status.Status
	StateFlags  StateFlags

	ProvidedByHand bool

	Depends       []CompoundDependency
	PreDepends    []CompoundDependency
	Recommends    []CompoundDependency
	Suggests      []CompoundDependency
	GreedyDepends []CompoundDependency
	Conflicts     []CompoundDependency

	Provides []*AbstractPackage
	Replaces []*AbstractPackage

	Conffiles    []ConfFile
	Alternatives []Alternative

	Description string
	Maintainer  string
	Section     string

	// SourcePackage and SourceVersion come from the control file's Source:
	// field, "name (version)" — the version is only present when it
	// differs from the binary package's own Version, per Debian policy §5.6.12.
	SourcePackage string
	SourceVersion *version.Version

	Filename string
	Tags          []string
	Size          *int
	InstalledSize *int
	InstalledTime *int64
	MD5Sum        string
	SHA256Sum     string
	ABIVersion    string
}

// Key identifies a concrete package by its immutable (name, version,
// architecture) triple, per invariant 5: this triple never changes once a
// package has completed its first parse.
func (p *Package) Key() string {
	return p.Name + "\x00" + p.Version.String() + "\x00" + p.Architecture.String()
}

// Installed reports whether this version is currently on disk in some form.
func (p *Package) Installed() bool {
	return p.StateStatus == status.Installed || p.StateStatus == status.Unpacked
}

func aggregateOf(s status.Status) AggregateStatus {
	switch s {
	case status.Installed:
		return AggregateInstalled
	case status.NotInstalled:
		return AggregateNotInstalled
	default:
		return AggregateUnpacked
	}
}

// Catalog is the name -> AbstractPackage map plus the architecture table
// the selector consults for arch_priority.
type Catalog struct {
	ArchTable arch.Table

	packages map[string]*AbstractPackage
}

// New creates an empty Catalog that accepts packages for the architectures
// listed in table.
func New(table arch.Table) *Catalog {
	return &Catalog{
		ArchTable: table,
		packages:  make(map[string]*AbstractPackage),
	}
}

// EnsureAbstract returns the AbstractPackage for name, creating it (with
// NeedDetail set, since a name first seen this way has no stanza of its
// own yet) if it doesn't already exist.
func (c *Catalog) EnsureAbstract(name string) *AbstractPackage {
	if apkg, ok := c.packages[name]; ok {
		return apkg
	}
	apkg := newAbstractPackage(name)
	apkg.Flags |= NeedDetail
	c.packages[name] = apkg
	return apkg
}

// Lookup returns the AbstractPackage for name without creating it.
func (c *Catalog) Lookup(name string) *AbstractPackage {
	return c.packages[name]
}

func mergeStateFlags(old, incoming StateFlags) StateFlags {
	union := old | incoming
	return (union &^ nonVolatileStateFlags) | (old & nonVolatileStateFlags)
}

// InsertConcrete attaches pkg to its AbstractPackage, merging into an
// existing version with the same (name, version, architecture) if present,
// registers Provides/Replaces, and rebuilds the reverse dependency index
// for this package. If setStatus is true, the parent's AggregateStatus is
// recomputed from every version's StateStatus.
func (c *Catalog) InsertConcrete(pkg *Package, setStatus bool) *Package {
	apkg := c.EnsureAbstract(pkg.Name)
	pkg.Name = apkg.Name
	pkg.Parent = apkg
	apkg.Flags &^= NeedDetail

	var existing *Package
	for _, v := range apkg.Versions {
		if v.Key() == pkg.Key() {
			existing = v
			break
		}
	}

	var current *Package
	if existing != nil {
		preservedFlags := existing.StateFlags & nonVolatileStateFlags
		mergedFlags := mergeStateFlags(existing.StateFlags, pkg.StateFlags)
		*existing = *pkg
		existing.StateFlags = mergedFlags
		existing.StateFlags |= preservedFlags
		existing.Parent = apkg
		current = existing
	} else {
		apkg.Versions = append(apkg.Versions, pkg)
		current = pkg
	}

	provides := current.Provides
	if len(provides) == 0 {
		provides = []*AbstractPackage{apkg}
		current.Provides = provides
	}
	for _, provided := range provides {
		provided.ProvidedBy[apkg.Name] = apkg
	}
	apkg.ProvidedBy[apkg.Name] = apkg

	conflictNames := make(map[string]bool)
	for _, comp := range current.Conflicts {
		for _, atom := range comp.Possibilities {
			conflictNames[atom.TargetName] = true
		}
	}
	for _, replaced := range current.Replaces {
		if conflictNames[replaced.Name] {
			replaced.ReplacedBy[apkg.Name] = apkg
		}
	}

	for _, comps := range [][]CompoundDependency{current.Depends, current.PreDepends, current.Recommends} {
		for _, comp := range comps {
			for i := range comp.Possibilities {
				target := comp.Possibilities[i].Target(c)
				target.DependedUponBy[apkg.Name] = apkg
			}
		}
	}

	if setStatus {
		c.recomputeAggregateStatus(apkg)
	}

	return current
}

func (c *Catalog) recomputeAggregateStatus(apkg *AbstractPackage) {
	best := AggregateNotInstalled
	for _, v := range apkg.Versions {
		if a := aggregateOf(v.StateStatus); a > best {
			best = a
		}
	}
	apkg.AggregateStatus = best
}

// FetchInstalled scans name's versions for one currently installed or
// unpacked, preferring the first such version found.
func (c *Catalog) FetchInstalled(name string) *Package {
	apkg := c.packages[name]
	if apkg == nil {
		return nil
	}
	for _, v := range apkg.Versions {
		if v.Installed() {
			return v
		}
	}
	return nil
}

// FetchInstalledByDest is FetchInstalled restricted to a specific
// installation root.
func (c *Catalog) FetchInstalledByDest(name, dest string) *Package {
	apkg := c.packages[name]
	if apkg == nil {
		return nil
	}
	for _, v := range apkg.Versions {
		if v.Installed() && v.Destination == dest {
			return v
		}
	}
	return nil
}

// FetchAllAvailable enumerates every concrete package with a feed source.
func (c *Catalog) FetchAllAvailable() []*Package {
	var ret []*Package
	for _, apkg := range c.packages {
		for _, v := range apkg.Versions {
			if v.FeedSource != "" {
				ret = append(ret, v)
			}
		}
	}
	return ret
}

// FetchAllInstalled enumerates every concrete package installed in some
// destination.
func (c *Catalog) FetchAllInstalled() []*Package {
	var ret []*Package
	for _, apkg := range c.packages {
		for _, v := range apkg.Versions {
			if v.Installed() {
				ret = append(ret, v)
			}
		}
	}
	return ret
}

// Names returns every AbstractPackage name currently in the catalog, in no
// particular order. Intended for iteration by the detail-reload driver and
// for tests.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.packages))
	for name := range c.packages {
		names = append(names, name)
	}
	return names
}
