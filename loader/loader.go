// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package loader ties package parser and package catalog together: it
// turns a list of feed sources and a status file into a populated Catalog,
// driving RunDetailReload so that names only ever seen as a dependency or
// Provides target during one feed's parse get a chance to pick up their
// real stanza from another, per §4.10.
package loader

import (
	"fmt"
	"io"

	"github.com/oakpkg/opkgcore/catalog"
	"github.com/oakpkg/opkgcore/parser"
	"go.uber.org/zap"
)

// FeedSource is one available-packages feed: a name (stored on every
// Package it contributes as FeedSource) and an Open func producing the
// feed's bytes, so callers can back it with a local file, an embedded
// fixture, or an HTTP fetch without this package knowing which.
type FeedSource struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// load parses s and inserts its packages into cat. During a details-reload
// pass (reload=true), §4.3's output contract discards any package whose
// name's AbstractPackage does not have NeedDetail set after parsing: it was
// already fully known from an earlier pass, so re-inserting it here would
// only redo work the first pass already did.
func (s FeedSource) load(cat *catalog.Catalog, reload bool) error {
	r, err := s.Open()
	if err != nil {
		return fmt.Errorf("opening feed %s: %w", s.Name, err)
	}
	defer r.Close()

	pkgs, err := parser.ParseFeed(cat, r, s.Name)
	if err != nil {
		return fmt.Errorf("parsing feed %s: %w", s.Name, err)
	}

	for _, pkg := range pkgs {
		if reload {
			apkg := cat.Lookup(pkg.Name)
			if apkg == nil || apkg.Flags&catalog.NeedDetail == 0 {
				continue
			}
		}
		cat.InsertConcrete(pkg, false)
	}
	return nil
}

// LoadFeeds parses every source in order, inserting each one's packages
// into cat, then runs the detail-reload driver (re-parsing every source
// again each pass) until no AbstractPackage is left only partially known.
func LoadFeeds(cat *catalog.Catalog, sources []FeedSource) error {
	for _, src := range sources {
		if err := src.load(cat, false); err != nil {
			return err
		}
	}

	return catalog.RunDetailReload(cat, func(c *catalog.Catalog) error {
		for _, src := range sources {
			if err := src.load(c, true); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadStatus parses an installation root's status file and inserts every
// package it describes into cat with setStatus so AggregateStatus reflects
// what's actually on disk at destination.
func LoadStatus(cat *catalog.Catalog, r io.Reader, destination string) error {
	pkgs, err := parser.ParseStatus(cat, r, destination)
	if err != nil {
		return fmt.Errorf("parsing status file for %s: %w", destination, err)
	}

	for _, pkg := range pkgs {
		cat.InsertConcrete(pkg, true)
	}

	zap.L().Sugar().Debugw("loaded installed packages", "destination", destination, "count", len(pkgs))
	return nil
}
