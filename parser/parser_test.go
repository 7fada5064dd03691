// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser_test

import (
	"strings"
	"testing"

	"github.com/oakpkg/opkgcore/catalog"
	"github.com/oakpkg/opkgcore/parser"
	"github.com/oakpkg/opkgcore/types/arch"
	"github.com/stretchr/testify/require"
)

func newCat() *catalog.Catalog {
	return catalog.New(arch.NewTable("armv7", "all"))
}

func TestParseFeed(t *testing.T) {
	feed := `Package: libfoo
Version: 2:1.4.0-r3
Architecture: armv7
Depends: libbar (>= 1.0), libbaz*
Provides: libfoo-abi
Section: libs
Maintainer: Jane Dev <jane@example.com>
Filename: libfoo_1.4.0-r3_armv7.ipk
Size: 4096
Source: libfoo-src (1.4.0-r3)
Description: a small foo library
 .
 longer paragraph
`
	cat := newCat()
	pkgs, err := parser.ParseFeed(cat, strings.NewReader(feed), "test-feed")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	require.Equal(t, "libfoo", pkg.Name)
	require.Equal(t, "test-feed", pkg.FeedSource)
	require.Equal(t, uint32(2), pkg.Version.Epoch)
	require.Len(t, pkg.Depends, 1)
	require.Equal(t, "libbar", pkg.Depends[0].Possibilities[0].TargetName)
	require.Len(t, pkg.GreedyDepends, 1)
	require.Equal(t, "libbaz", pkg.GreedyDepends[0].Possibilities[0].TargetName)
	require.NotNil(t, pkg.Size)
	require.Equal(t, 4096, *pkg.Size)
	require.Equal(t, "a small foo library\n\nlonger paragraph", pkg.Description)
	require.Equal(t, "libfoo-src", pkg.SourcePackage)
	require.NotNil(t, pkg.SourceVersion)
	require.Equal(t, "1.4.0-r3", pkg.SourceVersion.String())

	apkg := cat.Lookup("libfoo-abi")
	require.NotNil(t, apkg)
}

func TestParseStatus(t *testing.T) {
	statusFile := `Package: libfoo
Version: 1.0-1
Architecture: armv7
Status: install ok installed
Conffiles:
 /etc/libfoo.conf abcdef0123456789abcdef0123456789
Alternatives:
 10:/usr/bin/foo:/usr/bin/foo.libfoo
`
	cat := newCat()
	pkgs, err := parser.ParseStatus(cat, strings.NewReader(statusFile), "/")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	require.Equal(t, catalog.WantInstall, pkg.StateWant)
	require.True(t, pkg.Installed())
	require.Equal(t, "/", pkg.Destination)
	require.Len(t, pkg.Conffiles, 1)
	require.Equal(t, "/etc/libfoo.conf", pkg.Conffiles[0].Path)
	require.Len(t, pkg.Alternatives, 1)
	require.Equal(t, 10, pkg.Alternatives[0].Priority)
}

// A malformed Status line is a ParseStanza-kind failure (§7): it's logged
// as an ERROR and skipped, not propagated as a hard error, so the rest of
// the stanza (and the rest of the batch) still parses.
func TestParseStatusToleratesBadStatusLine(t *testing.T) {
	statusFile := `Package: libfoo
Version: 1.0-1
Architecture: armv7
Status: bogus ok installed
`
	cat := newCat()
	pkgs, err := parser.ParseStatus(cat, strings.NewReader(statusFile), "/")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Equal(t, catalog.WantUnknown, pkgs[0].StateWant)
}

func TestParseFeedDiscardsBlankAndMissingIdentityStanzas(t *testing.T) {
	feed := `Section: orphaned

Package: noarch-ghost
`
	cat := newCat()
	pkgs, err := parser.ParseFeed(cat, strings.NewReader(feed), "test-feed")
	require.NoError(t, err)
	require.Empty(t, pkgs)
}

func TestParseAlternativesSkipsMalformedItems(t *testing.T) {
	statusFile := `Package: libfoo
Version: 1.0-1
Architecture: armv7
Alternatives:
 10:/usr/bin/foo:/usr/bin/foo.libfoo, 20:relative/path:/usr/bin/foo.other, 30:/usr/bin/bar:
`
	cat := newCat()
	pkgs, err := parser.ParseStatus(cat, strings.NewReader(statusFile), "/")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Len(t, pkgs[0].Alternatives, 1)
	require.Equal(t, "/usr/bin/foo", pkgs[0].Alternatives[0].Path)
}

func TestParseFeedFieldMaskSuppressesDepends(t *testing.T) {
	feed := `Package: libfoo
Version: 1.0
Architecture: armv7
Depends: libbar
`
	cat := newCat()
	pkgs, err := parser.ParseFeed(cat, strings.NewReader(feed), "test-feed", parser.FieldDepends)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Empty(t, pkgs[0].Depends)
}
