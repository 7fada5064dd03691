// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ctrl

import (
	"encoding/hex"

	"github.com/oakpkg/opkgcore/types/arch"
	"github.com/oakpkg/opkgcore/types/boolean"
	"github.com/oakpkg/opkgcore/types/filehash"
	"github.com/oakpkg/opkgcore/types/list"
	"github.com/oakpkg/opkgcore/types/time"
)

// FeedIndex is the optional index header a feed may carry ahead of its
// package stanzas (the embedded-distro analogue of an APT Release file):
// suite/codename metadata plus the checksums of the index files themselves.
type FeedIndex struct {
	Origin     string
	Label      string
	Suite      string
	Version    string
	Codename   string
	Changelogs string
	Date       time.Time
	ValidUntil *time.Time `json:"Valid-Until,omitempty"`

	Architectures list.SpaceDelimited[arch.Arch]
	Components    list.SpaceDelimited[string]
	Description   string

	SHA256 list.NewLineDelimited[filehash.FileHash]

	AcquireByHash *boolean.Boolean        `json:"Acquire-By-Hash,omitempty"`
	SignedBy      list.CommaDelimited[string] `json:"Signed-By,omitempty"`
}

// SHA256Sums returns a map of SHA-256 checksums for files named in the index.
func (r *FeedIndex) SHA256Sums() (map[string][]byte, error) {
	ret := make(map[string][]byte)
	for _, hash := range r.SHA256 {
		var err error
		ret[hash.Filename], err = hex.DecodeString(hash.Hash)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}
