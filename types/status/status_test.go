// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package status_test

import (
	"testing"

	"github.com/oakpkg/opkgcore/types/status"
	"github.com/stretchr/testify/require"
)

func TestParseTriple(t *testing.T) {
	triple, err := status.ParseTriple("install", "ok", "installed")
	require.NoError(t, err)
	require.Equal(t, status.WantInstall, triple.Want)
	require.Equal(t, status.FlagOK, triple.Flag)
	require.Equal(t, status.Installed, triple.Status)
	require.Equal(t, "install ok installed", triple.String())
}

func TestParseTripleUnrecognized(t *testing.T) {
	_, err := status.ParseTriple("bogus", "ok", "installed")
	require.Error(t, err)
}
