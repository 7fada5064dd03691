// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package status holds the fixed-vocabulary tokens that appear in a
// status stanza's "Status: want flag status" triple.
package status

import "fmt"

// Want is the administrator's intent for a package.
type Want int

const (
	WantUnknown Want = iota
	WantInstall
	WantDeinstall
	WantPurge
)

var wantTokens = map[string]Want{
	"unknown":   WantUnknown,
	"install":   WantInstall,
	"deinstall": WantDeinstall,
	"purge":     WantPurge,
}

func (w Want) String() string {
	for token, v := range wantTokens {
		if v == w {
			return token
		}
	}
	return "unknown"
}

// Flag is the "ok"/"reinstreq" middle token, historically named for its
// dpkg ancestor even though it carries no independent bitset semantics here.
type Flag int

const (
	FlagOK Flag = iota
	FlagReinstallRequired
)

var flagTokens = map[string]Flag{
	"ok":        FlagOK,
	"reinstreq": FlagReinstallRequired,
}

func (f Flag) String() string {
	for token, v := range flagTokens {
		if v == f {
			return token
		}
	}
	return "ok"
}

// Status is the package's installation state on disk.
type Status int

const (
	NotInstalled Status = iota
	Unpacked
	HalfConfigured
	Installed
	HalfInstalled
	ConfigFiles
	PostInstFailed
	RemovalFailed
)

var statusTokens = map[string]Status{
	"not-installed":    NotInstalled,
	"unpacked":         Unpacked,
	"half-configured":  HalfConfigured,
	"installed":        Installed,
	"half-installed":   HalfInstalled,
	"config-files":     ConfigFiles,
	"post-inst-failed": PostInstFailed,
	"removal-failed":   RemovalFailed,
}

func (s Status) String() string {
	for token, v := range statusTokens {
		if v == s {
			return token
		}
	}
	return "not-installed"
}

// Triple is the parsed "want flag status" line.
type Triple struct {
	Want   Want
	Flag   Flag
	Status Status
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s", t.Want, t.Flag, t.Status)
}

// ParseTriple parses the three space-separated tokens of a Status: line.
func ParseTriple(want, flag, status string) (Triple, error) {
	var t Triple
	var ok bool

	if t.Want, ok = wantTokens[want]; !ok {
		return Triple{}, fmt.Errorf("unrecognized want token: %q", want)
	}
	if t.Flag, ok = flagTokens[flag]; !ok {
		return Triple{}, fmt.Errorf("unrecognized flag token: %q", flag)
	}
	if t.Status, ok = statusTokens[status]; !ok {
		return Triple{}, fmt.Errorf("unrecognized status token: %q", status)
	}

	return t, nil
}
