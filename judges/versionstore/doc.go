/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package versionstore is the system of record for judge definitions and
// their instruction history.
//
// A judge is identified by a stable ID; its instruction text evolves as an
// append-only sequence of versions numbered from 1 with no gaps. Alignment
// runs append new versions; nothing ever rewrites or removes an existing one,
// so version numbers are durable references that comparisons and rollbacks
// can rely on.
package versionstore
