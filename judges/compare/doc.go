/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package compare measures how well two versions of a judge agree with human
// labels over the same labeled example set.
//
// Both versions score every example, so a comparison costs two judge calls
// per example; calls run concurrently with a bounded limit. Results are
// deterministic given the same examples and the same judge responses. The
// judge model itself may not be deterministic; that boundary belongs to the
// execution client, not this package.
package compare
