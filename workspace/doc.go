/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workspace lists the serving endpoints available in the connected
// model workspace. Listings are fronted by a short-lived cache because the
// UI re-reads them on nearly every interaction.
package workspace
