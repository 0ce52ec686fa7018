/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package service ties the judge building subsystems together behind a JSON
// HTTP surface for the UI/CLI layer.
//
// It owns the request-level policy: how alignment timeouts fall back to
// completion polling, how comparison reads wait for in-flight runs, and how
// each error kind maps to an HTTP status. The subsystem packages stay free
// of transport concerns.
package service
