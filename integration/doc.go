//go:build integration

// Package integration provides end-to-end tests for the oaktms library.
//
// These tests pack, read, extract and repack large generated trees on disk.
// Run with: go test -tags=integration ./integration/...
package integration
