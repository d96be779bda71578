// Package main hosts the panograb CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds a logger, and
// hands the work to the internal packages: fetch and list drive a browser
// through internal/harvest, history reads the ledger, check runs the
// preflight checks. Add behaviour to the internal packages first and keep
// this package to flag parsing and presentation.
package main
