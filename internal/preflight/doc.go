// Package preflight provides readiness checks for the programs, directories,
// and portal that panograb depends on.
//
// The check command prints every result; fetch runs the same checks first and
// refuses to start a browser when a required one fails.
package preflight
