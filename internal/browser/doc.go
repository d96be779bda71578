// Package browser drives the headless Chrome session panograb works through.
//
// A Session owns one browser for the whole run. It offers the small set of
// page operations the portal packages need (navigate, wait-and-read, click,
// type) and records network traffic per navigation so each Visit returns
// the exchanges that page produced as an immutable capture.Snapshot.
package browser
