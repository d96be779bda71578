// Package auth signs the browser session into the portal.
//
// Login is a small state machine: AwaitingCredentials -> Submitted ->
// Authenticated or Rejected. Only a rejection loops back to asking for
// credentials, and the number of submissions is capped so an unattended run
// cannot spin forever on bad credentials.
package auth
