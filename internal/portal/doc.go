// Package portal understands the URLs and listing pages of the lecture
// portal.
//
// It extracts item identifiers from viewer URLs, classifies user input,
// rebuilds listing URLs page by page, and expands a listing into the complete
// ordered set of item identifiers. The expansion drives a Page (implemented
// by the browser session) and refuses to return a partial result: the number
// of collected identifiers must equal the total the portal reports.
package portal
