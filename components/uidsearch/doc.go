// Package uidsearch serves requirement UID suggestions as JSON for the UID
// pickers of the browser pages.
//
// The handler answers GET and HEAD requests. The q parameter is matched
// case-insensitively against UIDs and titles; UID prefix matches rank first.
// Entries come from a Source that is asked on every request.
package uidsearch
