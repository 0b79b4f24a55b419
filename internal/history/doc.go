// Package history persists the arrival history of removable devices as a
// small JSON file in the state directory.
//
// The file is a flat array of records keyed by device identity. Only the most
// recently accessed records are kept; there is no schema version.
package history
