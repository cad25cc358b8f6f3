/*
Package pregen contains values which are generated as part of the release process.
*/
package pregen

const (
	// Version is set from the release tag
	Version = "v0.2.0"
	// ReleaseDate is the date of the release tag
	ReleaseDate = "2024-03-02"
)
