// Package file provides a directory-based implementation of driven.ArtifactStore.
//
// Each artifact lives in its own directory under the store root:
//
//	<root>/<id>/manifest.json    artifact metadata and checksums
//	<root>/<id>/model.json       classifier blob
//	<root>/<id>/vocabulary.json  vocabulary blob
//
// An artifact is written to a hidden staging directory and renamed into place,
// so a reader sees either the complete artifact or nothing.
package file
