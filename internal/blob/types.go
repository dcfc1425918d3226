// Package blob re-exports core archive-storage abstractions for stable
// internal imports.
package blob

import (
	"seathub/internal/blob/core"
)

type (
	// Driver identifies an archive backend driver.
	Driver = core.Driver
	// Info describes stored archive object metadata.
	Info = core.Info
	// Store is the interface for archive storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrNotFound indicates the requested archive object does not exist.
var ErrNotFound = core.ErrNotFound
