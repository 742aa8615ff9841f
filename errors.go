package texshelf

import "errors"

// Sentinel errors for pipeline operations.
var (
	ErrNilManifest    = errors.New("manifest cannot be nil")
	ErrMasterNotFound = errors.New("master file not found")
	ErrAssetMissing   = errors.New("asset not found")
)
