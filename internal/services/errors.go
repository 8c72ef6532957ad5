package services

import "errors"

var (
	// ErrNoScanData means no scan has completed yet.
	ErrNoScanData = errors.New("no scan data available; scan a directory first")
	// ErrOutsideScope means the queried path is not under the last
	// scanned root.
	ErrOutsideScope = errors.New("path is outside the scanned directory")
)
