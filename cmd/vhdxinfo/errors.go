package main

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"errors"

	"github.com/vorteil/vhdxinfo/pkg/vhdx"
	"github.com/vorteil/vhdxinfo/pkg/vio"
)

// Process exit codes.
const (
	exitFailure = iota + 1
	exitSignature
	exitRangeUnsupported
	exitRegionNotFound
	exitMissingMetadata
	exitMetadataDecode
	exitIO
	exitItemSize
)

// exitCode maps an error to the status the process exits with. Decode and
// range errors are checked before IOError since both can sit under one.
func exitCode(err error) int {

	var (
		serr  *vhdx.SignatureError
		rerr  *vio.RangeUnsupportedError
		nerr  *vhdx.RegionNotFoundError
		merr  *vhdx.MissingMetadataError
		derr  *vhdx.MetadataDecodeError
		zerr  *vhdx.ItemSizeError
		ioerr *vio.IOError
	)

	switch {
	case errors.As(err, &serr):
		return exitSignature
	case errors.As(err, &rerr):
		return exitRangeUnsupported
	case errors.As(err, &nerr):
		return exitRegionNotFound
	case errors.As(err, &merr):
		return exitMissingMetadata
	case errors.As(err, &derr):
		return exitMetadataDecode
	case errors.As(err, &zerr):
		return exitItemSize
	case errors.As(err, &ioerr):
		return exitIO
	default:
		return exitFailure
	}
}
