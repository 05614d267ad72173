package vio

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"
	"strings"
)

// IsRemote reports whether source names an HTTP(S) resource.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Open returns an HTTPReader for http:// and https:// sources and a
// FileReader for everything else. args only affects remote sources.
func Open(ctx context.Context, source string, args *HTTPArgs) (Reader, error) {

	if IsRemote(source) {
		r, err := OpenHTTP(ctx, source, args)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	r, err := OpenFile(source)
	if err != nil {
		return nil, err
	}
	return r, nil
}
