/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Package vhdx reads structural metadata from VHDX virtual disk images with
// a handful of small random-access reads, never the whole file.
package vhdx

import (
	"context"

	"github.com/vorteil/vhdxinfo/pkg/elog"
	"github.com/vorteil/vhdxinfo/pkg/vio"
)

// On-disk layout constants.
const (
	FileSignature          = "vhdxfile"
	RegionTableSignature   = "regi"
	MetadataTableSignature = "metadata"

	RegionTableOffset       = 192 * 1024
	BackupRegionTableOffset = 256 * 1024

	// MaxTableEntries is the largest entry count either table may declare.
	MaxTableEntries = 2047

	// MaxItemLength is the largest payload a metadata entry may declare.
	MaxItemLength = 1024 * 1024

	regionHeaderSize = 16
	tableEntrySize   = 32
)

// Args configures Open and GetInfo. A nil *Args is valid.
type Args struct {
	Logger elog.View
	HTTP   *vio.HTTPArgs
}

// Session is an open, signature-checked image. It owns its reader until
// Close.
type Session struct {
	r   vio.Reader
	log elog.View
}

// Open selects a reader for source, checks the file signature and returns a
// session. On failure nothing is left open.
func Open(ctx context.Context, source string, args *Args) (*Session, error) {

	if args == nil {
		args = new(Args)
	}

	log := args.Logger
	if log == nil {
		log = &elog.CLI{}
	}

	httpArgs := vio.HTTPArgs{}
	if args.HTTP != nil {
		httpArgs = *args.HTTP
	}
	if httpArgs.Logger == nil {
		httpArgs.Logger = log
	}

	log.Debugf("opening %s", source)

	r, err := vio.Open(ctx, source, &httpArgs)
	if err != nil {
		return nil, err
	}

	s, err := Load(ctx, r, log)
	if err != nil {
		r.Close()
		return nil, err
	}

	return s, nil
}

// Load checks the file signature through r and wraps it in a session. The
// caller keeps ownership of r if an error is returned.
func Load(ctx context.Context, r vio.Reader, log elog.View) (*Session, error) {

	if log == nil {
		log = &elog.CLI{}
	}

	buf, err := r.Read(ctx, len(FileSignature), 0)
	if err != nil {
		return nil, err
	}

	if string(buf) != FileSignature {
		return nil, &SignatureError{
			Structure: "file",
			Offset:    0,
			Expected:  FileSignature,
			Actual:    buf,
		}
	}

	return &Session{
		r:   r,
		log: log,
	}, nil
}

// Read returns length raw bytes at offset.
func (s *Session) Read(ctx context.Context, length int, offset int64) ([]byte, error) {
	return s.r.Read(ctx, length, offset)
}

// Close releases the underlying reader.
func (s *Session) Close() error {
	return s.r.Close()
}
