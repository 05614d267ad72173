package vio

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// FileReader reads from a local image file with positioned reads, so
// concurrent Read calls never share a cursor.
type FileReader struct {
	name string

	lock sync.RWMutex
	f    *os.File
}

var _ Reader = (*FileReader)(nil)

// OpenFile opens the file at path read-only.
func OpenFile(path string) (*FileReader, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Source: path, Op: opOpen, Err: err}
	}

	return &FileReader{
		name: path,
		f:    f,
	}, nil
}

// Read implements Reader.
func (r *FileReader) Read(ctx context.Context, length int, offset int64) ([]byte, error) {

	if err := checkRange(r.name, length, offset); err != nil {
		return nil, err
	}

	ioerr := func(err error) error {
		return &IOError{Source: r.name, Op: opRead, Offset: offset, Length: length, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, ioerr(err)
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.f == nil {
		return nil, ioerr(ErrClosed)
	}

	p := make([]byte, length)
	n, err := r.f.ReadAt(p, offset)
	if n < length {
		if err == nil || err == io.EOF {
			err = errors.Wrapf(ErrShortRead, "got %d of %d bytes", n, length)
		}
		return nil, ioerr(err)
	}

	return p, nil
}

// Close implements Reader.
func (r *FileReader) Close() error {

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.f == nil {
		return nil
	}

	err := r.f.Close()
	r.f = nil
	if err != nil {
		return &IOError{Source: r.name, Op: opClose, Err: err}
	}

	return nil
}
