package vio

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vorteil/vhdxinfo/pkg/elog"
)

// DefaultProbeTimeout bounds the initial range-support probe.
const DefaultProbeTimeout = 3 * time.Second

// HTTPArgs configures an HTTPReader. The zero value is usable.
type HTTPArgs struct {
	// Client is copied and its redirect policy replaced; nil means a client
	// of the reader's own, on a clone of http.DefaultTransport. Idle
	// connections are closed on Close only for a transport the reader owns.
	Client       *http.Client
	ProbeTimeout time.Duration
	UserAgent    string
	Logger       elog.View
}

// HTTPReader reads from a remote image with one ranged GET per Read. It
// performs no retries and caches nothing.
type HTTPReader struct {
	url    string
	agent  string
	client *http.Client
	owned  bool
	log    elog.View

	lock   sync.RWMutex
	closed bool
}

var _ Reader = (*HTTPReader)(nil)

// OpenHTTP probes url for byte-range support and returns a reader for it.
// The probe is the only request subject to a timeout.
func OpenHTTP(ctx context.Context, url string, args *HTTPArgs) (*HTTPReader, error) {

	if args == nil {
		args = new(HTTPArgs)
	}

	log := args.Logger
	if log == nil {
		log = &elog.CLI{}
	}

	timeout := args.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	client, owned := noRedirects(args.Client)
	r := &HTTPReader{
		url:    url,
		agent:  args.UserAgent,
		client: client,
		owned:  owned,
		log:    log,
	}

	err := r.probe(ctx, timeout)
	if err != nil {
		r.closeIdle()
		return nil, err
	}

	return r, nil
}

// noRedirects copies c with redirects disabled. A nil c yields a new client
// on a private transport, reported as owned.
func noRedirects(c *http.Client) (*http.Client, bool) {
	owned := c == nil
	if owned {
		c = &http.Client{Transport: privateTransport()}
	}
	nc := *c
	nc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &nc, owned
}

func privateTransport() http.RoundTripper {
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		return t.Clone()
	}
	return &http.Transport{Proxy: http.ProxyFromEnvironment}
}

func (r *HTTPReader) closeIdle() {
	if r.owned {
		r.client.CloseIdleConnections()
	}
}

func (r *HTTPReader) request(ctx context.Context, method string, length int, offset int64) (*http.Request, error) {

	req, err := http.NewRequestWithContext(ctx, method, r.url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+int64(length)-1))
	if r.agent != "" {
		req.Header.Set("User-Agent", r.agent)
	}

	return req, nil
}

func (r *HTTPReader) probe(ctx context.Context, timeout time.Duration) error {

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ioerr := func(err error) error {
		return &IOError{Source: r.url, Op: opProbe, Err: err}
	}

	req, err := r.request(ctx, http.MethodHead, 1, 0)
	if err != nil {
		return ioerr(err)
	}

	r.log.Debugf("probing %s for range support", r.url)

	resp, err := r.client.Do(req)
	if err != nil {
		return ioerr(err)
	}
	resp.Body.Close()

	return r.checkStatus(resp, ioerr)
}

func (r *HTTPReader) checkStatus(resp *http.Response, ioerr func(error) error) error {

	if resp.StatusCode == http.StatusPartialContent {
		return nil
	}

	rerr := &RangeUnsupportedError{
		URL:    r.url,
		Status: resp.StatusCode,
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		rerr.Location = resp.Header.Get("Location")
		return ioerr(rerr)
	}

	return rerr
}

// Read implements Reader.
func (r *HTTPReader) Read(ctx context.Context, length int, offset int64) ([]byte, error) {

	if err := checkRange(r.url, length, offset); err != nil {
		return nil, err
	}

	ioerr := func(err error) error {
		return &IOError{Source: r.url, Op: opRead, Offset: offset, Length: length, Err: err}
	}

	r.lock.RLock()
	closed := r.closed
	r.lock.RUnlock()
	if closed {
		return nil, ioerr(ErrClosed)
	}

	// bytes=N-(N-1) is not a valid range
	if length == 0 {
		return []byte{}, nil
	}

	req, err := r.request(ctx, http.MethodGet, length, offset)
	if err != nil {
		return nil, ioerr(err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, ioerr(err)
	}
	defer resp.Body.Close()

	err = r.checkStatus(resp, ioerr)
	if err != nil {
		return nil, err
	}

	p := make([]byte, length)
	n, err := io.ReadFull(resp.Body, p)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = errors.Wrapf(ErrShortRead, "got %d of %d bytes", n, length)
		}
		return nil, ioerr(err)
	}

	return p, nil
}

// Close implements Reader.
func (r *HTTPReader) Close() error {

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	r.closeIdle()

	return nil
}
