package vhdx

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"context"

	"github.com/imdario/mergo"
	"golang.org/x/sync/errgroup"

	"github.com/vorteil/vhdxinfo/pkg/elog"
)

// GetInfo opens source, decodes its metadata and closes it again, whether or
// not decoding succeeded.
func GetInfo(ctx context.Context, source string, args *Args) (info *Info, err error) {

	s, err := Open(ctx, source, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		cerr := s.Close()
		if err == nil && cerr != nil {
			info = nil
			err = cerr
		}
	}()

	return s.Info(ctx)
}

type itemJob struct {
	item  Item
	entry MetadataEntry
}

// Scoped returns a copy of s logging under a named child scope, and a func
// that closes the scope. Both share the underlying reader.
func (s *Session) Scoped(scope string) (*Session, func(error)) {
	log := elog.Scoped(s.log, scope)
	return &Session{r: s.r, log: log}, func(err error) {
		elog.Finish(log, err == nil)
	}
}

// Info locates the Metadata region, loads its table and decodes every known
// item present. The outcome matches visiting the items one by one in
// registry order: the first item to be missing (if required) or to fail
// decides the error, and no item after a missing required one is read.
// Payloads are fetched concurrently but merged in registry order.
func (s *Session) Info(ctx context.Context) (*Info, error) {

	rs, done := s.Scoped("regions")
	regions, err := rs.EnumRegions(ctx)
	done(err)
	if err != nil {
		return nil, err
	}

	region, ok := FindRegion(regions, RegionMetadata)
	if !ok {
		return nil, &RegionNotFoundError{Name: RegionMetadata}
	}

	ms, done := s.Scoped("metadata table")
	entries, err := ms.LoadMetadataTable(ctx, int64(region.FileOffset))
	done(err)
	if err != nil {
		return nil, err
	}

	var jobs []itemJob
	var missing error
	for _, item := range items {
		entry, ok := FindEntry(entries, item.GUID)
		if !ok {
			if item.Required {
				missing = &MissingMetadataError{Item: item.Name}
				break
			}
			s.log.Debugf("optional metadata item \"%s\" not present", item.Name)
			continue
		}
		jobs = append(jobs, itemJob{item: item, entry: entry})
	}

	partials := make([]*Info, len(jobs))
	errs := make([]error, len(jobs))

	// Jobs never cancel each other, so each error is the item's own.
	var g errgroup.Group
	for i := range jobs {
		i := i
		g.Go(func() error {
			partials[i], errs[i] = s.decodeItem(ctx, region, jobs[i])
			return nil
		})
	}
	g.Wait()

	for _, err = range errs {
		if err != nil {
			return nil, err
		}
	}

	if missing != nil {
		return nil, missing
	}

	info := new(Info)
	for _, partial := range partials {
		err = info.merge(partial)
		if err != nil {
			return nil, err
		}
	}

	return info, nil
}

func (s *Session) decodeItem(ctx context.Context, region RegionEntry, job itemJob) (info *Info, err error) {

	is, done := s.Scoped(job.item.Name)
	defer func() {
		done(err)
	}()

	p, err := is.ReadItem(ctx, region, job.entry)
	if err != nil {
		return nil, err
	}

	info, err = job.item.Decode(p)
	if err != nil {
		return nil, &MetadataDecodeError{
			GUID: job.item.GUID,
			Item: job.item.Name,
			Err:  err,
		}
	}

	is.log.Debugf("decoded \"%s\" (%d bytes at %#x)", job.item.Name, job.entry.Length, region.FileOffset+uint64(job.entry.Offset))

	return info, nil
}

// merge copies every non-zero field of p over info. The vendor metadata
// object is replaced whole rather than merged key by key.
func (info *Info) merge(p *Info) error {

	q := *p
	q.Metadata = nil

	err := mergo.Merge(info, q, mergo.WithOverride)
	if err != nil {
		return err
	}

	if p.Metadata != nil {
		info.Metadata = p.Metadata
	}

	return nil
}
