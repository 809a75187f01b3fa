// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger provides the local result cache for tree computations.
//
// Relationship paths for a tree are fully determined by the tree's input
// records and the engine configuration, so repeated runs over unchanged
// trees can skip recomputation entirely. The cache keys on site, tree,
// root, and a fingerprint of the input records; any record change produces
// a different fingerprint and a clean miss.
//
// BadgerDB gives low-latency embedded storage with no external service.
// An in-memory mode exists for tests.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultTTL is how long cached results stay valid (7 days).
//
// The fingerprint already invalidates on data change; the TTL only bounds
// growth from trees that stop being computed.
const DefaultTTL = 7 * 24 * time.Hour

// Config holds configuration for the result cache database.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	// A lost cache entry only costs a recomputation, so this defaults
	// off.
	SyncWrites bool

	// TTL is the lifetime of cache entries. Zero means DefaultTTL.
	TTL time.Duration

	// Logger is the logger for BadgerDB operations.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// ResultCache caches encoded tree results in a BadgerDB instance.
//
// Thread Safety: Safe for concurrent use.
type ResultCache struct {
	db  *badger.DB
	ttl time.Duration
}

// Open creates and opens a result cache with the given configuration.
//
// Description:
//
//	Opens a BadgerDB database at the configured path, or in memory if
//	InMemory is true. Creates the directory if it doesn't exist.
//
// Inputs:
//
//	cfg - Cache configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*ResultCache - The opened cache. Caller must call Close() when done.
//	error - Non-nil if path is invalid or the database cannot be opened.
func Open(cfg Config) (*ResultCache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &ResultCache{db: db, ttl: ttl}, nil
}

// OpenInMemory opens an in-memory cache for testing.
func OpenInMemory() (*ResultCache, error) {
	return Open(Config{InMemory: true})
}

// Key builds the cache key for one tree computation.
//
// The fingerprint covers the input records and search configuration; see
// records.Fingerprint.
func Key(site string, tree, fingerprint uint64) []byte {
	return []byte(fmt.Sprintf("tree/%s/%d/%x", site, tree, fingerprint))
}

// Get returns the cached encoded result for a key.
//
// Outputs:
//
//	[]byte - The cached value, nil on miss.
//	bool - True on hit.
//	error - Non-nil on storage failure (a miss is not an error).
func (c *ResultCache) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

// Set stores an encoded result under a key with the configured TTL.
func (c *ResultCache) Set(key, value []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, value).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *ResultCache) Delete(key []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *ResultCache) Close() error {
	return c.db.Close()
}
