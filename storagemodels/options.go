/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"
)

// QueryOptions configures how the engine fetches a result set
type QueryOptions struct {
	Timeout      time.Duration // Deadline of a single page attempt (default: 10s)
	MaxRetries   int           // Retry attempts for network errors (default: 3)
	RetryBackoff time.Duration // Backoff between retries, grows linearly (default: 1s)
	PageSize     int32         // Items per DynamoDB page, 0 lets the store decide
	MaxItems     int           // Stop after this many items, 0 is unlimited
	Workers      int           // Concurrent fetches (default: 4)
	ReadOnly     bool          // Refuse write-back
}

// QueryOption is a functional option for configuring queries
type QueryOption func(*QueryOptions)

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		Workers:      4,
	}
}

// WithTimeout sets the per-attempt deadline
func WithTimeout(timeout time.Duration) QueryOption {
	return func(opts *QueryOptions) {
		opts.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) QueryOption {
	return func(opts *QueryOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) QueryOption {
	return func(opts *QueryOptions) {
		opts.RetryBackoff = backoff
	}
}

// WithPageSize sets the DynamoDB page size
func WithPageSize(size int32) QueryOption {
	return func(opts *QueryOptions) {
		opts.PageSize = size
	}
}

// WithMaxItems caps the number of materialized items
func WithMaxItems(n int) QueryOption {
	return func(opts *QueryOptions) {
		opts.MaxItems = n
	}
}

// WithWorkers sets the number of concurrent fetches
func WithWorkers(n int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Workers = n
	}
}

// WithReadOnly refuses write-back when true
func WithReadOnly(readOnly bool) QueryOption {
	return func(opts *QueryOptions) {
		opts.ReadOnly = readOnly
	}
}
