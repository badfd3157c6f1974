package db

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a single store write to attempt, possibly more than once.
type Operation func() error

const DefaultMaxRetries = 3

// WithRetries runs op, rerunning it up to maxRetries more times as long as
// shouldRetry reports the failure as retryable. A short incremental backoff
// separates attempts; any other failure is returned as-is.
func WithRetries(op Operation, maxRetries int, shouldRetry func(error) bool) error {
	err := op()
	for attempt := 1; attempt <= maxRetries && err != nil && shouldRetry(err); attempt++ {
		time.Sleep(time.Duration(50*attempt) * time.Millisecond)
		err = op()
	}
	return err
}

// IsDuplicateKey reports whether err is a MongoDB unique-index violation
// (write error code 11000). Single-document inserts surface these as a
// WriteException.
func IsDuplicateKey(err error) bool {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return false
	}
	for _, writeErr := range we.WriteErrors {
		if writeErr.Code == 11000 {
			return true
		}
	}
	return false
}
