// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import "errors"

// Predefined errors returned by searchq operations.
// The composition engine itself never fails; these belong to the layers around it.
var (
	// ErrPhaseCanceled is returned when a query cycle is requested on a done context.
	ErrPhaseCanceled = errors.New("query phase canceled before it started")
	// ErrSnapshotNotFound is returned when a stored request snapshot does not exist.
	ErrSnapshotNotFound = errors.New("request snapshot not found")
	// ErrUnsupportedDialect is returned when no SQL dialect is registered for a driver.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrUnknownFormat is returned when a wire format name is not recognized.
	ErrUnknownFormat = errors.New("unknown wire format")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
