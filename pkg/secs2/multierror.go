package secs2

import "github.com/hashicorp/go-multierror"

// appendMultiError accumulates per-element validation failures so that a
// vector Set() reports every element that failed, not just the first one
// encountered, per spec §4.2 ("every element must independently satisfy
// scalar rules; otherwise the whole assignment fails").
func appendMultiError(err error, next error) error {
	return multierror.Append(err, next)
}
