// Package sanitizer normalizes intake form values before validation and
// storage.
//
// All functions are idempotent and never fail: input that cannot be
// normalized comes back empty so that the validator rejects it.
package sanitizer
