// Package sanitizer normalizes user-supplied booking data before validation
// and storage.
//
// All functions are idempotent and handle invalid input by returning empty
// values rather than errors. Slot labels are deliberately NOT normalized
// beyond whitespace: the label doubles as the conflict-matching key stored on
// bookings, so it must match generated slots byte for byte.
package sanitizer
