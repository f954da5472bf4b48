// Package sanitizer normalizes free-text and phone input before it reaches
// the appointment value objects.
//
// All functions are idempotent. Invalid input is reported by returning an
// empty string rather than an error; the value objects own validation.
//
// Normalization includes:
//   - Strings: collapse inner whitespace, trim leading/trailing spaces
//   - Digits: strip everything that is not 0-9
//   - Phone numbers: E.164 for storage and integrations, national format for display
package sanitizer
