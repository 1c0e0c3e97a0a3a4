// Package conv collects tiny helper functions that are not part of the public API
// but aid internal conversions.
//
// It coerces loosely typed JSON values (identifiers that arrive either as strings
// or numbers, timestamps that arrive either as numbers or numeric strings) into
// plain Go values.
package conv
