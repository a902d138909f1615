// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing event logs, transcripts and histories.
// They are not intended for production usage.
package testutil
