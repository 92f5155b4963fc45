// Package exec runs external commands with logging, redaction and timeouts.
package exec
