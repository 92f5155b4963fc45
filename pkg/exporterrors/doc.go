// Package exporterrors maps errors to process exit codes.
//
// Errors caused by configuration (the project descriptor, manifests,
// catalogs, exclusion patterns or command-line arguments) exit with
// [ExitConfigError]; every other failure exits with [ExitFailure].
package exporterrors
