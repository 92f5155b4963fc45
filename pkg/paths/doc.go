// Package paths locates project files on disk.
//
// The project descriptor is found by searching upward from a starting
// directory. When the start is inside a git repository, the search does not
// leave the repository.
package paths
