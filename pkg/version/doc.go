// Package version provides version information for the application.
//
// Version and Revision are set at link time with -ldflags. When they are not
// set, they are read from the module build info.
package version
