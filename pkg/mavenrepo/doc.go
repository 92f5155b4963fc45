// Package mavenrepo maps dependency coordinates to files in a local
// repository using the Maven directory layout:
//
//	<root>/<group with dots as slashes>/<module>/<version>/<module>-<version>.jar
//
// Nothing is downloaded; the repository is expected to be populated by an
// external dependency resolver.
package mavenrepo
