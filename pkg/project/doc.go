// Package project loads the project descriptor, `libexport.yaml`.
//
// The descriptor names the project's group, its dependencies per
// configuration, where to find the version catalog and local repository, and
// how the runtime classpath is exported after the assemble action.
package project
