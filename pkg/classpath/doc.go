// Package classpath exports a resolved runtime classpath into a directory.
//
// An export filters [Artifact]s by their group using exclusion [Pattern]s and
// copies the files of the remaining artifacts into a destination directory,
// preserving their base names. Copies run sequentially in a deterministic
// order (see [Compare]), so when two kept artifacts share a file name the one
// with the greater coordinate wins.
//
// File access goes through the [FileSystem] interface, implemented on
// [afero.Fs] by [AferoFileSystem]. The local disk is the default.
package classpath
