// Package catalog reads dependency version catalogs in the
// `libs.versions.toml` format.
//
// A catalog has three tables. [versions] maps aliases to version strings,
// [libraries] maps aliases to coordinates, and [bundles] maps aliases to
// lists of library aliases. Libraries are referenced through accessors,
// which are the lower camel case form of their alias, optionally prefixed
// with "libs.": `commons-lang3`, `commons.lang3` and `libs.commonsLang3`
// all refer to the same library.
package catalog
