// Package loader provides the sources templates are read from.
//
// Templates are addressed by local paths: slash-separated and
// relative to a virtual root. A Loader maps a local path to raw
// template text and never serves anything outside its root.
// File system, in-memory, HTML script tag and SQL loaders are
// provided, together with a Fallback loader chaining several
// sources and Bundle, which collects a directory of templates
// so they can be passed to a render as data.
package loader
