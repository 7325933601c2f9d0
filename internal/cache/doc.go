// Package cache persists rendered diagrams as content-addressed files.
//
// An artifact is named diag-<sha256 of the diagram GET URL>.<format>, so the
// same server URL and diagram source always map to the same file. [Writer.Save]
// returns immediately when that file already exists; otherwise it consults the
// optional shared [store.Store], then the rendering service, and writes the
// result through a temporary file and a rename so a partial write is never
// mistaken for a cache hit.
//
// The target directory comes from [DirHints.Resolve], which mirrors how
// document toolchains place generated images: an explicit images output
// directory first, then the output, destination or base directory joined with
// the images path.
package cache
