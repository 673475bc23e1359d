// Package contentsync imports image files from an object storage bucket
// into a content library.
//
// Every object whose extension is an allowed type becomes a catalog item
// named after its base file name. Items that already exist are skipped, so
// running a sync twice creates nothing the second time.
//
// Two transfer strategies exist. The direct strategy lets the library fetch
// the object by public URL and may grant public read on the object for the
// duration of the import. The staged strategy downloads the object into a
// temporary directory and uploads it from there.
package contentsync
