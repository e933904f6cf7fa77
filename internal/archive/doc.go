// Package archive packs a directory tree into a single byte stream and back.
//
// The container is gzip-compressed tar. Entries are stored relative to the
// folder's own name, so an archive of /home/u/Notes contains Notes/a.txt,
// Notes/sub/b.txt and so on. Empty directories are preserved via explicit
// directory headers; a completely empty folder is represented by a single
// reserved placeholder entry that is never materialized on unpack.
//
// Unpack refuses entries that would escape the destination root.
package archive
