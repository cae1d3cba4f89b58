// Package yaml implements document-level helpers on top of the parser, the
// printer and the merge engine: reading and writing documents, merging them,
// comparing them, computing the common structure across two or more
// documents together with the remainders, and rendering documents with some
// branches commented out. Higher-level packages use these primitives to
// operate on files.
package yaml
