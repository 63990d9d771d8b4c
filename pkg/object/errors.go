package object

import "errors"

var (
	// ErrObjectNotFound reports that no object with the requested id (or
	// prefix) exists in the store.
	ErrObjectNotFound = errors.New("object not found")

	// ErrAmbiguousPrefix reports that a short id matched more than one
	// stored object.
	ErrAmbiguousPrefix = errors.New("ambiguous object id prefix")

	// ErrCorruptObject reports a hash mismatch or malformed framing on a
	// stored object.
	ErrCorruptObject = errors.New("corrupt object")

	// ErrMalformedTree reports tree bytes that violate the tree wire format.
	ErrMalformedTree = errors.New("malformed tree")

	// ErrMalformedCommit reports commit bytes that violate the commit
	// header layout.
	ErrMalformedCommit = errors.New("malformed commit")
)
