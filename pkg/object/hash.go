package object

import (
	"crypto/sha1"
	"fmt"
)

// Frame wraps an object payload in the canonical envelope
// "<kind> <len>\x00<payload>". The object id is the SHA-1 of this framed
// form, so the envelope is what every hash in the system is computed over.
func Frame(objType ObjectType, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(payload))
	framed := make([]byte, 0, len(header)+len(payload))
	framed = append(framed, header...)
	framed = append(framed, payload...)
	return framed
}

// HashObject frames the payload and returns both the SHA-1 id and the
// framed bytes, ready for compression and storage.
func HashObject(objType ObjectType, payload []byte) (Hash, []byte) {
	framed := Frame(objType, payload)
	return Hash(sha1.Sum(framed)), framed
}

// HashFramed computes the id of already-framed bytes.
func HashFramed(framed []byte) Hash {
	return Hash(sha1.Sum(framed))
}
