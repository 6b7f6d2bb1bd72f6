package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// HashContent digests file content for cache keys and dependency records.
func HashContent(content []byte) Digest {
	return sha256.Sum256(content)
}

// HashString digests string content without an intermediate copy at call sites.
func HashString(content string) Digest {
	return sha256.Sum256([]byte(content))
}

// Combine строит составной хеш: H( content || dep1 || dep2 ... ).
// Порядок deps должен быть детерминированным (отсортированным).
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Hex returns the lower-case hex form used for disk cache keys and version
// tokens.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}
