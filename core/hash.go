package core

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"
)

// GetHashImpl gets an implementation of hash.Hash for the given hash type string
func GetHashImpl(hashType string) (HashStringer, error) {
	switch strings.ToLower(hashType) {
	case "sha1":
		return &hexStringer{sha1.New()}, nil
	case "sha256":
		return &hexStringer{sha256.New()}, nil
	case "sha512":
		return &hexStringer{sha512.New()}, nil
	case "md5":
		return &hexStringer{md5.New()}, nil
	case "length-bytes":
		return &number64Stringer{&LengthHasher{}}, nil
	}
	return nil, fmt.Errorf("hash implementation %s not found", hashType)
}

// PreferredHashList is the order in which manifest hashes are used to look up versions.
var PreferredHashList = []string{
	"sha1",
	"sha512",
}

type HashStringer interface {
	hash.Hash
	String() string
}

type hexStringer struct {
	hash.Hash
}

func (h *hexStringer) String() string {
	return hex.EncodeToString(h.Sum(nil))
}

type number64Stringer struct {
	hash.Hash
}

func (h *number64Stringer) String() string {
	return strconv.FormatUint(binary.BigEndian.Uint64(h.Sum(nil)), 10)
}

type LengthHasher struct {
	length uint64
}

func (h *LengthHasher) Write(p []byte) (n int, err error) {
	h.length += uint64(len(p))
	return len(p), nil
}

func (h *LengthHasher) Sum(b []byte) []byte {
	ext := append(b, make([]byte, 8)...)
	binary.BigEndian.PutUint64(ext, h.length)
	return ext
}

func (h *LengthHasher) Size() int {
	return 8
}

func (h *LengthHasher) BlockSize() int {
	return 1
}

func (h *LengthHasher) Reset() {
	h.length = 0
}

// HashVerifier computes every expected hash while a file is streamed through it.
// Unknown algorithms in the expected set are ignored.
type HashVerifier struct {
	expected map[string]string
	hashers  map[string]HashStringer
}

func NewHashVerifier(expected map[string]string, size uint64) *HashVerifier {
	v := &HashVerifier{
		expected: make(map[string]string),
		hashers:  make(map[string]HashStringer),
	}
	for algo, want := range expected {
		h, err := GetHashImpl(algo)
		if err != nil || want == "" {
			continue
		}
		algo = strings.ToLower(algo)
		v.expected[algo] = strings.ToLower(want)
		v.hashers[algo] = h
	}
	if size > 0 {
		h, _ := GetHashImpl("length-bytes")
		v.expected["length-bytes"] = strconv.FormatUint(size, 10)
		v.hashers["length-bytes"] = h
	}
	return v
}

// Writer returns a writer feeding all hashers, or io.Discard when nothing is checked.
func (v *HashVerifier) Writer() io.Writer {
	if len(v.hashers) == 0 {
		return io.Discard
	}
	writers := make([]io.Writer, 0, len(v.hashers))
	for _, h := range v.hashers {
		writers = append(writers, h)
	}
	return io.MultiWriter(writers...)
}

// Verify compares computed against expected values.
func (v *HashVerifier) Verify() error {
	for algo, h := range v.hashers {
		if got := h.String(); got != v.expected[algo] {
			return fmt.Errorf("%s mismatch: expected %s, got %s", algo, v.expected[algo], got)
		}
	}
	return nil
}
