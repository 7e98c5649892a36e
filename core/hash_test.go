package core

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHashImpl(t *testing.T) {
	tests := []struct {
		name     string
		hashType string
		wantErr  bool
	}{
		{"SHA1", "sha1", false},
		{"SHA1 uppercase", "SHA1", false},
		{"SHA256", "sha256", false},
		{"SHA512", "sha512", false},
		{"MD5", "md5", false},
		{"Length-bytes", "length-bytes", false},
		{"Murmur2 is not supported", "murmur2", true},
		{"Invalid hash", "invalid-hash", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetHashImpl(tt.hashType)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, got)
			}
		})
	}
}

func TestHexStringer(t *testing.T) {
	tests := []struct {
		name     string
		hashType string
		want     string
	}{
		{"SHA1", "sha1", "f48dd853820860816c75d54d0f584dc863327a7c"},
		{"MD5", "md5", "eb733a00c0c9d336e65691a37ab54293"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher, err := GetHashImpl(tt.hashType)
			assert.NoError(t, err)

			_, err = hasher.Write([]byte("test data"))
			assert.NoError(t, err)

			assert.Equal(t, tt.want, hasher.String())
		})
	}
}

func TestLengthHasher(t *testing.T) {
	t.Run("Multiple writes", func(t *testing.T) {
		hasher, err := GetHashImpl("length-bytes")
		assert.NoError(t, err)

		_, _ = hasher.Write([]byte("first chunk"))
		_, _ = hasher.Write([]byte("second chunk"))

		assert.Equal(t, "23", hasher.String())
	})

	t.Run("Reset functionality", func(t *testing.T) {
		lengthHasher := &LengthHasher{}

		_, err := lengthHasher.Write([]byte("test data"))
		assert.NoError(t, err)

		lengthHasher.Reset()

		buffer := new(bytes.Buffer)
		sum := lengthHasher.Sum(buffer.Bytes())

		assert.Equal(t, uint64(0), binary.BigEndian.Uint64(sum))
		assert.Equal(t, 8, lengthHasher.Size())
		assert.Equal(t, 1, lengthHasher.BlockSize())
	})
}

func TestHashVerifier(t *testing.T) {
	payload := "test data"

	t.Run("matching hashes and size", func(t *testing.T) {
		v := NewHashVerifier(map[string]string{
			"sha1": "F48DD853820860816C75D54D0F584DC863327A7C",
		}, uint64(len(payload)))

		_, err := io.Copy(v.Writer(), strings.NewReader(payload))
		assert.NoError(t, err)
		assert.NoError(t, v.Verify())
	})

	t.Run("wrong size", func(t *testing.T) {
		v := NewHashVerifier(nil, 3)

		_, _ = io.Copy(v.Writer(), strings.NewReader(payload))
		assert.ErrorContains(t, v.Verify(), "length-bytes mismatch")
	})

	t.Run("unknown algorithms are ignored", func(t *testing.T) {
		v := NewHashVerifier(map[string]string{"murmur2": "1234"}, 0)

		assert.Equal(t, io.Discard, v.Writer())
		assert.NoError(t, v.Verify())
	})
}
