package hash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestDigest(t *testing.T) {
	assert.Equal(t, ID("test"), Digest([]byte("test")))
	assert.NotEqual(t, Digest([]byte{0, 0, 0, 0}), Digest([]byte{0, 0, 0, 1}))
}

func TestLayout(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := NewLayout()
		a.Add(ID("relay"), 1)
		a.Add(ID("counter"), 8)

		b := NewLayout()
		b.Add(ID("relay"), 1)
		b.Add(ID("counter"), 8)

		require.Equal(t, a.Sum64(), b.Sum64())
	})

	t.Run("order matters", func(t *testing.T) {
		a := NewLayout()
		a.Add(ID("relay"), 1)
		a.Add(ID("counter"), 8)

		b := NewLayout()
		b.Add(ID("counter"), 8)
		b.Add(ID("relay"), 1)

		require.NotEqual(t, a.Sum64(), b.Sum64())
	})

	t.Run("size matters", func(t *testing.T) {
		a := NewLayout()
		a.Add(ID("counter"), 4)

		b := NewLayout()
		b.Add(ID("counter"), 8)

		require.NotEqual(t, a.Sum64(), b.Sum64())
	})
}

func randString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range b {
		b[i] = letters[seededRand.Intn(len(letters))]
	}

	return string(b)
}

func BenchmarkID(b *testing.B) {
	randStr := randString(20)
	b.ResetTimer()
	for b.Loop() {
		ID(randStr)
	}
}
