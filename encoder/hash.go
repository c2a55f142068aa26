package encoder

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const defaultHashDimension = 512

// Hash is a deterministic feature-hashing encoder. Each lowercased token is
// hashed into one of Dimension buckets with a hash-derived sign, and the
// result is L2-normalized. It needs no model and is used offline and in
// tests.
type Hash struct {
	dim int
}

var _ Encoder = (*Hash)(nil)

// NewHash creates a Hash encoder. A zero dimension selects 512, the CLIP
// ViT-B/32 text width.
func NewHash(dim int) (*Hash, error) {
	if dim == 0 {
		dim = defaultHashDimension
	}
	if dim < 0 {
		return nil, fmt.Errorf("hash dimension must be positive, got %d", dim)
	}
	return &Hash{dim: dim}, nil
}

// Name returns the provider name.
func (h *Hash) Name() string {
	return fmt.Sprintf("hash/%d", h.dim)
}

// Dimension returns the vector length.
func (h *Hash) Dimension() int {
	return h.dim
}

// Encode hashes the tokens of text. Text without tokens encodes to the zero
// vector.
func (h *Hash) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, h.dim)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, tok := range tokens {
		hasher := fnv.New64a()
		hasher.Write([]byte(tok))
		sum := hasher.Sum64()
		bucket := int(sum % uint64(h.dim))
		if sum>>63 == 1 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}
