package deduplication

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

type Hasher struct {
	algorithm string
}

func NewHasher(algorithm string) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// ComputeHash hashes the values of fields, in order. Missing fields hash as
// the empty string.
func (h *Hasher) ComputeHash(values map[string]interface{}, fields []string) (string, error) {
	if len(fields) == 0 {
		return "", fmt.Errorf("no fields specified for hashing")
	}

	var builder strings.Builder
	for _, field := range fields {
		val, exists := values[field]
		if !exists || val == nil {
			val = ""
		}
		builder.WriteString(fmt.Sprintf("%v|", val))
	}
	input := builder.String()

	switch h.algorithm {
	case "md5":
		sum := md5.Sum([]byte(input))
		return hex.EncodeToString(sum[:]), nil
	default:
		sum := sha256.Sum256([]byte(input))
		return hex.EncodeToString(sum[:]), nil
	}
}
