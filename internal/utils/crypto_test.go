// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{6}-[A-Z0-9]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := GenerateOrderNumber()
		require.NoError(t, err)
		assert.Regexp(t, pattern, number)
		seen[number] = true
	}

	// The random suffix should make collisions across 50 draws implausible.
	assert.Greater(t, len(seen), 45)
}

func TestGenerateSKU(t *testing.T) {
	sku, err := GenerateSKU()
	require.NoError(t, err)
	assert.NotEmpty(t, sku)

	other, err := GenerateSKU()
	require.NoError(t, err)
	assert.NotEqual(t, sku, other)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(16)
	require.NoError(t, err)
	assert.Len(t, s, 16)
}
