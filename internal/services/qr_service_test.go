package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLinkQR(t *testing.T) {
	t.Run("produces a PNG", func(t *testing.T) {
		data, err := GenerateLinkQR("https://sub.example.com/clash", 256)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	})

	t.Run("non-positive size falls back to the default", func(t *testing.T) {
		data, err := GenerateLinkQR("https://sub.example.com/clash", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		_, err := GenerateLinkQR("", 256)
		assert.Error(t, err)
	})
}
