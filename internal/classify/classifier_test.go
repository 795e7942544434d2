package classify_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal PNG signature is enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestPlaceholderClassify(t *testing.T) {
	c := classify.NewPlaceholder(rand.New(rand.NewPCG(42, 42)))

	seen := make(map[domain.Category]bool)
	for i := 0; i < 200; i++ {
		res, err := c.Classify(context.Background(), classify.Image{Data: pngBytes, ContentType: "image/png"})
		require.NoError(t, err)

		seen[res.Category] = true
		assert.GreaterOrEqual(t, res.Confidence, 0)
		assert.LessOrEqual(t, res.Confidence, 100)
		assert.Equal(t, domain.AnomaliesFor(res.Category), res.Anomalies)
		assert.NotEmpty(t, res.OCRText)

		if res.Authorized() {
			assert.Empty(t, res.Violations)
		} else {
			assert.NotEmpty(t, res.Violations)
		}
	}

	assert.Len(t, seen, 4, "every canned outcome should come up")
	assert.False(t, seen[domain.CategoryResolved])
}

func TestPlaceholderReturnsCopies(t *testing.T) {
	c := classify.NewPlaceholder(rand.New(rand.NewPCG(3, 3)))
	img := classify.Image{Data: pngBytes}

	for i := 0; i < 20; i++ {
		res, err := c.Classify(context.Background(), img)
		require.NoError(t, err)
		for j := range res.Violations {
			res.Violations[j] = "tampered"
		}
	}

	for i := 0; i < 20; i++ {
		res, err := c.Classify(context.Background(), img)
		require.NoError(t, err)
		assert.NotContains(t, res.Violations, "tampered")
	}
}

func TestPlaceholderRejectsBadInput(t *testing.T) {
	c := classify.NewPlaceholder(nil)

	_, err := c.Classify(context.Background(), classify.Image{})
	assert.ErrorIs(t, err, classify.ErrEmptyImage)

	_, err = c.Classify(context.Background(), classify.Image{Data: []byte("plain text"), ContentType: "text/plain"})
	assert.ErrorIs(t, err, classify.ErrUnsupportedImage)
}

func TestPlaceholderSniffsContentType(t *testing.T) {
	img := classify.Image{Data: pngBytes}
	require.NoError(t, img.Validate())
	assert.Equal(t, "image/png", img.ContentType)
}

func TestPlaceholderHonoursContext(t *testing.T) {
	c := classify.NewPlaceholder(nil, classify.WithLatency(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Classify(ctx, classify.Image{Data: pngBytes})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
