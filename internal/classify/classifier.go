// Package classify holds the image classification capability.
// The only implementation today is a placeholder that picks one of four canned
// outcomes; a real inference backend plugs in behind Classifier.
package classify

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rgdevment/billboard-registry/internal/domain"
)

var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrUnsupportedImage = errors.New("file is not an image")
)

// Image is an uploaded photo.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Validate sniffs the content type when the client did not send one.
func (img *Image) Validate() error {
	if len(img.Data) == 0 {
		return ErrEmptyImage
	}
	if img.ContentType == "" || img.ContentType == "application/octet-stream" {
		img.ContentType = http.DetectContentType(img.Data)
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return ErrUnsupportedImage
	}
	return nil
}

// Classifier turns a billboard photo into a detection result.
type Classifier interface {
	Classify(ctx context.Context, img Image) (domain.DetectionResult, error)
}

var canned = []domain.DetectionResult{
	{
		Category:   domain.CategoryLegal,
		Confidence: 95,
		Violations: []string{},
		Anomalies:  domain.AnomaliesFor(domain.CategoryLegal),
		OCRText:    "AUTHORIZED BILLBOARD\nPERMIT: #ABC123\nCOMPLIANT WITH MUNICIPAL RULES",
	},
	{
		Category:   domain.CategoryOversized,
		Confidence: 95,
		Violations: []string{"Exceeds municipal size limit", "No proper permits"},
		Anomalies:  domain.AnomaliesFor(domain.CategoryOversized),
		OCRText:    "CONTACT\n9823015375\nPRE-LAUNCHING\nCODENAME\nMADE FOR ME\nSHANGR",
	},
	{
		Category:   domain.CategoryDamaged,
		Confidence: 92,
		Violations: []string{"Unsafe structural condition"},
		Anomalies:  domain.AnomaliesFor(domain.CategoryDamaged),
		OCRText:    "WARNING: DAMAGED\nSTRUCTURAL ISSUES\nCONTACT MUNICIPAL",
	},
	{
		Category:   domain.CategoryObscene,
		Confidence: 78,
		Violations: []string{"Inappropriate content"},
		Anomalies:  domain.AnomaliesFor(domain.CategoryObscene),
		OCRText:    "ADULT CONTENT\nRESTRICTED MATERIAL\nNOT SUITABLE",
	},
}

// Placeholder returns a uniformly random canned result. It ignores the pixels.
type Placeholder struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency time.Duration
}

type Option func(*Placeholder)

// WithLatency makes every call wait, to mimic a remote model.
func WithLatency(d time.Duration) Option {
	return func(p *Placeholder) { p.latency = d }
}

// NewPlaceholder builds the placeholder classifier. A nil rng is seeded from the clock.
func NewPlaceholder(rng *rand.Rand, opts ...Option) *Placeholder {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	p := &Placeholder{rng: rng}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Placeholder) Classify(ctx context.Context, img Image) (domain.DetectionResult, error) {
	if err := img.Validate(); err != nil {
		return domain.DetectionResult{}, err
	}

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.DetectionResult{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.DetectionResult{}, err
	}

	p.mu.Lock()
	pick := canned[p.rng.IntN(len(canned))]
	p.mu.Unlock()

	pick.Violations = append([]string{}, pick.Violations...)
	return pick, nil
}
