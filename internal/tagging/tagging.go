// Package tagging turns images into a short list of descriptive labels using
// an image classifier.
package tagging

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/Oxyrus/photojournal/internal/imagecodec"
)

// MaxTags is the number of labels kept per image.
const MaxTags = 3

// ErrClassifierUnavailable reports that the classifier could not be loaded.
// The tagging capability is unusable for the rest of the process lifetime.
var ErrClassifierUnavailable = errors.New("tagging: classifier unavailable")

// Error describes a failure at one stage of the tagging pipeline.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tagging: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Prediction is one label produced by a classifier.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier runs inference on a normalized pixel buffer. Predictions are
// returned in the order the model produced them.
type Classifier interface {
	Classify(ctx context.Context, input imagecodec.PixelBuffer) ([]Prediction, error)
}

// Service produces tags for images. It is safe for concurrent use; the number
// of simultaneous inference calls is bounded.
type Service struct {
	logger     *slog.Logger
	classifier Classifier
	sem        *semaphore.Weighted
}

// NewService wraps classifier. concurrency bounds simultaneous inference
// calls and is raised to 1 when lower. A nil classifier is allowed; every
// request then yields no tags.
func NewService(logger *slog.Logger, classifier Classifier, concurrency int64) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		logger:     logger,
		classifier: classifier,
		sem:        semaphore.NewWeighted(concurrency),
	}
}

// GenerateTags returns up to MaxTags labels for img, most confident first.
// Failures are logged and yield an empty slice.
func (s *Service) GenerateTags(ctx context.Context, img image.Image) []string {
	tags, err := s.tags(ctx, img)
	if err != nil {
		s.logger.Warn("tag generation failed", "error", err)
		return []string{}
	}
	return tags
}

// GenerateTagsFromBytes decodes raw and tags the result. Undecodable input
// yields an empty slice.
func (s *Service) GenerateTagsFromBytes(ctx context.Context, raw []byte) []string {
	img, err := imagecodec.Decode(raw)
	if err != nil {
		s.logger.Warn("tag generation failed", "error", &Error{Stage: "decode", Err: err})
		return []string{}
	}
	return s.GenerateTags(ctx, img)
}

// GenerateTagsAsync tags raw in a separate goroutine. The channel receives
// exactly one value and is then closed; callers that lose interest may drop
// it.
func (s *Service) GenerateTagsAsync(ctx context.Context, raw []byte) <-chan []string {
	out := make(chan []string, 1)
	go func() {
		defer close(out)
		out <- s.GenerateTagsFromBytes(ctx, raw)
	}()
	return out
}

func (s *Service) tags(ctx context.Context, img image.Image) ([]string, error) {
	if s.classifier == nil {
		return nil, &Error{Stage: "inference", Err: ErrClassifierUnavailable}
	}

	resized, err := imagecodec.ResizeExact(img, imagecodec.ClassifierInputSize, imagecodec.ClassifierInputSize)
	if err != nil {
		return nil, &Error{Stage: "resize", Err: err}
	}

	input, err := imagecodec.ToClassifierInput(resized)
	if err != nil {
		return nil, &Error{Stage: "convert", Err: err}
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, &Error{Stage: "inference", Err: err}
	}
	preds, err := s.classifier.Classify(ctx, input)
	s.sem.Release(1)
	if err != nil {
		return nil, &Error{Stage: "inference", Err: err}
	}

	return RankLabels(preds, MaxTags), nil
}

// RankLabels orders predictions by confidence, highest first, keeping the
// classifier's order among equal scores, and returns at most n cleaned
// labels.
func RankLabels(preds []Prediction, n int) []string {
	ranked := make([]Prediction, len(preds))
	copy(ranked, preds)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	tags := make([]string, 0, n)
	for _, p := range ranked {
		if len(tags) == n {
			break
		}
		label := SanitizeLabel(p.Label)
		if label == "" {
			continue
		}
		tags = append(tags, label)
	}
	return tags
}

// SanitizeLabel strips commas and surrounding whitespace from a label.
func SanitizeLabel(label string) string {
	return strings.TrimSpace(strings.ReplaceAll(label, ",", ""))
}
