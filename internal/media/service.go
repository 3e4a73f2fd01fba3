package media

import (
	"context"
	"strings"

	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
	"github.com/astralabs/astra-backend/pkg/metrics"
)

// maxAnalysisBytes bounds uploaded analysis payloads (vision API limit).
const maxAnalysisBytes = 8 << 20

type uploader interface {
	Upload(ctx context.Context, imageData, folder string) (string, error)
}

type analyzer interface {
	ExtractKeywords(ctx context.Context, image []byte, mimeType string) ([]string, error)
}

// Service fronts the media CDN and the image-analysis vendor.
type Service struct {
	uploader uploader
	analyzer analyzer
	folder   string
	logg     *logger.Logger
	metrics  *metrics.APIMetrics
}

func NewService(up uploader, an analyzer, folder string, logg *logger.Logger, apiMetrics *metrics.APIMetrics) *Service {
	return &Service{
		uploader: up,
		analyzer: an,
		folder:   folder,
		logg:     logg,
		metrics:  apiMetrics,
	}
}

// Upload proxies a base64 data URL or remote image URL to the CDN and returns
// the durable URL.
func (s *Service) Upload(ctx context.Context, imageData string) (string, error) {
	imageData = strings.TrimSpace(imageData)
	if imageData == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if !strings.HasPrefix(imageData, "data:") &&
		!strings.HasPrefix(imageData, "http://") &&
		!strings.HasPrefix(imageData, "https://") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image must be a data url or remote url")
	}

	url, err := s.uploader.Upload(ctx, imageData, s.folder)
	if err != nil {
		s.metrics.IncUpload("error")
		return "", err
	}
	s.metrics.IncUpload("success")
	return url, nil
}

// Analyze extracts descriptive keywords from raw image bytes.
func (s *Service) Analyze(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	if len(image) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	if len(image) > maxAnalysisBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image too large")
	}
	return s.analyzer.ExtractKeywords(ctx, image, mimeType)
}
