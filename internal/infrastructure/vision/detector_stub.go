//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"bloodcell/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// YOLODetector заглушка для сборки без OpenCV.
type YOLODetector struct{}

// NewYOLODetector проверяет параметры и метки, но модель без gocv не загрузить: сервис не стартует.
func NewYOLODetector(opts Options, log logrus.FieldLogger) (*YOLODetector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := loadValidatedLabels(opts.LabelsPath); err != nil {
		return nil, err
	}
	log.Error("detector requires a build with -tags gocv")
	return nil, errNoGoCV
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *YOLODetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	_ = ctx
	_ = imageData
	return nil, errNoGoCV
}

// Annotate возвращает ошибку, если сборка без тега gocv.
func (d *YOLODetector) Annotate(imageData []byte, detections []entity.Detection) ([]byte, error) {
	_ = imageData
	_ = detections
	return nil, errNoGoCV
}

// Close ничего не делает
func (d *YOLODetector) Close() error { return nil }
