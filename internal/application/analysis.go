package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"bloodcell/internal/domain/diagnosis"
	"bloodcell/internal/domain/entity"
	"bloodcell/internal/domain/port"
)

// AnalysisService прогоняет снимок через детектор, агрегатор и правила.
type AnalysisService struct {
	detector port.CellDetector
	rules    *diagnosis.Engine
	log      logrus.FieldLogger
}

// NewAnalysisService создаёт сервис анализа мазка крови.
func NewAnalysisService(detector port.CellDetector, rules *diagnosis.Engine, log logrus.FieldLogger) *AnalysisService {
	return &AnalysisService{
		detector: detector,
		rules:    rules,
		log:      log,
	}
}

// Analyze выполняет полный цикл для одного изображения. Любая ошибка прерывает анализ целиком.
func (s *AnalysisService) Analyze(ctx context.Context, image []byte) (*entity.Analysis, error) {
	if len(image) == 0 {
		return nil, entity.ErrNoImage
	}
	if s.detector == nil {
		return nil, fmt.Errorf("%w: detector is not configured", entity.ErrInference)
	}

	detections, err := s.detector.Detect(ctx, image)
	if err != nil {
		if errors.Is(err, entity.ErrImageDecode) || errors.Is(err, entity.ErrInference) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrInference, err)
	}

	summary := entity.Summarize(detections)
	conditions := s.rules.DiagnoseCounts(summary.Counts)

	s.log.WithFields(logrus.Fields{
		"wbc":        summary.Counts[entity.ClassWBC],
		"rbc":        summary.Counts[entity.ClassRBC],
		"platelets":  summary.Counts[entity.ClassPlatelets],
		"conditions": len(conditions),
	}).Info("analysis complete")

	return &entity.Analysis{
		Summary:    summary,
		Conditions: conditions,
		Detections: detections,
	}, nil
}

// Annotate возвращает снимок с подсвеченными клетками.
func (s *AnalysisService) Annotate(image []byte, analysis *entity.Analysis) ([]byte, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}
	return s.detector.Annotate(image, analysis.Detections)
}
