package port

import (
	"context"

	"bloodcell/internal/domain/entity"
)

// CellDetector интерфейс детектора клеток крови
type CellDetector interface {
	// Detect декодирует изображение и возвращает детекции с уверенностью не ниже порога.
	// Ошибка декодирования оборачивает entity.ErrImageDecode, ошибка модели entity.ErrInference.
	Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error)

	// Annotate рисует рамки детекций поверх изображения и возвращает JPEG
	Annotate(imageData []byte, detections []entity.Detection) ([]byte, error)
}
