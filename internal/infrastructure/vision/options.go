package vision

import (
	"errors"
	"fmt"
)

// Options параметры детектора
type Options struct {
	ModelPath     string  // ONNX-экспорт YOLO
	LabelsPath    string  // data.yaml с метками классов модели
	InputSize     int     // сторона квадратного входа сети
	Confidence    float32 // минимальная уверенность детекции
	NMSThreshold  float32 // IoU для подавления пересекающихся рамок
	MaxDetections int     // предел рамок на изображение после NMS
}

// DefaultOptions параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		ModelPath:     "models/best.onnx",
		LabelsPath:    "models/data.yaml",
		InputSize:     640,
		Confidence:    0.25,
		NMSThreshold:  0.7,
		MaxDetections: 300,
	}
}

// Validate проверяет параметры детектора
func (o Options) Validate() error {
	if o.ModelPath == "" {
		return errors.New("model path is required")
	}
	if o.LabelsPath == "" {
		return errors.New("labels path is required")
	}
	if o.InputSize <= 0 || o.InputSize%32 != 0 {
		return fmt.Errorf("input size must be a positive multiple of 32 (got %d)", o.InputSize)
	}
	if o.Confidence < 0 || o.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1] (got %.2f)", o.Confidence)
	}
	if o.NMSThreshold <= 0 || o.NMSThreshold > 1 {
		return fmt.Errorf("nms threshold must be within (0,1] (got %.2f)", o.NMSThreshold)
	}
	if o.MaxDetections <= 0 {
		return fmt.Errorf("max detections must be positive (got %d)", o.MaxDetections)
	}
	return nil
}
