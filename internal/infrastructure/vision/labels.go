package vision

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bloodcell/internal/domain/entity"
)

// labelsFile формат data.yaml, с которым экспортируется модель.
// names бывает списком или отображением индекс -> метка.
type labelsFile struct {
	Names yaml.Node `yaml:"names"`
}

// LoadLabels читает метки классов модели в порядке индексов.
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return ParseLabels(data)
}

// ParseLabels разбирает содержимое data.yaml.
func ParseLabels(data []byte) ([]string, error) {
	var f labelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}

	switch f.Names.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := f.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("decode names list: %w", err)
		}
		return names, nil

	case yaml.MappingNode:
		var byIndex map[int]string
		if err := f.Names.Decode(&byIndex); err != nil {
			return nil, fmt.Errorf("decode names map: %w", err)
		}
		names := make([]string, len(byIndex))
		for i := range names {
			name, ok := byIndex[i]
			if !ok {
				return nil, fmt.Errorf("%w: class index %d is missing from names", entity.ErrLabelMismatch, i)
			}
			names[i] = name
		}
		return names, nil

	default:
		return nil, errors.New("labels file has no names section")
	}
}

// loadValidatedLabels читает метки и сверяет их с entity.CellClasses.
func loadValidatedLabels(path string) ([]string, error) {
	labels, err := LoadLabels(path)
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateLabels(labels); err != nil {
		return nil, err
	}
	return labels, nil
}
