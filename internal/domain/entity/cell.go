package entity

import (
	"fmt"
	"strings"
)

// CellClass тип клетки крови, который различает модель
type CellClass string

const (
	ClassWBC       CellClass = "WBC"       // лейкоциты
	ClassRBC       CellClass = "RBC"       // эритроциты
	ClassPlatelets CellClass = "Platelets" // тромбоциты
)

// CellClasses порядок классов совпадает с индексами классов модели.
var CellClasses = []CellClass{ClassWBC, ClassRBC, ClassPlatelets}

// ClassByIndex возвращает класс по индексу выхода модели.
func ClassByIndex(idx int) (CellClass, error) {
	if idx < 0 || idx >= len(CellClasses) {
		return "", fmt.Errorf("%w: class index %d out of range [0,%d)", ErrLabelMismatch, idx, len(CellClasses))
	}
	return CellClasses[idx], nil
}

// ParseCellClass разбирает метку класса без учёта регистра.
func ParseCellClass(label string) (CellClass, error) {
	label = strings.TrimSpace(label)
	for _, c := range CellClasses {
		if strings.EqualFold(label, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown label %q", ErrLabelMismatch, label)
}

// ValidateLabels проверяет, что метки модели совпадают с CellClasses по составу и порядку.
func ValidateLabels(labels []string) error {
	if len(labels) != len(CellClasses) {
		return fmt.Errorf("%w: model has %d labels, expected %d (%v)", ErrLabelMismatch, len(labels), len(CellClasses), CellClasses)
	}
	for i, label := range labels {
		c, err := ParseCellClass(label)
		if err != nil {
			return err
		}
		if c != CellClasses[i] {
			return fmt.Errorf("%w: label %d is %q, expected %q", ErrLabelMismatch, i, label, CellClasses[i])
		}
	}
	return nil
}
