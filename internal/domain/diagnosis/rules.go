// Package diagnosis выводит список возможных состояний по количеству клеток.
//
// Пороги подобраны под небольшую выборку и клинически не проверены,
// поэтому они вынесены в Thresholds и настраиваются через конфиг.
package diagnosis

import (
	"fmt"

	"bloodcell/internal/domain/entity"
)

const (
	ConditionHighWBC = "Potential Leukemia: High WBC count"
	ConditionLowWBC  = "Low WBC: Potential immune system issues"
	ConditionLowRBC  = "Potential Anemia: Low RBC count"
	ConditionLowPlt  = "Potential Thrombocytopenia: Low platelet count"
	NoAbnormalities  = "No abnormalities detected"
)

// Thresholds границы правил. Все сравнения строгие.
type Thresholds struct {
	WBCHigh     int `yaml:"wbcHigh"`     // WBC > WBCHigh
	WBCLow      int `yaml:"wbcLow"`      // WBC < WBCLow
	RBCLow      int `yaml:"rbcLow"`      // RBC < RBCLow
	PlateletLow int `yaml:"plateletLow"` // Platelets < PlateletLow
}

// DefaultThresholds пороги по умолчанию
func DefaultThresholds() Thresholds {
	return Thresholds{
		WBCHigh:     11,
		WBCLow:      4,
		RBCLow:      4700,
		PlateletLow: 150,
	}
}

// Validate проверяет согласованность порогов
func (t Thresholds) Validate() error {
	if t.WBCLow < 0 || t.RBCLow < 0 || t.PlateletLow < 0 {
		return fmt.Errorf("thresholds must not be negative: %+v", t)
	}
	if t.WBCLow > t.WBCHigh {
		return fmt.Errorf("wbcLow (%d) must not exceed wbcHigh (%d)", t.WBCLow, t.WBCHigh)
	}
	return nil
}

// Engine применяет правила к счётчикам клеток
type Engine struct {
	thresholds Thresholds
}

// NewEngine создаёт движок правил
func NewEngine(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// Thresholds возвращает текущие пороги
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Diagnose оценивает правила в порядке WBC, RBC, Platelets.
// Высокий и низкий WBC взаимоисключающие: низкий проверяется только если высокий не сработал.
func (e *Engine) Diagnose(wbc, rbc, platelets int) []string {
	t := e.thresholds
	conditions := make([]string, 0, 3)

	if wbc > t.WBCHigh {
		conditions = append(conditions, ConditionHighWBC)
	} else if wbc < t.WBCLow {
		conditions = append(conditions, ConditionLowWBC)
	}

	if rbc < t.RBCLow {
		conditions = append(conditions, ConditionLowRBC)
	}

	if platelets < t.PlateletLow {
		conditions = append(conditions, ConditionLowPlt)
	}

	if len(conditions) == 0 {
		return []string{NoAbnormalities}
	}
	return conditions
}

// DiagnoseCounts то же, что Diagnose, но принимает агрегат счётчиков
func (e *Engine) DiagnoseCounts(counts entity.ClassCounts) []string {
	return e.Diagnose(counts[entity.ClassWBC], counts[entity.ClassRBC], counts[entity.ClassPlatelets])
}
