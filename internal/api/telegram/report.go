package telegram

import (
	"fmt"
	"strings"

	"bloodcell/internal/domain/entity"
)

// FormatReport текстовый отчёт по анализу для сообщения в чат
func FormatReport(a *entity.Analysis) string {
	var sb strings.Builder
	sb.WriteString("🩸 Результат анализа\n\n")

	for _, c := range entity.CellClasses {
		sizes := a.Summary.Sizes[c]
		fmt.Fprintf(&sb, "%s: %d", c, a.Summary.Counts[c])
		if len(sizes) > 0 {
			fmt.Fprintf(&sb, " (средняя площадь %.1f px²)", mean(sizes))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	for _, cond := range a.Conditions {
		sb.WriteString("• ")
		sb.WriteString(cond)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
