package entity

// ClassCounts количество клеток каждого класса
type ClassCounts map[CellClass]int

// SizeDistribution площади рамок по классам в порядке обработки детекций
type SizeDistribution map[CellClass][]float64

// Summary агрегат по всем детекциям одного изображения
type Summary struct {
	Counts ClassCounts
	Sizes  SizeDistribution
}

// NewSummary создаёт пустой агрегат: нули и пустые (не nil) списки для всех классов.
func NewSummary() Summary {
	s := Summary{
		Counts: make(ClassCounts, len(CellClasses)),
		Sizes:  make(SizeDistribution, len(CellClasses)),
	}
	for _, c := range CellClasses {
		s.Counts[c] = 0
		s.Sizes[c] = make([]float64, 0)
	}
	return s
}

// Summarize считает клетки и площади за один проход.
func Summarize(detections []Detection) Summary {
	s := NewSummary()
	for _, d := range detections {
		s.Counts[d.Class]++
		s.Sizes[d.Class] = append(s.Sizes[d.Class], d.Box.Area())
	}
	return s
}

// Analysis итог обработки одного изображения
type Analysis struct {
	Summary    Summary
	Conditions []string
	Detections []Detection
}
