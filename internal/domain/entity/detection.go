package entity

// BoundingBox прямоугольник в координатах исходного изображения (xyxy)
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width ширина рамки
func (b BoundingBox) Width() float64 { return b.MaxX - b.MinX }

// Height высота рамки
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// Area площадь рамки. Отрицательные и нулевые значения не отбрасываются.
func (b BoundingBox) Area() float64 {
	return b.Width() * b.Height()
}

// Detection одна клетка, найденная моделью
type Detection struct {
	Class      CellClass
	Box        BoundingBox
	Confidence float32
}
