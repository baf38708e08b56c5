package vision

import (
	"fmt"
	"image"
	"math"
	"sort"

	"bloodcell/internal/domain/entity"
)

// candidate детекция до подавления пересечений
type candidate struct {
	classID int
	score   float32
	box     entity.BoundingBox
}

// outputLayout описывает выходной тензор YOLOv8: [1, 4+nc, N] или транспонированный [1, N, 4+nc].
type outputLayout struct {
	channels   int
	anchors    int
	transposed bool
}

func parseLayout(dims []int, numClasses int) (outputLayout, error) {
	channels := 4 + numClasses
	if len(dims) != 3 || dims[0] != 1 {
		return outputLayout{}, fmt.Errorf("%w: unexpected output shape %v", entity.ErrLabelMismatch, dims)
	}
	switch {
	case dims[1] == channels:
		return outputLayout{channels: channels, anchors: dims[2]}, nil
	case dims[2] == channels:
		return outputLayout{channels: channels, anchors: dims[1], transposed: true}, nil
	default:
		return outputLayout{}, fmt.Errorf("%w: output shape %v does not carry %d channels (4 box + %d classes)",
			entity.ErrLabelMismatch, dims, channels, numClasses)
	}
}

// letterbox геометрия приведения изображения к квадратному входу сети:
// единый масштаб с сохранением пропорций и симметричные серые поля.
type letterbox struct {
	srcW, srcH int
	scale      float64
	newW, newH int
	top        int
	bottom     int
	left       int
	right      int
}

// letterboxValue цвет полей, на котором обучалась модель
const letterboxValue = 114

func newLetterbox(srcW, srcH, size int) letterbox {
	scale := math.Min(float64(size)/float64(srcH), float64(size)/float64(srcW))
	newW := int(math.Round(float64(srcW) * scale))
	newH := int(math.Round(float64(srcH) * scale))

	dw := float64(size-newW) / 2
	dh := float64(size-newH) / 2

	return letterbox{
		srcW:   srcW,
		srcH:   srcH,
		scale:  scale,
		newW:   newW,
		newH:   newH,
		top:    int(math.Round(dh - 0.1)),
		bottom: int(math.Round(dh + 0.1)),
		left:   int(math.Round(dw - 0.1)),
		right:  int(math.Round(dw + 0.1)),
	}
}

// toImage переводит рамку (cx, cy, w, h) из входа сети в координаты исходного
// изображения и обрезает её по границам кадра.
func (l letterbox) toImage(cx, cy, w, h float32) entity.BoundingBox {
	clip := func(v float64, limit int) float64 {
		return math.Min(math.Max(v, 0), float64(limit))
	}
	x := func(v float32) float64 { return clip((float64(v)-float64(l.left))/l.scale, l.srcW) }
	y := func(v float32) float64 { return clip((float64(v)-float64(l.top))/l.scale, l.srcH) }

	return entity.BoundingBox{
		MinX: x(cx - w/2),
		MinY: y(cy - h/2),
		MaxX: x(cx + w/2),
		MaxY: y(cy + h/2),
	}
}

// decodeOutput превращает сырой выход сети в кандидатов с уверенностью не ниже conf.
// Координаты переводятся из входа сети в координаты исходного изображения.
func decodeOutput(data []float32, dims []int, numClasses int, lb letterbox, conf float32) ([]candidate, error) {
	layout, err := parseLayout(dims, numClasses)
	if err != nil {
		return nil, err
	}
	if len(data) < layout.channels*layout.anchors {
		return nil, fmt.Errorf("%w: output has %d values, expected %d",
			entity.ErrInference, len(data), layout.channels*layout.anchors)
	}

	at := func(ch, i int) float32 {
		if layout.transposed {
			return data[i*layout.channels+ch]
		}
		return data[ch*layout.anchors+i]
	}

	cands := make([]candidate, 0, 64)
	for i := 0; i < layout.anchors; i++ {
		best := 0
		bestScore := at(4, i)
		for c := 1; c < numClasses; c++ {
			if s := at(4+c, i); s > bestScore {
				best, bestScore = c, s
			}
		}
		if bestScore < conf {
			continue
		}

		cands = append(cands, candidate{
			classID: best,
			score:   bestScore,
			box:     lb.toImage(at(0, i), at(1, i), at(2, i), at(3, i)),
		})
	}
	return cands, nil
}

// groupByClass индексы кандидатов по классам, NMS применяется внутри класса.
func groupByClass(cands []candidate) map[int][]int {
	groups := make(map[int][]int)
	for i, c := range cands {
		groups[c.classID] = append(groups[c.classID], i)
	}
	return groups
}

// toDetections собирает итоговые детекции в порядке выхода сети.
// Если после NMS рамок больше maxDet, остаются maxDet самых уверенных.
func toDetections(cands []candidate, keep []int, maxDet int) ([]entity.Detection, error) {
	sorted := append([]int(nil), keep...)
	if maxDet > 0 && len(sorted) > maxDet {
		sort.SliceStable(sorted, func(a, b int) bool {
			return cands[sorted[a]].score > cands[sorted[b]].score
		})
		sorted = sorted[:maxDet]
	}
	sort.Ints(sorted)

	detections := make([]entity.Detection, 0, len(sorted))
	for _, idx := range sorted {
		c := cands[idx]
		class, err := entity.ClassByIndex(c.classID)
		if err != nil {
			return nil, err
		}
		detections = append(detections, entity.Detection{
			Class:      class,
			Box:        c.box,
			Confidence: c.score,
		})
	}
	return detections, nil
}

func toRect(b entity.BoundingBox) image.Rectangle {
	return image.Rect(
		int(math.Round(b.MinX)),
		int(math.Round(b.MinY)),
		int(math.Round(b.MaxX)),
		int(math.Round(b.MaxY)),
	)
}
