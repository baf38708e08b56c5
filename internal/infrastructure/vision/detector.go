//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"bloodcell/internal/domain/entity"
	"bloodcell/internal/domain/port"
)

// YOLODetector ищет клетки крови ONNX-моделью YOLO через OpenCV DNN.
// gocv.Net не реентерабелен, поэтому прямой проход сети сериализуется мьютексом.
type YOLODetector struct {
	opts   Options
	labels []string
	log    logrus.FieldLogger

	mu  sync.Mutex
	net gocv.Net
}

// NewYOLODetector загружает модель и метки, сверяет их с классами и прогревает сеть.
func NewYOLODetector(opts Options, log logrus.FieldLogger) (*YOLODetector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}

	labels, err := loadValidatedLabels(opts.LabelsPath)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromONNX(opts.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", opts.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	d := &YOLODetector{
		opts:   opts,
		labels: labels,
		log:    log,
		net:    net,
	}
	if err := d.warmUp(); err != nil {
		net.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"model":      opts.ModelPath,
		"labels":     labels,
		"input_size": opts.InputSize,
		"confidence": opts.Confidence,
	}).Info("detection model loaded")

	return d, nil
}

// warmUp прогоняет пустой кадр и проверяет форму выхода: 4 координаты + по одному каналу на класс.
func (d *YOLODetector) warmUp() error {
	blank := gocv.NewMatWithSize(d.opts.InputSize, d.opts.InputSize, gocv.MatTypeCV8UC3)
	defer blank.Close()

	_, dims, err := d.forward(blank)
	if err != nil {
		return fmt.Errorf("warm up: %w", err)
	}
	if _, err := parseLayout(dims, len(d.labels)); err != nil {
		return err
	}
	return nil
}

// Detect декодирует изображение, запускает сеть и возвращает детекции после NMS.
func (d *YOLODetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	lb := newLetterbox(mat.Cols(), mat.Rows(), d.opts.InputSize)
	input := applyLetterbox(mat, lb)
	defer input.Close()

	data, dims, err := d.forward(input)
	if err != nil {
		return nil, err
	}

	cands, err := decodeOutput(data, dims, len(d.labels), lb, d.opts.Confidence)
	if err != nil {
		return nil, err
	}

	detections, err := toDetections(cands, d.suppress(cands), d.opts.MaxDetections)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInference, err)
	}

	d.log.WithFields(logrus.Fields{
		"width":      mat.Cols(),
		"height":     mat.Rows(),
		"candidates": len(cands),
		"detections": len(detections),
	}).Debug("inference done")

	return detections, nil
}

// applyLetterbox масштабирует кадр с сохранением пропорций и дополняет его
// серыми полями до квадратного входа сети.
func applyLetterbox(mat gocv.Mat, lb letterbox) gocv.Mat {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(lb.newW, lb.newH), 0, 0, gocv.InterpolationLinear)

	padded := gocv.NewMat()
	pad := color.RGBA{R: letterboxValue, G: letterboxValue, B: letterboxValue, A: 255}
	gocv.CopyMakeBorder(resized, &padded, lb.top, lb.bottom, lb.left, lb.right, gocv.BorderConstant, pad)
	return padded
}

// forward прямой проход сети. Возвращает копию выхода и его размерности.
func (d *YOLODetector) forward(mat gocv.Mat) ([]float32, []int, error) {
	size := image.Pt(d.opts.InputSize, d.opts.InputSize)
	blob := gocv.BlobFromImage(mat, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return nil, nil, fmt.Errorf("%w: empty network output", entity.ErrInference)
	}
	raw, err := out.DataPtrFloat32()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read output: %v", entity.ErrInference, err)
	}

	data := make([]float32, len(raw))
	copy(data, raw)
	return data, out.Size(), nil
}

// suppress подавляет пересекающиеся рамки внутри каждого класса.
func (d *YOLODetector) suppress(cands []candidate) []int {
	keep := make([]int, 0, len(cands))
	for _, idxs := range groupByClass(cands) {
		rects := make([]image.Rectangle, len(idxs))
		scores := make([]float32, len(idxs))
		for j, i := range idxs {
			rects[j] = toRect(cands[i].box)
			scores[j] = cands[i].score
		}
		// порог уверенности уже применён в decodeOutput (score >= conf),
		// NMSBoxes же отбрасывает score <= порога
		for _, k := range gocv.NMSBoxes(rects, scores, 0, d.opts.NMSThreshold) {
			keep = append(keep, idxs[k])
		}
	}
	return keep
}

var classColors = map[entity.CellClass]color.RGBA{
	entity.ClassWBC:       {R: 255, G: 255, A: 255},
	entity.ClassRBC:       {R: 255, A: 255},
	entity.ClassPlatelets: {B: 255, A: 255},
}

// Annotate рисует рамки и метки классов и возвращает JPEG.
func (d *YOLODetector) Annotate(imageData []byte, detections []entity.Detection) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for _, det := range detections {
		rect := toRect(det.Box)
		c := classColors[det.Class]
		gocv.Rectangle(&mat, rect, c, 2)
		gocv.PutText(&mat, string(det.Class), image.Pt(rect.Min.X, rect.Min.Y-4), gocv.FontHersheySimplex, 0.4, c, 1)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close освобождает сеть
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// decodeToMat превращает байты изображения в трёхканальный BGR gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	if err == nil {
		err = fmt.Errorf("unsupported or corrupt image (%d bytes)", len(imageData))
	}
	return gocv.NewMat(), fmt.Errorf("%w: %v", entity.ErrImageDecode, err)
}

var _ port.CellDetector = (*YOLODetector)(nil)
