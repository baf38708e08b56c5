//go:build gocv
// +build gocv

package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"bloodcell/internal/domain/entity"
)

func TestDecodeToMat_Garbage(t *testing.T) {
	mat, err := decodeToMat([]byte("definitely not an image"))
	defer mat.Close()
	require.ErrorIs(t, err, entity.ErrImageDecode)
}

func TestSuppress_KeepsScoreAtConfidence(t *testing.T) {
	d := &YOLODetector{opts: DefaultOptions()}

	cands := []candidate{
		{classID: 1, score: 0.25, box: entity.BoundingBox{MinX: 10, MinY: 10, MaxX: 40, MaxY: 40}},
	}
	require.Equal(t, []int{0}, d.suppress(cands))
}

func TestSuppress_IoUThreshold(t *testing.T) {
	d := &YOLODetector{opts: DefaultOptions()}

	// IoU ≈ 0.54: ниже порога 0.7, обе рамки остаются
	cands := []candidate{
		{classID: 1, score: 0.9, box: entity.BoundingBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}},
		{classID: 1, score: 0.8, box: entity.BoundingBox{MinX: 0, MinY: 30, MaxX: 100, MaxY: 130}},
		// почти совпадающая рамка подавляется
		{classID: 1, score: 0.7, box: entity.BoundingBox{MinX: 1, MinY: 1, MaxX: 100, MaxY: 100}},
		// другой класс не конкурирует с RBC
		{classID: 0, score: 0.6, box: entity.BoundingBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}},
	}
	require.ElementsMatch(t, []int{0, 1, 3}, d.suppress(cands))
}

func TestApplyLetterbox(t *testing.T) {
	src := gocv.NewMatWithSize(960, 1280, gocv.MatTypeCV8UC3)
	defer src.Close()

	lb := newLetterbox(src.Cols(), src.Rows(), 640)
	out := applyLetterbox(src, lb)
	defer out.Close()

	require.Equal(t, 640, out.Rows())
	require.Equal(t, 640, out.Cols())

	// верхнее поле залито серым
	v := out.GetVecbAt(0, 0)
	require.Equal(t, uint8(letterboxValue), v[0])
}
