package app

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"bloodcell/internal/domain/diagnosis"
	"bloodcell/internal/domain/entity"
)

type fakeDetector struct {
	detections []entity.Detection
	err        error
	calls      int
}

func (f *fakeDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	f.calls++
	return f.detections, f.err
}

func (f *fakeDetector) Annotate(imageData []byte, detections []entity.Detection) ([]byte, error) {
	return append([]byte("annotated:"), imageData...), nil
}

func newTestService(det *fakeDetector) *AnalysisService {
	log, _ := test.NewNullLogger()
	return NewAnalysisService(det, diagnosis.NewEngine(diagnosis.DefaultThresholds()), log)
}

func TestAnalysisService_NoImage(t *testing.T) {
	det := &fakeDetector{}
	_, err := newTestService(det).Analyze(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrNoImage)
	require.Zero(t, det.calls)
}

func TestAnalysisService_NoDetections(t *testing.T) {
	a, err := newTestService(&fakeDetector{}).Analyze(context.Background(), []byte("img"))
	require.NoError(t, err)
	for _, c := range entity.CellClasses {
		require.Zero(t, a.Summary.Counts[c])
		require.Empty(t, a.Summary.Sizes[c])
	}
	require.Equal(t, []string{diagnosis.ConditionLowWBC, diagnosis.ConditionLowRBC, diagnosis.ConditionLowPlt}, a.Conditions)
}

func TestAnalysisService_CountsFlowIntoRules(t *testing.T) {
	detections := make([]entity.Detection, 0, 12)
	for i := 0; i < 12; i++ {
		detections = append(detections, entity.Detection{
			Class: entity.ClassWBC,
			Box:   entity.BoundingBox{MinX: 10, MinY: 10, MaxX: 30, MaxY: 25},
		})
	}

	svc := NewAnalysisService(&fakeDetector{detections: detections},
		diagnosis.NewEngine(diagnosis.Thresholds{WBCHigh: 11, WBCLow: 4, RBCLow: 0, PlateletLow: 0}),
		logrus.New())

	a, err := svc.Analyze(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Equal(t, 12, a.Summary.Counts[entity.ClassWBC])
	require.Len(t, a.Summary.Sizes[entity.ClassWBC], 12)
	require.Equal(t, 300.0, a.Summary.Sizes[entity.ClassWBC][0])
	require.Equal(t, []string{diagnosis.ConditionHighWBC}, a.Conditions)
}

func TestAnalysisService_ErrorClassification(t *testing.T) {
	decodeErr := &fakeDetector{err: errors.Join(entity.ErrImageDecode, errors.New("bad png"))}
	_, err := newTestService(decodeErr).Analyze(context.Background(), []byte("x"))
	require.ErrorIs(t, err, entity.ErrImageDecode)

	otherErr := &fakeDetector{err: errors.New("cuda exploded")}
	_, err = newTestService(otherErr).Analyze(context.Background(), []byte("x"))
	require.ErrorIs(t, err, entity.ErrInference)
	require.NotErrorIs(t, err, entity.ErrImageDecode)
}

func TestAnalysisService_Annotate(t *testing.T) {
	svc := newTestService(&fakeDetector{})
	out, err := svc.Annotate([]byte("img"), &entity.Analysis{})
	require.NoError(t, err)
	require.Equal(t, []byte("annotated:img"), out)
}
