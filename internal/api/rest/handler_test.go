package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	app "bloodcell/internal/application"
	"bloodcell/internal/domain/diagnosis"
	"bloodcell/internal/domain/entity"
)

type fakeDetector struct {
	detections []entity.Detection
	err        error
	panics     bool
}

func (f *fakeDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	if f.panics {
		panic("boom")
	}
	return f.detections, f.err
}

func (f *fakeDetector) Annotate(imageData []byte, detections []entity.Detection) ([]byte, error) {
	return imageData, nil
}

func newTestHandler(det *fakeDetector) http.Handler {
	log, _ := test.NewNullLogger()
	svc := app.NewAnalysisService(det, diagnosis.NewEngine(diagnosis.DefaultThresholds()), log)
	return NewHandler(svc, 1<<20, log).Routes()
}

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "smear.jpg")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPredict_MissingImageField(t *testing.T) {
	h := newTestHandler(&fakeDetector{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "file", []byte("img")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"No image provided"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("raw")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"No image provided"}`, rec.Body.String())
}

func TestPredict_NoDetections(t *testing.T) {
	h := newTestHandler(&fakeDetector{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "image", []byte("img")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{
		"WBC": 0, "RBC": 0, "Platelets": 0,
		"sizeDistributions": {"WBC": [], "RBC": [], "Platelets": []},
		"detectedConditions": [
			"Low WBC: Potential immune system issues",
			"Potential Anemia: Low RBC count",
			"Potential Thrombocytopenia: Low platelet count"
		]
	}`, rec.Body.String())
}

func TestPredict_WithDetections(t *testing.T) {
	det := &fakeDetector{detections: []entity.Detection{
		{Class: entity.ClassRBC, Box: entity.BoundingBox{MinX: 10, MinY: 10, MaxX: 30, MaxY: 25}, Confidence: 0.8},
		{Class: entity.ClassPlatelets, Box: entity.BoundingBox{MinX: 0, MinY: 0, MaxX: 2, MaxY: 3}, Confidence: 0.4},
	}}
	h := newTestHandler(det)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "image", []byte("img")))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.EqualValues(t, 0, body["WBC"])
	require.EqualValues(t, 1, body["RBC"])
	require.EqualValues(t, 1, body["Platelets"])

	sizes := body["sizeDistributions"].(map[string]any)
	require.Equal(t, []any{300.0}, sizes["RBC"])
	require.Equal(t, []any{6.0}, sizes["Platelets"])
	require.Equal(t, []any{}, sizes["WBC"])
}

func TestPredict_DecodeFailure(t *testing.T) {
	det := &fakeDetector{err: fmt.Errorf("%w: not a png", entity.ErrImageDecode)}
	h := newTestHandler(det)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "image", []byte("garbage")))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.True(t, strings.HasPrefix(decodeBody(t, rec)["error"].(string), "Invalid image"))
}

func TestPredict_InferenceFailure(t *testing.T) {
	h := newTestHandler(&fakeDetector{err: errors.New("net forward failed")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "image", []byte("img")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Inference failed"}`, rec.Body.String())
}

func TestPredict_PanicRecovered(t *testing.T) {
	h := newTestHandler(&fakeDetector{panics: true})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "image", []byte("img")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&fakeDetector{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predict", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(&fakeDetector{})

	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "https://lab.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "image", []byte("img")))
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewPredictResponse_NilSlices(t *testing.T) {
	resp := NewPredictResponse(&entity.Analysis{Summary: entity.Summary{Counts: entity.ClassCounts{}}})
	require.NotNil(t, resp.DetectedConditions)
	for _, c := range entity.CellClasses {
		require.NotNil(t, resp.SizeDistributions[string(c)])
	}
}
