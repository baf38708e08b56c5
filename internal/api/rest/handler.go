package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	app "bloodcell/internal/application"
	"bloodcell/internal/domain/entity"
)

const (
	msgNoImage         = "No image provided"
	msgInvalidImage    = "Invalid image"
	msgInferenceFailed = "Inference failed"
	msgTooLarge        = "Image too large"
	msgMethod          = "Method not allowed"
)

// PredictResponse тело успешного ответа POST /predict
type PredictResponse struct {
	WBC                int                  `json:"WBC"`
	RBC                int                  `json:"RBC"`
	Platelets          int                  `json:"Platelets"`
	SizeDistributions  map[string][]float64 `json:"sizeDistributions"`
	DetectedConditions []string             `json:"detectedConditions"`
}

// NewPredictResponse переводит результат анализа в формат ответа.
func NewPredictResponse(a *entity.Analysis) PredictResponse {
	sizes := make(map[string][]float64, len(entity.CellClasses))
	for _, c := range entity.CellClasses {
		list := a.Summary.Sizes[c]
		if list == nil {
			list = []float64{}
		}
		sizes[string(c)] = list
	}

	conditions := a.Conditions
	if conditions == nil {
		conditions = []string{}
	}

	return PredictResponse{
		WBC:                a.Summary.Counts[entity.ClassWBC],
		RBC:                a.Summary.Counts[entity.ClassRBC],
		Platelets:          a.Summary.Counts[entity.ClassPlatelets],
		SizeDistributions:  sizes,
		DetectedConditions: conditions,
	}
}

type Handler struct {
	analysis  *app.AnalysisService
	maxUpload int64
	log       logrus.FieldLogger
}

func NewHandler(analysis *app.AnalysisService, maxUpload int64, log logrus.FieldLogger) *Handler {
	return &Handler{
		analysis:  analysis,
		maxUpload: maxUpload,
		log:       log,
	}
}

// Routes единственный маршрут сервиса с CORS, логированием и восстановлением после паники
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", h.Predict)

	return corsMiddleware(requestLogger(h.log, recoverer(h.log, mux)))
}

// Predict обрабатывает POST /predict с полем формы image
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, msgMethod, http.StatusMethodNotAllowed)
		return
	}

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, msgTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, msgNoImage, http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read image", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysis.Analyze(r.Context(), imageData)
	switch {
	case errors.Is(err, entity.ErrNoImage):
		respondError(w, msgNoImage, http.StatusBadRequest)
		return
	case errors.Is(err, entity.ErrImageDecode):
		respondError(w, msgInvalidImage+": "+err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.log.WithError(err).Error("inference failed")
		respondError(w, msgInferenceFailed, http.StatusInternalServerError)
		return
	}

	respondJSON(w, NewPredictResponse(analysis), http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
