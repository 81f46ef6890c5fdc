package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"CupSentinel/internal/model"
	"CupSentinel/internal/plot"
)

// Detector returns a verdict for one company.
type Detector interface {
	Detect(c model.Company) (*model.DetectionResult, error)
}

// Renderer draws a company chart.
type Renderer interface {
	Render(c model.Company, det *model.DetectionResult) (*plot.Artifact, error)
}

// Series exposes per-company sample counts.
type Series interface {
	Len(c model.Company) (int, error)
	Last(c model.Company) (model.PricePoint, bool, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	detector Detector
	renderer Renderer
	series   Series
	log      zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(det Detector, ren Renderer, series Series, log zerolog.Logger) *Handler {
	return &Handler{
		detector: det,
		renderer: ren,
		series:   series,
		log:      log.With().Str("component", "api").Logger(),
	}
}

type detectRequest struct {
	Company     string `json:"company"`
	IncludePlot bool   `json:"include_plot"`
}

type detectResponse struct {
	Company         model.Company    `json:"company"`
	PatternDetected bool             `json:"pattern_detected"`
	Confidence      float64          `json:"confidence"`
	Reason          string           `json:"reason,omitempty"`
	Points          int              `json:"points"`
	SmoothingWindow int              `json:"smoothing_window"`
	Landmarks       []model.Landmark `json:"landmarks"`
	PlotBase64      string           `json:"plot_base64,omitempty"`
}

// DetectPattern handles POST /detect-pattern
func (h *Handler) DetectPattern(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := model.ParseCompany(req.Company)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.detector.Detect(c)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := detectResponse{
		Company:         res.Company,
		PatternDetected: res.Detected,
		Confidence:      res.Confidence,
		Reason:          res.Reason,
		Points:          res.Points,
		SmoothingWindow: res.SmoothingWindow,
		Landmarks:       res.Landmarks,
	}
	if req.IncludePlot {
		art, err := h.renderer.Render(c, res)
		if err != nil {
			h.fail(w, err)
			return
		}
		resp.PlotBase64 = art.Base64()
	}
	respondJSON(w, http.StatusOK, resp)
}

type companyInfo struct {
	Name      model.Company     `json:"name"`
	Symbol    string            `json:"symbol"`
	Samples   int               `json:"samples"`
	LastPrice *model.PricePoint `json:"last,omitempty"`
}

// ListCompanies handles GET /companies
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	out := make([]companyInfo, 0, len(model.Companies()))
	for _, c := range model.Companies() {
		n, err := h.series.Len(c)
		if err != nil {
			h.fail(w, err)
			return
		}
		info := companyInfo{Name: c, Symbol: c.Symbol(), Samples: n}
		if last, ok, err := h.series.Last(c); err == nil && ok {
			info.LastPrice = &last
		}
		out = append(out, info)
	}
	respondJSON(w, http.StatusOK, out)
}

// Plot handles GET /companies/{company}/plot.png
func (h *Handler) Plot(w http.ResponseWriter, r *http.Request) {
	c, err := model.ParseCompany(mux.Vars(r)["company"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var det *model.DetectionResult
	if annotate, _ := strconv.ParseBool(r.URL.Query().Get("annotate")); annotate {
		det, err = h.detector.Detect(c)
		if err != nil && !errors.Is(err, model.ErrInsufficientData) {
			h.fail(w, err)
			return
		}
	}

	art, err := h.renderer.Render(c, det)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// fail maps domain errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUnknownCompany):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInsufficientData):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
