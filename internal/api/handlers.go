package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/funnel"
	"github.com/sells-group/pipeline-score/internal/seo"
	"github.com/sells-group/pipeline-score/internal/validate"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.breakers != nil {
		states := make(map[string]string)
		for name, st := range s.breakers.States() {
			states[name] = st.String()
		}
		resp["breakers"] = states
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) startQuiz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"quizId": funnel.Start()})
}

func (s *Server) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req funnel.SubmitRequest
	if !s.decode(w, r, validate.Submit, &req) {
		return
	}

	resp, err := s.funnel.Submit(r.Context(), req)
	if err != nil {
		if errors.Is(err, funnel.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, "missing required fields: quizId, email, answers")
			return
		}
		zap.L().Error("api: submit failed", zap.String("quiz_id", req.QuizID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) result(w http.ResponseWriter, r *http.Request) {
	summary, err := s.funnel.Result(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) emailReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if !s.decode(w, r, validate.EmailReport, &req) {
		return
	}

	queued, err := s.funnel.EmailReport(r.Context(), req.Token, req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "queued": queued})
}

func (s *Server) seoKeywords(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Services []string `json:"services"`
		City     string   `json:"city"`
	}
	if !s.decode(w, r, validate.SEOKeywords, &req) {
		return
	}
	keywords := seo.Keywords(req.Services, req.City)
	writeJSON(w, http.StatusOK, map[string]any{
		"city":     seo.CleanCity(req.City),
		"keywords": keywords,
		"total":    len(keywords),
	})
}

func (s *Server) seoRankings(w http.ResponseWriter, r *http.Request) {
	if s.seo == nil {
		writeError(w, http.StatusServiceUnavailable, "seo provider not configured")
		return
	}
	var req struct {
		Keywords []string `json:"keywords"`
		PlaceID  string   `json:"businessPlaceId"`
		City     string   `json:"city"`
		Domain   string   `json:"domain"`
		Services []string `json:"services"`
	}
	if !s.decode(w, r, validate.SEORankings, &req) {
		return
	}

	intel := s.seo.Aggregate(r.Context(), seo.Request{
		Keywords: req.Keywords,
		PlaceID:  req.PlaceID,
		City:     req.City,
		Domain:   req.Domain,
		Services: req.Services,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"rankings":         intel.Rankings,
		"totalKeywords":    len(req.Keywords),
		"totalMissedLeads": intel.TotalMissedLeads,
		"topOpportunity":   intel.TopOpportunity,
		"city":             req.City,
	})
}

func (s *Server) seoVolumes(w http.ResponseWriter, r *http.Request) {
	if s.seo == nil {
		writeError(w, http.StatusServiceUnavailable, "seo provider not configured")
		return
	}
	var req struct {
		Keywords []string `json:"keywords"`
		City     string   `json:"city"`
	}
	if !s.decode(w, r, validate.SEOVolumes, &req) {
		return
	}

	vols, err := s.seo.Volumes(r.Context(), req.Keywords, req.City)
	if err != nil {
		zap.L().Warn("api: volume lookup failed", zap.String("city", req.City), zap.Error(err))
		writeError(w, http.StatusBadGateway, "keyword data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "city": req.City, "volumes": vols})
}

// decode reads, validates and unmarshals the body. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema validate.Schema, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Validate(schema, body); err != nil {
		var ve *validate.Error
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "invalid request",
				"details": ve.Problems,
			})
			return false
		}
		zap.L().Error("api: schema unavailable", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
