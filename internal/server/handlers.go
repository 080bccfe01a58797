package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/claude/gymchat/internal/coach"
	"github.com/claude/gymchat/internal/models"
	"github.com/claude/gymchat/internal/speech"
)

type meResponse struct {
	UserInfo
	IsCoach bool `json:"is_coach"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info := userInfoFromContext(r)
	resp := meResponse{UserInfo: info}
	if s.users != nil {
		if u, err := s.users.GetUser(r.Context(), info.Login); err == nil {
			resp.IsCoach = u.IsCoach
			if resp.DisplayName == "" {
				resp.DisplayName = u.DisplayName
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type interpretRequest struct {
	Text string `json:"text"`
	// Student, when set, makes a coach log for one of their students.
	Student string `json:"student,omitempty"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	uid := userIDFromContext(r)
	if req.Student != "" {
		acting, err := s.coach.ActingUser(r.Context(), uid, req.Student)
		if err != nil {
			s.writeCoachError(w, err)
			return
		}
		uid = acting
	}

	writeJSON(w, http.StatusOK, s.interp.Interpret(r.Context(), uid, req.Text))
}

type transcribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	Format      string `json:"format"`
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "speech recognition is not configured"})
		return
	}

	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.AudioBase64 == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio_base64 is required"})
		return
	}
	if req.Format == "" {
		req.Format = "mp3"
	}

	text, err := s.speech.Transcribe(r.Context(), req.AudioBase64, req.Format)
	var se *speech.Error
	switch {
	case errors.As(err, &se):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": se.Message, "code": se.Code})
		return
	case err != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// periodParam reads ?period=, defaulting to today.
func periodParam(r *http.Request) (models.Period, bool) {
	p := r.URL.Query().Get("period")
	if p == "" {
		return models.PeriodToday, true
	}
	return models.ParsePeriod(p)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be today, week, month or quarter"})
		return
	}

	records, err := s.interp.Records(r.Context(), userIDFromContext(r), period)
	if err != nil {
		s.log.Error("query records", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, ok := periodParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be today, week, month or quarter"})
		return
	}

	summary, err := s.interp.Summary(r.Context(), userIDFromContext(r), period)
	if err != nil {
		s.log.Error("summarize", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCoachMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.coach.SetMode(r.Context(), userIDFromContext(r), req.Enabled); err != nil {
		s.writeCoachError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_coach": req.Enabled})
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.coach.Students(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeCoachError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleAuthorizeStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Student string `json:"student"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	req.Student = strings.TrimSpace(req.Student)
	created, err := s.coach.AuthorizeStudent(r.Context(), userIDFromContext(r), req.Student)
	if err != nil {
		s.writeCoachError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"student": req.Student, "created": created})
}

func (s *Server) writeCoachError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coach.ErrNotCoach), errors.Is(err, coach.ErrNotAuthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, coach.ErrSelf):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, coach.ErrUnknownStudent):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.log.Error("coach request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
