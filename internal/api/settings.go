package api

import (
	"net/http"

	"daily-tasks/internal/model"
)

type profileRequest struct {
	Timezone            *string `json:"timezone"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r).Settings)
}

// handleUpdateSettings replaces the settings; omitted fields take defaults.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := decode(r, &settings); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.svc.Users.UpdateSettings(r.Context(), userFrom(r).ID, settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Settings)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Timezone != nil {
		if err := s.svc.Users.SetTimezone(r.Context(), user.ID, *req.Timezone); err != nil {
			writeError(w, err)
			return
		}
		user.Timezone = *req.Timezone
	}
	if req.OnboardingCompleted != nil && *req.OnboardingCompleted {
		if err := s.svc.Users.CompleteOnboarding(r.Context(), user.ID); err != nil {
			writeError(w, err)
			return
		}
		user.OnboardingCompleted = true
	}
	writeJSON(w, http.StatusOK, user)
}
