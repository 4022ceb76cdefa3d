package handlers

import (
	"encoding/json"
	"net/http"

	"licxo/internal/models"
	"licxo/internal/storage"

	"github.com/rs/zerolog/log"
)

func SubmitFeedbackHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Rating  int    `json:"rating"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "invalid request body")
			return
		}
		defer r.Body.Close()

		if req.Name == "" || req.Email == "" || req.Message == "" {
			writeError(w, http.StatusBadRequest, categoryValidation, "name, email and message are required")
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			writeError(w, http.StatusBadRequest, categoryValidation, "rating must be between 1 and 5")
			return
		}

		feedback := models.Feedback{
			Name:    req.Name,
			Email:   req.Email,
			Rating:  req.Rating,
			Message: req.Message,
		}

		if _, err := db.CreateFeedback(r.Context(), feedback); err != nil {
			log.Error().Err(err).Msg("Failed to store feedback")
			writeInternal(w, "Server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Feedback received successfully",
		})
	})
}

func ListFeedbackHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		feedbacks, err := db.ListFeedback(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to list feedback")
			writeInternal(w, "Server error")
			return
		}

		if feedbacks == nil {
			feedbacks = []models.Feedback{}
		}

		writeJSON(w, http.StatusOK, feedbacks)
	})
}
