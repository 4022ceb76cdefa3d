package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"licxo/internal/models"
	"licxo/internal/storage"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type shortlistRequest struct {
	UserId string `json:"userId"`
	RoomId string `json:"roomId"`
}

func AddShortlistHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req shortlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "invalid request body")
			return
		}
		defer r.Body.Close()

		if req.UserId == "" || req.RoomId == "" {
			writeError(w, http.StatusBadRequest, categoryValidation, "Both userId and roomId are required")
			return
		}

		roomId, err := strconv.ParseInt(req.RoomId, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "Invalid roomId format")
			return
		}

		entry, err := db.AddShortlist(r.Context(), req.UserId, roomId)
		if errors.Is(err, storage.ErrAlreadyShortlisted) {
			writeError(w, http.StatusConflict, categoryConflict, "Room already shortlisted")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to add shortlist entry")
			writeInternal(w, "Error adding room to shortlist")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"message": "Room added to shortlist successfully",
			"data":    entry,
		})
	})
}

func RemoveShortlistHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		userId := vars[`userId`]

		roomId, err := strconv.ParseInt(vars[`roomId`], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "Invalid roomId format")
			return
		}

		err = db.RemoveShortlist(r.Context(), userId, roomId)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, categoryNotFound, "Shortlist entry not found")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to remove shortlist entry")
			writeInternal(w, "Error removing room from shortlist")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Room removed from shortlist successfully",
		})
	})
}

func ShortlistByUserHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId := mux.Vars(r)[`userId`]

		entries, err := db.ShortlistByUser(r.Context(), userId)
		if err != nil {
			log.Error().Err(err).Str("userId", userId).Msg("Failed to fetch shortlist")
			writeInternal(w, "Error fetching shortlisted rooms")
			return
		}

		if entries == nil {
			entries = []models.ShortlistEntry{}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    entries,
		})
	})
}

func ShortlistCheckHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		userId := vars[`userId`]

		roomId, err := strconv.ParseInt(vars[`roomId`], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "Invalid roomId format")
			return
		}

		shortlisted, err := db.IsShortlisted(r.Context(), userId, roomId)
		if err != nil {
			log.Error().Err(err).Msg("Failed to check shortlist status")
			writeInternal(w, "Error checking shortlist status")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"isShortlisted": shortlisted,
		})
	})
}
