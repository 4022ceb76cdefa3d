package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"licxo/internal/models"
	"licxo/internal/normalize"
	"licxo/internal/query"
	"licxo/internal/storage"
	"licxo/internal/upload"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const maxUploadMemory = 32 << 20

const msgInvalidCoordinates = "Longitude and Latitude must be valid numbers."

// CreateListingHandler accepts a multipart form with listing fields and up
// to a handful of image files. Validation happens before any store mutation;
// image uploads tolerate per-file failure.
func CreateListingHandler(db storage.Database, cache storage.Cache, up upload.Uploader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "expected multipart form data")
			return
		}

		var missing []string
		need := func(field string) string {
			value := strings.TrimSpace(r.FormValue(field))
			if value == "" {
				missing = append(missing, field)
			}
			return value
		}

		name := need("name")
		phone := need("phone")
		rawPrice := need("price")
		room := need("room")
		rawPgType := need("pgType")
		address1 := need("address1")
		district := need("district")
		state := need("state")

		if len(missing) > 0 {
			writeError(w, http.StatusBadRequest, categoryValidation,
				fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
			return
		}

		pgType, err := normalize.PgType(rawPgType)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, err.Error())
			return
		}

		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			writeError(w, http.StatusBadRequest, categoryValidation, "price must be a non-negative number")
			return
		}

		longitude, lngErr := strconv.ParseFloat(r.FormValue("longitude"), 64)
		latitude, latErr := strconv.ParseFloat(r.FormValue("latitude"), 64)
		if lngErr != nil || latErr != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, msgInvalidCoordinates)
			return
		}
		if err := validateCoordinates(latitude, longitude); err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, err.Error())
			return
		}

		var files = r.MultipartForm.File["images"]
		images := upload.UploadAll(r.Context(), up, files)
		if len(images) < len(files) {
			log.Warn().Int("requested", len(files)).Int("uploaded", len(images)).
				Msg("Some image uploads failed; creating listing with the rest")
		}

		listing := models.Listing{
			Name:      name,
			Phone:     phone,
			Price:     price,
			Room:      room,
			PgType:    pgType,
			Bed:       normalize.Bed(r.FormValue("bed")),
			Wifi:      normalize.Wifi(r.FormValue("wifi")),
			Furnished: normalize.Furnished(r.FormValue("furnished")),
			Address:   models.Address{Address1: address1, District: district, State: state},
			Location:  models.NewPoint(longitude, latitude),
			Images:    images,
			Status:    models.StatusPending,
		}

		created, err := db.CreateListing(r.Context(), listing)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create listing")
			writeInternal(w, "Unable to create listing.")
			return
		}

		cache.DeleteListingsByPhone(r.Context(), created.Phone)

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"msg":     "Listing created successfully",
			"data":    created,
		})
	})
}

func GetAllListingsHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listings, err := db.ListListings(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to list listings")
			writeInternal(w, "Unable to fetch listings.")
			return
		}

		writeJSON(w, http.StatusOK, listingsOrEmpty(listings))
	})
}

func GetListingByIDHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)[`id`], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "invalid listing id")
			return
		}

		listing, err := db.GetListingByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, categoryNotFound, "Listing not found")
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("id", id).Msg("Failed to get listing")
			writeInternal(w, "Unable to fetch listing.")
			return
		}

		writeJSON(w, http.StatusOK, listing)
	})
}

// GetListingsByPhoneHandler serves the "my rooms" view. Phone is not a
// unique key; all matches are returned. Results are cached per phone.
func GetListingsByPhoneHandler(db storage.Database, cache storage.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		phone := mux.Vars(r)[`phone`]

		if cached, err := cache.GetListingsByPhone(r.Context(), phone); err == nil {
			writeJSON(w, http.StatusOK, listingsOrEmpty(cached))
			return
		}

		listings, err := db.GetListingsByPhone(r.Context(), phone)
		if err != nil {
			log.Error().Err(err).Str("phone", phone).Msg("Failed to get listings by phone")
			writeInternal(w, "Unable to fetch listings.")
			return
		}

		if err := cache.PutListingsByPhone(r.Context(), phone, listings); err != nil {
			log.Warn().Err(err).Msg("Failed to cache listings by phone")
		}

		writeJSON(w, http.StatusOK, listingsOrEmpty(listings))
	})
}

func UpdateListingByPhoneHandler(db storage.Database, cache storage.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		phone := mux.Vars(r)[`phone`]

		var update models.ListingUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "invalid update payload")
			return
		}
		defer r.Body.Close()

		if err := normalizeUpdate(&update); err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, err.Error())
			return
		}

		updated, err := db.UpdateListingByPhone(r.Context(), phone, update)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, categoryNotFound, "Listing not found")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("phone", phone).Msg("Failed to update listing")
			writeInternal(w, "Unable to update listing.")
			return
		}

		cache.DeleteListingsByPhone(r.Context(), phone)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Listing updated successfully.",
			"data":    updated,
		})
	})
}

func normalizeUpdate(update *models.ListingUpdate) error {
	if update.Wifi != nil {
		v := normalize.Wifi(*update.Wifi)
		update.Wifi = &v
	}
	if update.Furnished != nil {
		v := normalize.Furnished(*update.Furnished)
		update.Furnished = &v
	}
	if update.Bed != nil {
		v := normalize.Bed(*update.Bed)
		update.Bed = &v
	}
	if update.PgType != nil {
		v, err := normalize.PgType(*update.PgType)
		if err != nil {
			return err
		}
		update.PgType = &v
	}
	if update.Price != nil && (*update.Price < 0 || math.IsNaN(*update.Price) || math.IsInf(*update.Price, 0)) {
		return errors.New("price must be a non-negative number")
	}
	if update.Status != nil && *update.Status != models.StatusPending && *update.Status != models.StatusSuccessful {
		return fmt.Errorf("status must be %q or %q", models.StatusPending, models.StatusSuccessful)
	}
	return nil
}

func DeleteListingHandler(db storage.Database, cache storage.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)[`id`], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "invalid listing id")
			return
		}

		phone, err := db.DeleteListingByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, categoryNotFound, "Listing not found")
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("id", id).Msg("Failed to delete listing")
			writeInternal(w, "Unable to delete listing.")
			return
		}

		cache.DeleteListingsByPhone(r.Context(), phone)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Listing deleted successfully.",
		})
	})
}

func FilterListingsHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter, err := query.ParseFilter(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, err.Error())
			return
		}

		listings, err := db.FilterListings(r.Context(), filter)
		if err != nil {
			log.Error().Err(err).Msg("Failed to filter listings")
			writeInternal(w, "Unable to filter listings.")
			return
		}

		writeJSON(w, http.StatusOK, listingsOrEmpty(listings))
	})
}

type findNearestRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	MaxRadius *float64 `json:"maxRadius"`
}

// FindNearestHandler returns listings within maxRadius miles of the center,
// nearest first, each annotated with its distance in meters.
func FindNearestHandler(db storage.Database) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req findNearestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "invalid request body")
			return
		}
		defer r.Body.Close()

		if req.Latitude == nil || req.Longitude == nil || req.MaxRadius == nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "latitude, longitude and maxRadius are required")
			return
		}

		geo, err := query.NewGeoQuery(*req.Latitude, *req.Longitude, *req.MaxRadius)
		if err != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, err.Error())
			return
		}

		listings, err := db.FindNearestListings(r.Context(), geo)
		if err != nil {
			log.Error().Err(err).Msg("Failed to find nearest listings")
			writeInternal(w, "Unable to search nearby listings.")
			return
		}

		writeJSON(w, http.StatusOK, listingsOrEmpty(listings))
	})
}

func validateCoordinates(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) || math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return errors.New(msgInvalidCoordinates)
	}
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", longitude)
	}
	return nil
}

func listingsOrEmpty(listings []models.Listing) []models.Listing {
	if listings == nil {
		return []models.Listing{}
	}
	return listings
}
