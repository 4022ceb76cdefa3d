package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"licxo/internal/models"
	"licxo/internal/storage"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// demoOTP is the fixed demo code; no SMS provider is wired in.
const demoOTP = `0000`

const tokenTTL = 7 * 24 * time.Hour

// IssueToken signs an HS256 token for the user, valid for seven days.
func IssueToken(secret string, user models.User) (string, error) {
	claims := &models.CustomClaims{
		UserId: user.Id,
		Phone:  user.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func SendOtpHandler(cache storage.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PhoneNumber string `json:"phoneNumber"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" {
			writeError(w, http.StatusBadRequest, categoryValidation, "Phone number is required")
			return
		}
		defer r.Body.Close()

		hash, err := bcrypt.GenerateFromPassword([]byte(demoOTP), bcrypt.DefaultCost)
		if err != nil {
			writeInternal(w, "Error sending OTP")
			return
		}

		if err := cache.PutOTP(r.Context(), req.PhoneNumber, string(hash)); err != nil {
			writeInternal(w, "Error sending OTP")
			return
		}

		log.Info().Str("phone", req.PhoneNumber).Msg("[DEMO] OTP issued; no SMS sent")

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "OTP sent successfully (demo)",
			"sid":     "demo-sid-000000",
		})
	})
}

func VerifyOtpHandler(db storage.Database, cache storage.Cache, secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PhoneNumber string `json:"phoneNumber"`
			Code        string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" || req.Code == "" {
			writeError(w, http.StatusBadRequest, categoryValidation, "Phone number and OTP are required")
			return
		}
		defer r.Body.Close()

		hash, err := cache.GetOTP(r.Context(), req.PhoneNumber)
		if errors.Is(err, storage.ErrOTPNotFound) {
			writeError(w, http.StatusBadRequest, categoryValidation, "Invalid OTP")
			return
		}
		if err != nil {
			writeInternal(w, "Error verifying OTP")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Code)) != nil {
			writeError(w, http.StatusBadRequest, categoryValidation, "Invalid OTP")
			return
		}

		cache.DeleteOTP(r.Context(), req.PhoneNumber)

		user, err := db.GetUserByPhone(r.Context(), req.PhoneNumber)
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"message":    "OTP verified successfully",
				"userExists": false,
			})
			return
		}
		if err != nil {
			writeInternal(w, "Error verifying OTP")
			return
		}

		token, err := IssueToken(secret, user)
		if err != nil {
			writeInternal(w, "Error verifying OTP")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":    "OTP verified successfully",
			"token":      token,
			"userExists": true,
			"user":       user,
		})
	})
}

func RegisterHandler(db storage.Database, secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PhoneNumber string `json:"phoneNumber"`
			Name        string `json:"name"`
			Email       string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" || req.Name == "" || req.Email == "" {
			writeError(w, http.StatusBadRequest, categoryValidation, "Phone number, name and email are required")
			return
		}
		defer r.Body.Close()

		user := models.User{
			Id:          uuid.NewString(),
			PhoneNumber: req.PhoneNumber,
			Name:        req.Name,
			Email:       req.Email,
		}

		created, err := db.CreateUser(r.Context(), user)
		if errors.Is(err, storage.ErrUserExists) {
			writeError(w, http.StatusConflict, categoryConflict, "User already exists. Login using OTP.")
			return
		}
		if errors.Is(err, storage.ErrEmailExists) {
			writeError(w, http.StatusConflict, categoryConflict, "Email already in use. Try logging in.")
			return
		}
		if err != nil {
			writeInternal(w, "Error completing registration")
			return
		}

		token, err := IssueToken(secret, created)
		if err != nil {
			writeInternal(w, "Error completing registration")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "User registered successfully",
			"token":   token,
			"user":    created,
		})
	})
}
