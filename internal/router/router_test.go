package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"licxo/internal/handlers"
	"licxo/internal/models"
	"licxo/internal/query"
	"licxo/internal/storage"
	"licxo/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = `router-test-secret`

func newTestRouter(db *mocks.Database, cache *mocks.Cache) http.Handler {
	return New(db, cache, nil, testSecret, []string{`*`})
}

func performLogin(t *testing.T, userId string) string {
	t.Helper()

	token, err := handlers.IssueToken(testSecret, models.User{Id: userId, PhoneNumber: "9876543210"})
	require.NoError(t, err)
	return "Bearer " + token
}

func listingForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func validListingFields() map[string]string {
	return map[string]string{
		"name":      "Green Residency",
		"phone":     "9876543210",
		"price":     "500",
		"room":      "1bhk",
		"pgType":    "Boys PG",
		"address1":  "12 MG Road",
		"district":  "Pune",
		"state":     "MH",
		"longitude": "73.85",
		"latitude":  "18.52",
	}
}

func TestCreateListing(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	created := models.Listing{Id: 1, Name: "Green Residency", Phone: "9876543210", Status: models.StatusPending}
	mockDB.On("CreateListing", mock.Anything, mock.MatchedBy(func(l models.Listing) bool {
		return l.Name == "Green Residency" &&
			l.PgType == "boys" &&
			l.Wifi == "no" && l.Furnished == "no" && l.Bed == "none" &&
			l.Status == models.StatusPending &&
			l.Location.Longitude() == 73.85 && l.Location.Latitude() == 18.52
	})).Return(created, nil).Once()
	mockCache.On("DeleteListingsByPhone", mock.Anything, "9876543210").Once()

	body, contentType := listingForm(t, validListingFields())
	req := httptest.NewRequest("POST", "/api/v1/hotels/create", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var response struct {
		Success bool           `json:"success"`
		Data    models.Listing `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, int64(1), response.Data.Id)

	mockDB.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestCreateListingNonNumericCoordinates(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	for _, field := range []string{"latitude", "longitude"} {
		fields := validListingFields()
		fields[field] = "abc"

		body, contentType := listingForm(t, fields)
		req := httptest.NewRequest("POST", "/api/v1/hotels/create", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var response struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "validation_error", response.Error)
		assert.Equal(t, "Longitude and Latitude must be valid numbers.", response.Message)
	}

	// Nothing may be persisted when coordinate validation fails.
	mockDB.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}

func TestCreateListingMissingFields(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	fields := validListingFields()
	delete(fields, "name")
	delete(fields, "price")

	body, contentType := listingForm(t, fields)
	req := httptest.NewRequest("POST", "/api/v1/hotels/create", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockDB.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}

func TestCreateListingUnknownPgType(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	fields := validListingFields()
	fields["pgType"] = "mixed"

	body, contentType := listingForm(t, fields)
	req := httptest.NewRequest("POST", "/api/v1/hotels/create", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockDB.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}

func TestFilterListings(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	expected := []models.Listing{
		{Id: 1, Name: "Green Residency", Price: 500},
		{Id: 2, Name: "Blue Residency", Price: 1000},
	}

	mockDB.On("FilterListings", mock.Anything, mock.MatchedBy(func(f query.Filter) bool {
		return f.Furnished != nil && *f.Furnished == "Furnished" && f.Sort == "lowToHigh"
	})).Return(expected, nil).Once()

	req := httptest.NewRequest("GET", "/api/v1/hotels/filter?furnished=Furnished&sort=lowToHigh", nil)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var listings []models.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listings))
	assert.Equal(t, expected, listings)

	mockDB.AssertExpectations(t)
}

func TestFilterListingsRejectsStructuredInput(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	req := httptest.NewRequest("GET", `/api/v1/hotels/filter?name={"$gt":""}`, nil)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockDB.AssertNotCalled(t, "FilterListings", mock.Anything, mock.Anything)
}

func TestFindNearest(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	near := 120.5
	far := 4300.0
	expected := []models.Listing{
		{Id: 1, Name: "Nearest", Distance: &near},
		{Id: 2, Name: "Farther", Distance: &far},
	}

	mockDB.On("FindNearestListings", mock.Anything, mock.MatchedBy(func(g query.GeoQuery) bool {
		return g.Latitude == 18.52 && g.Longitude == 73.85 && g.MaxDistanceMeters() == 8045.0
	})).Return(expected, nil).Once()

	body, _ := json.Marshal(map[string]float64{"latitude": 18.52, "longitude": 73.85, "maxRadius": 5})
	req := httptest.NewRequest("POST", "/api/v1/hotels/find-nearest", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var listings []models.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listings))
	require.Len(t, listings, 2)
	assert.Equal(t, "Nearest", listings[0].Name)

	mockDB.AssertExpectations(t)
}

func TestFindNearestMissingCoordinates(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	testCases := []map[string]interface{}{
		{"longitude": 73.85, "maxRadius": 5},
		{"latitude": 18.52, "maxRadius": 5},
		{"latitude": 18.52, "longitude": 73.85},
		{"latitude": "not-a-number", "longitude": 73.85, "maxRadius": 5},
	}

	for i, payload := range testCases {
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			body, _ := json.Marshal(payload)
			req := httptest.NewRequest("POST", "/api/v1/hotels/find-nearest", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	mockDB.AssertNotCalled(t, "FindNearestListings", mock.Anything, mock.Anything)
}

func TestGetListingsByPhoneUsesCache(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	cached := []models.Listing{{Id: 1, Name: "Green Residency", Phone: "9876543210"}}
	mockCache.On("GetListingsByPhone", mock.Anything, "9876543210").Return(cached, nil).Once()

	req := httptest.NewRequest("GET", "/api/v1/hotels/myroom/9876543210", nil)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockDB.AssertNotCalled(t, "GetListingsByPhone", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestGetListingsByPhoneCacheMiss(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	fromDB := []models.Listing{{Id: 1, Name: "Green Residency", Phone: "9876543210"}}
	mockCache.On("GetListingsByPhone", mock.Anything, "9876543210").Return(nil, storage.ErrNotFound).Once()
	mockDB.On("GetListingsByPhone", mock.Anything, "9876543210").Return(fromDB, nil).Once()
	mockCache.On("PutListingsByPhone", mock.Anything, "9876543210", fromDB).Return(nil).Once()

	req := httptest.NewRequest("GET", "/api/v1/hotels/myroom/9876543210", nil)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockDB.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestDeleteListing(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	mockDB.On("DeleteListingByID", mock.Anything, int64(5)).Return("9876543210", nil).Once()
	mockCache.On("DeleteListingsByPhone", mock.Anything, "9876543210").Once()

	req := httptest.NewRequest("DELETE", "/api/v1/hotels/delete/5", nil)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockDB.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestDeleteListingNotFound(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	mockDB.On("DeleteListingByID", mock.Anything, int64(999)).Return("", storage.ErrNotFound).Once()

	req := httptest.NewRequest("DELETE", "/api/v1/hotels/delete/999", nil)
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockDB.AssertExpectations(t)
}

func TestShortlistAddRequiresAuthorization(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	body, _ := json.Marshal(map[string]string{"userId": "user-1", "roomId": "7"})
	req := httptest.NewRequest("POST", "/api/v1/shortlist/add", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	mockDB.AssertNotCalled(t, "AddShortlist", mock.Anything, mock.Anything, mock.Anything)
}

func TestShortlistAdd(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	mockDB.On("AddShortlist", mock.Anything, "user-1", int64(7)).
		Return(models.Shortlist{Id: 1, UserId: "user-1", RoomId: 7}, nil).Once()

	body, _ := json.Marshal(map[string]string{"userId": "user-1", "roomId": "7"})
	req := httptest.NewRequest("POST", "/api/v1/shortlist/add", bytes.NewReader(body))
	req.Header.Set("Authorization", performLogin(t, "user-1"))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	mockDB.AssertExpectations(t)
}

func TestShortlistAddDuplicateIsConflict(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	mockDB.On("AddShortlist", mock.Anything, "user-1", int64(7)).
		Return(models.Shortlist{}, storage.ErrAlreadyShortlisted).Once()

	body, _ := json.Marshal(map[string]string{"userId": "user-1", "roomId": "7"})
	req := httptest.NewRequest("POST", "/api/v1/shortlist/add", bytes.NewReader(body))
	req.Header.Set("Authorization", performLogin(t, "user-1"))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)

	var response struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "conflict", response.Error)
	assert.Equal(t, "Room already shortlisted", response.Message)

	mockDB.AssertExpectations(t)
}

func TestShortlistAddInvalidRoomId(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	body, _ := json.Marshal(map[string]string{"userId": "user-1", "roomId": "not-an-id"})
	req := httptest.NewRequest("POST", "/api/v1/shortlist/add", bytes.NewReader(body))
	req.Header.Set("Authorization", performLogin(t, "user-1"))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockDB.AssertNotCalled(t, "AddShortlist", mock.Anything, mock.Anything, mock.Anything)
}

func TestShortlistCheck(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	mockDB.On("IsShortlisted", mock.Anything, "user-1", int64(7)).Return(true, nil).Once()

	req := httptest.NewRequest("GET", "/api/v1/shortlist/check/user-1/7", nil)
	req.Header.Set("Authorization", performLogin(t, "user-1"))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response struct {
		Success       bool `json:"success"`
		IsShortlisted bool `json:"isShortlisted"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.True(t, response.IsShortlisted)

	mockDB.AssertExpectations(t)
}

func TestVerifyOtpFlow(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	hash, err := bcrypt.GenerateFromPassword([]byte("0000"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mockCache.On("GetOTP", mock.Anything, "9876543210").Return(string(hash), nil)
	mockCache.On("DeleteOTP", mock.Anything, "9876543210")
	mockDB.On("GetUserByPhone", mock.Anything, "9876543210").
		Return(models.User{Id: "user-1", PhoneNumber: "9876543210", Name: "Asha"}, nil)

	body, _ := json.Marshal(map[string]string{"phoneNumber": "9876543210", "code": "0000"})
	req := httptest.NewRequest("POST", "/api/v1/user/verify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response struct {
		Token      string `json:"token"`
		UserExists bool   `json:"userExists"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.True(t, response.UserExists)
	assert.NotEmpty(t, response.Token)
}

func TestVerifyOtpWrongCode(t *testing.T) {
	mockDB := new(mocks.Database)
	mockCache := new(mocks.Cache)

	hash, err := bcrypt.GenerateFromPassword([]byte("0000"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mockCache.On("GetOTP", mock.Anything, "9876543210").Return(string(hash), nil)

	body, _ := json.Marshal(map[string]string{"phoneNumber": "9876543210", "code": "1234"})
	req := httptest.NewRequest("POST", "/api/v1/user/verify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	newTestRouter(mockDB, mockCache).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockDB.AssertNotCalled(t, "GetUserByPhone", mock.Anything, mock.Anything)
}
