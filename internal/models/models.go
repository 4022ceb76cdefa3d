package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type AuthorizationToken struct {
	Token string `json:"token"`
}

type CustomClaims struct {
	UserId string
	Phone  string
	jwt.RegisteredClaims
}

// Listing statuses.
const (
	StatusPending    = "Pending"
	StatusSuccessful = "Successful"
)

type Address struct {
	Address1 string `json:"address1"`
	District string `json:"district"`
	State    string `json:"state"`
}

type Image struct {
	PublicId  string `json:"public_id"`
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
}

// Location is a GeoJSON point, coordinates ordered [longitude, latitude].
type Location struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewPoint(longitude, latitude float64) Location {
	return Location{Type: "Point", Coordinates: [2]float64{longitude, latitude}}
}

func (l Location) Longitude() float64 { return l.Coordinates[0] }
func (l Location) Latitude() float64  { return l.Coordinates[1] }

type Listing struct {
	Id        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Price     float64   `json:"price"`
	Room      string    `json:"room"`
	PgType    string    `json:"pgType"`
	Bed       string    `json:"bed"`
	Wifi      string    `json:"wifi"`
	Furnished string    `json:"furnished"`
	Address   Address   `json:"address"`
	Location  Location  `json:"location"`
	Images    []Image   `json:"images"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Distance in meters from the search center, set only by the
	// find-nearest query.
	Distance *float64 `json:"distance,omitempty"`
}

// ListingUpdate carries the fields an update-by-phone request may rewrite.
// Nil means "leave unchanged".
type ListingUpdate struct {
	Name      *string  `json:"name"`
	Price     *float64 `json:"price"`
	Room      *string  `json:"room"`
	PgType    *string  `json:"pgType"`
	Bed       *string  `json:"bed"`
	Wifi      *string  `json:"wifi"`
	Furnished *string  `json:"furnished"`
	Address1  *string  `json:"address1"`
	District  *string  `json:"district"`
	State     *string  `json:"state"`
	Status    *string  `json:"status"`
}

type Shortlist struct {
	Id        int64     `json:"id"`
	UserId    string    `json:"userId"`
	RoomId    int64     `json:"roomId"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortlistEntry is a shortlist row resolved against the listing it
// references. Rows whose listing has been deleted are skipped by readers.
type ShortlistEntry struct {
	Shortlist
	Room Listing `json:"room"`
}

type User struct {
	Id          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Feedback struct {
	Id        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
