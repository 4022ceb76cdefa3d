package storage

import (
	"context"
	"errors"

	"licxo/internal/models"
	"licxo/internal/query"
)

// Sentinel errors the handlers map onto the API error taxonomy.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyShortlisted = errors.New("room already shortlisted")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailExists        = errors.New("email already in use")
	ErrOTPNotFound        = errors.New("otp expired or never issued")
)

type Database interface {
	CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	ListListings(ctx context.Context) ([]models.Listing, error)
	GetListingByID(ctx context.Context, id int64) (models.Listing, error)
	GetListingsByPhone(ctx context.Context, phone string) ([]models.Listing, error)
	UpdateListingByPhone(ctx context.Context, phone string, update models.ListingUpdate) (models.Listing, error)
	DeleteListingByID(ctx context.Context, id int64) (phone string, err error)
	FilterListings(ctx context.Context, filter query.Filter) ([]models.Listing, error)
	FindNearestListings(ctx context.Context, geo query.GeoQuery) ([]models.Listing, error)

	AddShortlist(ctx context.Context, userId string, roomId int64) (models.Shortlist, error)
	RemoveShortlist(ctx context.Context, userId string, roomId int64) error
	ShortlistByUser(ctx context.Context, userId string) ([]models.ShortlistEntry, error)
	IsShortlisted(ctx context.Context, userId string, roomId int64) (bool, error)

	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (models.User, error)

	CreateFeedback(ctx context.Context, feedback models.Feedback) (models.Feedback, error)
	ListFeedback(ctx context.Context) ([]models.Feedback, error)
}

type Cache interface {
	PutListingsByPhone(ctx context.Context, phone string, listings []models.Listing) error
	GetListingsByPhone(ctx context.Context, phone string) ([]models.Listing, error)
	DeleteListingsByPhone(ctx context.Context, phone string)

	PutOTP(ctx context.Context, phone, codeHash string) error
	GetOTP(ctx context.Context, phone string) (string, error)
	DeleteOTP(ctx context.Context, phone string)
}
