// Package mocks provides testify mocks of the storage interfaces for
// handler and router tests.
package mocks

import (
	"context"

	"licxo/internal/models"
	"licxo/internal/query"

	"github.com/stretchr/testify/mock"
)

type Database struct {
	mock.Mock
}

func (m *Database) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	args := m.Called(ctx, listing)
	return args.Get(0).(models.Listing), args.Error(1)
}

func (m *Database) ListListings(ctx context.Context) ([]models.Listing, error) {
	args := m.Called(ctx)
	return listings(args.Get(0)), args.Error(1)
}

func (m *Database) GetListingByID(ctx context.Context, id int64) (models.Listing, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Listing), args.Error(1)
}

func (m *Database) GetListingsByPhone(ctx context.Context, phone string) ([]models.Listing, error) {
	args := m.Called(ctx, phone)
	return listings(args.Get(0)), args.Error(1)
}

func (m *Database) UpdateListingByPhone(ctx context.Context, phone string, update models.ListingUpdate) (models.Listing, error) {
	args := m.Called(ctx, phone, update)
	return args.Get(0).(models.Listing), args.Error(1)
}

func (m *Database) DeleteListingByID(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *Database) FilterListings(ctx context.Context, filter query.Filter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	return listings(args.Get(0)), args.Error(1)
}

func (m *Database) FindNearestListings(ctx context.Context, geo query.GeoQuery) ([]models.Listing, error) {
	args := m.Called(ctx, geo)
	return listings(args.Get(0)), args.Error(1)
}

func (m *Database) AddShortlist(ctx context.Context, userId string, roomId int64) (models.Shortlist, error) {
	args := m.Called(ctx, userId, roomId)
	return args.Get(0).(models.Shortlist), args.Error(1)
}

func (m *Database) RemoveShortlist(ctx context.Context, userId string, roomId int64) error {
	return m.Called(ctx, userId, roomId).Error(0)
}

func (m *Database) ShortlistByUser(ctx context.Context, userId string) ([]models.ShortlistEntry, error) {
	args := m.Called(ctx, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShortlistEntry), args.Error(1)
}

func (m *Database) IsShortlisted(ctx context.Context, userId string, roomId int64) (bool, error) {
	args := m.Called(ctx, userId, roomId)
	return args.Bool(0), args.Error(1)
}

func (m *Database) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *Database) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *Database) CreateFeedback(ctx context.Context, feedback models.Feedback) (models.Feedback, error) {
	args := m.Called(ctx, feedback)
	return args.Get(0).(models.Feedback), args.Error(1)
}

func (m *Database) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

type Cache struct {
	mock.Mock
}

func (m *Cache) PutListingsByPhone(ctx context.Context, phone string, list []models.Listing) error {
	return m.Called(ctx, phone, list).Error(0)
}

func (m *Cache) GetListingsByPhone(ctx context.Context, phone string) ([]models.Listing, error) {
	args := m.Called(ctx, phone)
	return listings(args.Get(0)), args.Error(1)
}

func (m *Cache) DeleteListingsByPhone(ctx context.Context, phone string) {
	m.Called(ctx, phone)
}

func (m *Cache) PutOTP(ctx context.Context, phone, codeHash string) error {
	return m.Called(ctx, phone, codeHash).Error(0)
}

func (m *Cache) GetOTP(ctx context.Context, phone string) (string, error) {
	args := m.Called(ctx, phone)
	return args.String(0), args.Error(1)
}

func (m *Cache) DeleteOTP(ctx context.Context, phone string) {
	m.Called(ctx, phone)
}

func listings(value interface{}) []models.Listing {
	if value == nil {
		return nil
	}
	return value.([]models.Listing)
}
