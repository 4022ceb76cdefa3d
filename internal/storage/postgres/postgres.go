package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"licxo/internal/models"
	"licxo/internal/query"
	"licxo/internal/storage"

	"github.com/lib/pq"
)

const queryTimeout = 5 * time.Second

const listingColumns = `id, name, phone, price, room, pg_type, bed, wifi, furnished, address1, district, state, longitude, latitude, images, status, created_at`

type Storage struct {
	Db *sql.DB
}

// New connects to Postgres and eagerly establishes the schema, the
// earthdistance extensions and the spatial index. Any init failure is
// returned so the process can refuse to start: geo search without the
// index is a configuration error, not a per-request one.
func New(databaseURL string) (*Storage, error) {
	database, err := sql.Open(`postgres`, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := database.Ping(); err != nil {
		return nil, err
	}

	storage := &Storage{Db: database}

	if err := storage.init(); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *Storage) init() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
			room TEXT NOT NULL,
			pg_type TEXT NOT NULL,
			bed TEXT NOT NULL DEFAULT 'none',
			wifi TEXT NOT NULL DEFAULT 'no',
			furnished TEXT NOT NULL DEFAULT 'no',
			address1 TEXT NOT NULL,
			district TEXT NOT NULL,
			state TEXT NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			images JSONB NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'Pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS shortlists (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			room_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT shortlists_user_room_key UNIQUE (user_id, room_id)
		)`,
		`CREATE INDEX IF NOT EXISTS shortlists_user_idx ON shortlists (user_id)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			phone_number TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT users_phone_key UNIQUE (phone_number),
			CONSTRAINT users_email_key UNIQUE (email)
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			rating INT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE EXTENSION IF NOT EXISTS cube`,
		`CREATE EXTENSION IF NOT EXISTS earthdistance`,
		`CREATE INDEX IF NOT EXISTS listings_location_idx ON listings USING gist (ll_to_earth(latitude, longitude))`,
	}

	for _, statement := range statements {
		if _, err := s.Db.Exec(statement); err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
	}

	return nil
}

func (s *Storage) Close() error {
	return s.Db.Close()
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner, withDistance bool) (models.Listing, error) {
	var (
		listing   models.Listing
		longitude float64
		latitude  float64
		rawImages []byte
		distance  float64
	)

	dest := []interface{}{
		&listing.Id, &listing.Name, &listing.Phone, &listing.Price, &listing.Room,
		&listing.PgType, &listing.Bed, &listing.Wifi, &listing.Furnished,
		&listing.Address.Address1, &listing.Address.District, &listing.Address.State,
		&longitude, &latitude, &rawImages, &listing.Status, &listing.CreatedAt,
	}
	if withDistance {
		dest = append(dest, &distance)
	}

	if err := row.Scan(dest...); err != nil {
		return models.Listing{}, err
	}

	listing.Location = models.NewPoint(longitude, latitude)
	if len(rawImages) > 0 {
		if err := json.Unmarshal(rawImages, &listing.Images); err != nil {
			return models.Listing{}, fmt.Errorf("decode images: %w", err)
		}
	}
	if withDistance {
		listing.Distance = &distance
	}

	return listing, nil
}

func (s *Storage) collectListings(rows *sql.Rows, withDistance bool) ([]models.Listing, error) {
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows, withDistance)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}

func (s *Storage) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	images, err := json.Marshal(imagesOrEmpty(listing.Images))
	if err != nil {
		return listing, fmt.Errorf("encode images: %w", err)
	}

	query := `INSERT INTO listings (name, phone, price, room, pg_type, bed, wifi, furnished, address1, district, state, longitude, latitude, images, status)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id, created_at`

	err = s.Db.QueryRowContext(ctx, query,
		listing.Name, listing.Phone, listing.Price, listing.Room, listing.PgType,
		listing.Bed, listing.Wifi, listing.Furnished,
		listing.Address.Address1, listing.Address.District, listing.Address.State,
		listing.Location.Longitude(), listing.Location.Latitude(),
		images, listing.Status,
	).Scan(&listing.Id, &listing.CreatedAt)
	if err != nil {
		return listing, err
	}

	return listing, nil
}

func (s *Storage) ListListings(ctx context.Context) ([]models.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Db.QueryContext(ctx, `SELECT `+listingColumns+` FROM listings`)
	if err != nil {
		return nil, err
	}

	return s.collectListings(rows, false)
}

func (s *Storage) GetListingByID(ctx context.Context, id int64) (models.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)

	listing, err := scanListing(row, false)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, storage.ErrNotFound
	}
	return listing, err
}

func (s *Storage) GetListingsByPhone(ctx context.Context, phone string) ([]models.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Db.QueryContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE phone = $1 ORDER BY id`, phone)
	if err != nil {
		return nil, err
	}

	return s.collectListings(rows, false)
}

// UpdateListingByPhone merges the supplied fields onto the first listing
// sharing the phone. Read-merge-write: a racing update may be overwritten,
// last writer wins.
func (s *Storage) UpdateListingByPhone(ctx context.Context, phone string, update models.ListingUpdate) (models.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE phone = $1 ORDER BY id LIMIT 1`, phone)

	listing, err := scanListing(row, false)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Listing{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}

	applyUpdate(&listing, update)

	query := `UPDATE listings SET name = $1, price = $2, room = $3, pg_type = $4, bed = $5, wifi = $6, furnished = $7, address1 = $8, district = $9, state = $10, status = $11 WHERE id = $12`
	_, err = s.Db.ExecContext(ctx, query,
		listing.Name, listing.Price, listing.Room, listing.PgType,
		listing.Bed, listing.Wifi, listing.Furnished,
		listing.Address.Address1, listing.Address.District, listing.Address.State,
		listing.Status, listing.Id,
	)
	if err != nil {
		return models.Listing{}, err
	}

	return listing, nil
}

func applyUpdate(listing *models.Listing, update models.ListingUpdate) {
	if update.Name != nil {
		listing.Name = *update.Name
	}
	if update.Price != nil {
		listing.Price = *update.Price
	}
	if update.Room != nil {
		listing.Room = *update.Room
	}
	if update.PgType != nil {
		listing.PgType = *update.PgType
	}
	if update.Bed != nil {
		listing.Bed = *update.Bed
	}
	if update.Wifi != nil {
		listing.Wifi = *update.Wifi
	}
	if update.Furnished != nil {
		listing.Furnished = *update.Furnished
	}
	if update.Address1 != nil {
		listing.Address.Address1 = *update.Address1
	}
	if update.District != nil {
		listing.Address.District = *update.District
	}
	if update.State != nil {
		listing.Address.State = *update.State
	}
	if update.Status != nil {
		listing.Status = *update.Status
	}
}

func (s *Storage) DeleteListingByID(ctx context.Context, id int64) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var phone string
	err := s.Db.QueryRowContext(ctx, `DELETE FROM listings WHERE id = $1 RETURNING phone`, id).Scan(&phone)
	if errors.Is(err, sql.ErrNoRows) {
		return ``, storage.ErrNotFound
	}
	return phone, err
}

func (s *Storage) FilterListings(ctx context.Context, filter query.Filter) ([]models.Listing, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args := filter.Where()
	statement := `SELECT ` + listingColumns + ` FROM listings` + where + filter.OrderBy()

	rows, err := s.Db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}

	return s.collectListings(rows, false)
}

// FindNearestListings returns listings within the radius, each annotated
// with its spherical distance from the center in meters, nearest first.
func (s *Storage) FindNearestListings(ctx context.Context, geo query.GeoQuery) ([]models.Listing, error) {
	if geo.Empty() {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	statement := `SELECT ` + listingColumns + `, earth_distance(ll_to_earth(latitude, longitude), ll_to_earth($1, $2)) AS distance
	FROM listings
	WHERE earth_distance(ll_to_earth(latitude, longitude), ll_to_earth($1, $2)) <= $3
	ORDER BY distance ASC, id ASC`

	rows, err := s.Db.QueryContext(ctx, statement, geo.Latitude, geo.Longitude, geo.MaxDistanceMeters())
	if err != nil {
		return nil, err
	}

	return s.collectListings(rows, true)
}

func (s *Storage) AddShortlist(ctx context.Context, userId string, roomId int64) (models.Shortlist, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	entry := models.Shortlist{UserId: userId, RoomId: roomId}

	query := `INSERT INTO shortlists (user_id, room_id) VALUES($1, $2) RETURNING id, created_at`
	err := s.Db.QueryRowContext(ctx, query, userId, roomId).Scan(&entry.Id, &entry.CreatedAt)
	if isUniqueViolation(err) {
		return entry, storage.ErrAlreadyShortlisted
	}
	if err != nil {
		return entry, err
	}

	return entry, nil
}

func (s *Storage) RemoveShortlist(ctx context.Context, userId string, roomId int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.Db.ExecContext(ctx, `DELETE FROM shortlists WHERE user_id = $1 AND room_id = $2`, userId, roomId)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ShortlistByUser returns the user's shortlist newest first, each entry
// resolved against its listing. The join drops entries whose listing has
// been deleted; there is no cascade.
func (s *Storage) ShortlistByUser(ctx context.Context, userId string) ([]models.ShortlistEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	statement := `SELECT s.id, s.user_id, s.room_id, s.created_at, ` + prefixColumns(`l`, listingColumns) + `
	FROM shortlists s
	JOIN listings l ON l.id = s.room_id
	WHERE s.user_id = $1
	ORDER BY s.created_at DESC, s.id DESC`

	rows, err := s.Db.QueryContext(ctx, statement, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ShortlistEntry
	for rows.Next() {
		var (
			entry     models.ShortlistEntry
			longitude float64
			latitude  float64
			rawImages []byte
		)

		err := rows.Scan(
			&entry.Id, &entry.UserId, &entry.RoomId, &entry.CreatedAt,
			&entry.Room.Id, &entry.Room.Name, &entry.Room.Phone, &entry.Room.Price, &entry.Room.Room,
			&entry.Room.PgType, &entry.Room.Bed, &entry.Room.Wifi, &entry.Room.Furnished,
			&entry.Room.Address.Address1, &entry.Room.Address.District, &entry.Room.Address.State,
			&longitude, &latitude, &rawImages, &entry.Room.Status, &entry.Room.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Room.Location = models.NewPoint(longitude, latitude)
		if len(rawImages) > 0 {
			if err := json.Unmarshal(rawImages, &entry.Room.Images); err != nil {
				return nil, fmt.Errorf("decode images: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *Storage) IsShortlisted(ctx context.Context, userId string, roomId int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	err := s.Db.QueryRowContext(ctx, `SELECT COUNT(1) FROM shortlists WHERE user_id = $1 AND room_id = $2`, userId, roomId).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *Storage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `INSERT INTO users (id, phone_number, name, email) VALUES($1, $2, $3, $4) RETURNING created_at`
	err := s.Db.QueryRowContext(ctx, query, user.Id, user.PhoneNumber, user.Name, user.Email).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			if pqErr.Constraint == `users_email_key` {
				return user, storage.ErrEmailExists
			}
			return user, storage.ErrUserExists
		}
		return user, err
	}

	return user, nil
}

func (s *Storage) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	err := s.Db.QueryRowContext(ctx, `SELECT id, phone_number, name, email, created_at FROM users WHERE phone_number = $1`, phone).
		Scan(&user.Id, &user.PhoneNumber, &user.Name, &user.Email, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, storage.ErrNotFound
	}
	return user, err
}

func (s *Storage) CreateFeedback(ctx context.Context, feedback models.Feedback) (models.Feedback, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `INSERT INTO feedback (name, email, rating, message) VALUES($1, $2, $3, $4) RETURNING id, created_at`
	err := s.Db.QueryRowContext(ctx, query, feedback.Name, feedback.Email, feedback.Rating, feedback.Message).
		Scan(&feedback.Id, &feedback.CreatedAt)

	return feedback, err
}

func (s *Storage) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Db.QueryContext(ctx, `SELECT id, name, email, rating, message, created_at FROM feedback ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.Id, &f.Name, &f.Email, &f.Rating, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return feedbacks, nil
}

const uniqueViolationCode = pq.ErrorCode(`23505`)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

func imagesOrEmpty(images []models.Image) []models.Image {
	if images == nil {
		return []models.Image{}
	}
	return images
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, `, `)
	for i, part := range parts {
		parts[i] = alias + `.` + part
	}
	return strings.Join(parts, `, `)
}
