package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/matching"

	"github.com/lib/pq"
)

// Store reads marketplace profiles and order history from PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const producerColumns = `id, name, capabilities, specialties, lat, lng, city, rating, review_count,
	availability_percent, current_capacity, max_capacity, price_range, turnaround, email, phone`

const designerColumns = `id, name, lat, lng, rating, activity_level, common_product_types, email, phone`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullableFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func scanProducer(row rowScanner) (matching.Producer, error) {
	var (
		p                               matching.Producer
		lat, lng                        sql.NullFloat64
		city, priceRange, turnaround    sql.NullString
		email, phone                    sql.NullString
		availability, current, capacity sql.NullFloat64
	)
	err := row.Scan(
		&p.ID, &p.Name, pq.Array(&p.Capabilities), pq.Array(&p.Specialties),
		&lat, &lng, &city, &p.Rating, &p.ReviewCount,
		&availability, &current, &capacity,
		&priceRange, &turnaround, &email, &phone,
	)
	if err != nil {
		return p, err
	}

	if lat.Valid && lng.Valid {
		p.Location = &matching.ProducerLocation{Lat: lat.Float64, Lng: lng.Float64, City: city.String}
	}
	p.AvailabilityPercent = nullableFloat(availability)
	p.CurrentCapacity = nullableFloat(current)
	p.MaxCapacity = nullableFloat(capacity)
	p.PriceRange = priceRange.String
	p.Turnaround = turnaround.String
	p.Email = email.String
	p.Phone = phone.String
	return p, nil
}

func scanDesigner(row rowScanner) (matching.Designer, error) {
	var (
		d                      matching.Designer
		lat, lng               sql.NullFloat64
		activity, email, phone sql.NullString
	)
	err := row.Scan(
		&d.ID, &d.Name, &lat, &lng, &d.Rating, &activity,
		pq.Array(&d.CommonProductTypes), &email, &phone,
	)
	if err != nil {
		return d, err
	}

	if lat.Valid && lng.Valid {
		d.Location = &matching.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	d.ActivityLevel = activity.String
	d.Email = email.String
	d.Phone = phone.String
	return d, nil
}

// GetProducer loads one producer without order history.
func (s *Store) GetProducer(ctx context.Context, id string) (*matching.Producer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+producerColumns+` FROM producers WHERE id = $1`, id)
	p, err := scanProducer(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewProfileNotFoundError("Producer", id)
	}
	if err != nil {
		return nil, queryError("get_producer", ctx, err)
	}
	return &p, nil
}

// GetDesigner loads one designer without order history.
func (s *Store) GetDesigner(ctx context.Context, id string) (*matching.Designer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+designerColumns+` FROM designers WHERE id = $1`, id)
	d, err := scanDesigner(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewProfileNotFoundError("Designer", id)
	}
	if err != nil {
		return nil, queryError("get_designer", ctx, err)
	}
	return &d, nil
}

// ListProducers returns active producers, best rated first.
func (s *Store) ListProducers(ctx context.Context, limit int) ([]matching.Producer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+producerColumns+` FROM producers WHERE active = true ORDER BY rating DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, queryError("list_producers", ctx, err)
	}
	defer rows.Close()

	var out []matching.Producer
	for rows.Next() {
		p, err := scanProducer(rows)
		if err != nil {
			return nil, queryError("list_producers", ctx, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_producers", ctx, err)
	}
	return out, nil
}

// ListDesigners returns active designers, most active first.
func (s *Store) ListDesigners(ctx context.Context, limit int) ([]matching.Designer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+designerColumns+` FROM designers WHERE active = true ORDER BY last_order_at DESC NULLS LAST, id LIMIT $1`, limit)
	if err != nil {
		return nil, queryError("list_designers", ctx, err)
	}
	defer rows.Close()

	var out []matching.Designer
	for rows.Next() {
		d, err := scanDesigner(rows)
		if err != nil {
			return nil, queryError("list_designers", ctx, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("list_designers", ctx, err)
	}
	return out, nil
}

// Contact is where a notification goes.
type Contact struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// Recipient types accepted by GetContact.
const (
	RecipientDesigner = "designer"
	RecipientProducer = "producer"
)

func (s *Store) GetContact(ctx context.Context, recipientType, id string) (*Contact, error) {
	switch recipientType {
	case RecipientDesigner:
		d, err := s.GetDesigner(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Contact{ID: d.ID, Name: d.Name, Email: d.Email, Phone: d.Phone}, nil
	case RecipientProducer:
		p, err := s.GetProducer(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Contact{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone}, nil
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown recipient type %q", recipientType))
	}
}

func queryError(queryType string, ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewQueryTimeoutError(queryType)
	}
	return errors.NewQueryExecutionFailedError(queryType, err)
}
