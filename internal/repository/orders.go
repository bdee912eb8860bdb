package repository

import (
	"context"
	"database/sql"
	"time"

	"printmatch-workers/internal/common/errors"
	"printmatch-workers/internal/matching"
)

const orderColumns = `id, producer_id, designer_id, status, rating, product_type, created_at`

func scanOrder(row rowScanner) (matching.Order, error) {
	var (
		o           matching.Order
		producerID  sql.NullString
		designerID  sql.NullString
		rating      sql.NullFloat64
		productType sql.NullString
	)
	if err := row.Scan(&o.ID, &producerID, &designerID, &o.Status, &rating, &productType, &o.CreatedAt); err != nil {
		return o, err
	}
	o.ProducerID = producerID.String
	o.DesignerID = designerID.String
	o.Rating = rating.Float64
	o.ProductType = productType.String
	return o, nil
}

func (s *Store) queryOrders(ctx context.Context, queryType, query string, args ...interface{}) ([]matching.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, orderError(queryType, ctx, err)
	}
	defer rows.Close()

	orders := []matching.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, orderError(queryType, ctx, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, orderError(queryType, ctx, err)
	}
	return orders, nil
}

// OrdersSince returns every order created at or after since, newest first.
func (s *Store) OrdersSince(ctx context.Context, since time.Time) ([]matching.Order, error) {
	return s.queryOrders(ctx, "orders_since",
		`SELECT `+orderColumns+` FROM orders WHERE created_at >= $1 ORDER BY created_at DESC`, since.UTC())
}

// DesignerOrders returns a designer's order history, newest first.
func (s *Store) DesignerOrders(ctx context.Context, designerID string) ([]matching.Order, error) {
	return s.queryOrders(ctx, "designer_orders",
		`SELECT `+orderColumns+` FROM orders WHERE designer_id = $1 ORDER BY created_at DESC`, designerID)
}

// ProducerOrders returns a producer's order history, newest first.
func (s *Store) ProducerOrders(ctx context.Context, producerID string) ([]matching.Order, error) {
	return s.queryOrders(ctx, "producer_orders",
		`SELECT `+orderColumns+` FROM orders WHERE producer_id = $1 ORDER BY created_at DESC`, producerID)
}

func orderError(queryType string, ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewQueryTimeoutError(queryType)
	}
	return errors.NewOrderHistoryFailedError(err).WithMetadata("queryType", queryType)
}
