package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/query"
)

type portsRow struct {
	Month    *string `db:"month"`
	Locality *string `db:"locality"`
	Ports    *int64  `db:"ports"`
}

type deliveredRow struct {
	Address     *string    `db:"address_name"`
	Locality    *string    `db:"locality"`
	Ports       *int64     `db:"ports_count"`
	DeliveredAt *time.Time `db:"delivered_at"`
}

type statusRow struct {
	Address     *string    `db:"address_name"`
	Locality    *string    `db:"locality"`
	Ports       *int64     `db:"ports_count"`
	Status      *string    `db:"smr_status"`
	DeliveredAt *time.Time `db:"delivered_at"`
	Excluded    bool       `db:"excluded"`
}

// Scalar runs a single-value statement. A NULL result is returned as zero.
func (s *Store) Scalar(ctx context.Context, stmt query.Statement) (int64, error) {
	if stmt.Shape() != query.ShapeScalar {
		return 0, fmt.Errorf("statement %s is not scalar", stmt.Name())
	}
	var v *int64
	err := s.exec(ctx, stmt, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, stmt.SQL(), stmt.Args()...).Scan(&v)
	})
	if err != nil {
		return 0, err
	}
	return deref(v), nil
}

// Ports runs a grouped ports statement.
func (s *Store) Ports(ctx context.Context, stmt query.Statement) ([]rollout.PortsRow, error) {
	rows, err := collect[portsRow](ctx, s, stmt)
	if err != nil {
		return nil, err
	}
	out := make([]rollout.PortsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, rollout.PortsRow{
			Month:    derefString(r.Month),
			Locality: derefString(r.Locality),
			Ports:    deref(r.Ports),
		})
	}
	return out, nil
}

// DeliveredAddresses runs the primary address listing.
func (s *Store) DeliveredAddresses(ctx context.Context, stmt query.Statement) ([]rollout.DeliveredAddress, error) {
	rows, err := collect[deliveredRow](ctx, s, stmt)
	if err != nil {
		return nil, err
	}
	out := make([]rollout.DeliveredAddress, 0, len(rows))
	for _, r := range rows {
		a := rollout.DeliveredAddress{
			Address:  derefString(r.Address),
			Locality: derefString(r.Locality),
			Ports:    deref(r.Ports),
		}
		if r.DeliveredAt != nil {
			a.DeliveredAt = *r.DeliveredAt
		}
		out = append(out, a)
	}
	return out, nil
}

// AddressStatuses runs the all-statuses address lookup.
func (s *Store) AddressStatuses(ctx context.Context, stmt query.Statement) ([]rollout.AddressStatus, error) {
	rows, err := collect[statusRow](ctx, s, stmt)
	if err != nil {
		return nil, err
	}
	out := make([]rollout.AddressStatus, 0, len(rows))
	for _, r := range rows {
		out = append(out, rollout.AddressStatus{
			Address:     derefString(r.Address),
			Locality:    derefString(r.Locality),
			Ports:       deref(r.Ports),
			RawStatus:   derefString(r.Status),
			DeliveredAt: r.DeliveredAt,
			Excluded:    r.Excluded,
		})
	}
	return out, nil
}

func collect[T any](ctx context.Context, s *Store, stmt query.Statement) ([]T, error) {
	if stmt.Shape() != query.ShapeRows {
		return nil, fmt.Errorf("statement %s is not a row set", stmt.Name())
	}
	var out []T
	err := s.exec(ctx, stmt, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, stmt.SQL(), stmt.Args()...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
