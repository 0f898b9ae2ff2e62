package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mailroom-simulator/internal/domain"
	"mailroom-simulator/internal/platform/obs"
)

// SQL-backed implementation of the MailSource port.
// The query is portable between SQLite and Postgres.
type MailRepository struct{ DB *sql.DB }

func NewMailRepository(db *sql.DB) *MailRepository {
	return &MailRepository{DB: db}
}

// Return the stored mail schedule ordered by arrival.
func (s *MailRepository) ListMailItems(ctx context.Context) (_ []*domain.MailItem, err error) {
	defer obs.Time(ctx, "mail.repository.ListMailItems")(&err)

	if s.DB == nil {
		return nil, errors.New("mail repository: DB is nil")
	}

	query := `
	SELECT
		item_id,
		arrival_time,
		dest_floor,
		weight,
		fragile,
		priority_level
	FROM mail_items
	ORDER BY arrival_time, item_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list mail items: query mail_items table: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.MailItem, 0, 64)
	for rows.Next() {
		var (
			id                     string
			arrival, floor, weight int
			fragile                bool
			level                  sql.NullInt64
		)
		if err := rows.Scan(&id, &arrival, &floor, &weight, &fragile, &level); err != nil {
			return nil, fmt.Errorf("list mail items: scan row: %w", err)
		}

		if level.Valid {
			items = append(items, domain.NewPriorityMailItem(id, arrival, floor, weight, fragile, int(level.Int64)))
			continue
		}
		items = append(items, domain.NewMailItem(id, arrival, floor, weight, fragile))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mail items: row iteration: %w", err)
	}

	return items, nil
}
