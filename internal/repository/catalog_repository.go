package repository

import (
	"context"
	"errors"
	"fmt"

	"checkout-engine/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// GetPhysicalItemsByIDs retrieves multiple physical items by their IDs.
func (r *catalogRepository) GetPhysicalItemsByIDs(ctx context.Context, ids []string) ([]model.PhysicalItem, error) {
	if len(ids) == 0 {
		return []model.PhysicalItem{}, nil
	}

	query := `
		SELECT id, name, category, unit,
			price::text, price_cash::text, price_other::text, legacy_price::text,
			images, sede, location_text
		FROM physical_items
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query physical items by IDs")
		return nil, fmt.Errorf("failed to query physical items by IDs: %w", err)
	}
	defer rows.Close()

	var items []model.PhysicalItem
	for rows.Next() {
		item, err := scanPhysicalItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan physical item row")
			return nil, fmt.Errorf("failed to scan physical item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating physical item rows")
		return nil, fmt.Errorf("error iterating physical items: %w", err)
	}

	return items, nil
}

// GetDigitalCourseByID retrieves a single course by its ID.
func (r *catalogRepository) GetDigitalCourseByID(ctx context.Context, id string) (*model.DigitalCourse, error) {
	query := `
		SELECT id, title
		FROM digital_courses
		WHERE id = $1
	`

	var c model.DigitalCourse
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("course_id", id).Msg("course not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("course_id", id).Msg("failed to query course")
		return nil, fmt.Errorf("failed to query course: %w", err)
	}

	return &c, nil
}

func scanPhysicalItem(row pgx.Row) (model.PhysicalItem, error) {
	var (
		item                                 model.PhysicalItem
		price, priceCash, priceOther, legacy *string
	)

	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Category,
		&item.Unit,
		&price,
		&priceCash,
		&priceOther,
		&legacy,
		&item.Images,
		&item.Sede,
		&item.LocationText,
	); err != nil {
		return model.PhysicalItem{}, err
	}

	var err error
	if item.Price, err = parseNullableDecimal(price); err != nil {
		return model.PhysicalItem{}, err
	}
	if item.PriceCash, err = parseNullableDecimal(priceCash); err != nil {
		return model.PhysicalItem{}, err
	}
	if item.PriceOther, err = parseNullableDecimal(priceOther); err != nil {
		return model.PhysicalItem{}, err
	}
	if item.LegacyPrice, err = parseNullableDecimal(legacy); err != nil {
		return model.PhysicalItem{}, err
	}

	return item, nil
}
