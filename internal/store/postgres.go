package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/linktrack-go/internal/tracking"
)

// PostgresClickStore is a PostgreSQL implementation of tracking.Repository.
type PostgresClickStore struct {
	pool *pgxpool.Pool
}

// NewPostgresClickStore creates a PostgreSQL-backed click ledger.
func NewPostgresClickStore(pool *pgxpool.Pool) *PostgresClickStore {
	return &PostgresClickStore{pool: pool}
}

const clickColumns = "id, name, email, target_url, clicked_at, user_agent, ip_address, suppress_chat_domain"

func (p *PostgresClickStore) Insert(ctx context.Context, click *tracking.ClickRecord) error {
	query := `
		INSERT INTO link_clicks (` + clickColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.pool.Exec(ctx, query,
		click.ID,
		click.Name,
		click.Email,
		click.TargetURL,
		click.ClickedAt,
		nullableString(click.UserAgent),
		nullableString(click.IPAddress),
		nullableString(click.SuppressChatDomain),
	)
	if err != nil {
		return fmt.Errorf("insert link click: %w", err)
	}

	return nil
}

func (p *PostgresClickStore) Recent(ctx context.Context, limit int) ([]tracking.ClickRecord, error) {
	query := `
		SELECT ` + clickColumns + `
		FROM link_clicks
		ORDER BY clicked_at DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent clicks: %w", err)
	}

	return scanClicks(rows)
}

func (p *PostgresClickStore) ByEmail(ctx context.Context, email string) ([]tracking.ClickRecord, error) {
	query := `
		SELECT ` + clickColumns + `
		FROM link_clicks
		WHERE email = $1
		ORDER BY clicked_at DESC
	`

	rows, err := p.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("query clicks by email: %w", err)
	}

	return scanClicks(rows)
}

func (p *PostgresClickStore) All(ctx context.Context) ([]tracking.ClickRecord, error) {
	query := `
		SELECT ` + clickColumns + `
		FROM link_clicks
		ORDER BY clicked_at DESC
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all clicks: %w", err)
	}

	return scanClicks(rows)
}

func scanClicks(rows pgx.Rows) ([]tracking.ClickRecord, error) {
	defer rows.Close()

	var clicks []tracking.ClickRecord

	for rows.Next() {
		var (
			click                        tracking.ClickRecord
			userAgent, ipAddress, domain *string
		)

		err := rows.Scan(
			&click.ID,
			&click.Name,
			&click.Email,
			&click.TargetURL,
			&click.ClickedAt,
			&userAgent,
			&ipAddress,
			&domain,
		)
		if err != nil {
			return nil, fmt.Errorf("scan link click: %w", err)
		}

		if userAgent != nil {
			click.UserAgent = *userAgent
		}

		if ipAddress != nil {
			click.IPAddress = *ipAddress
		}

		if domain != nil {
			click.SuppressChatDomain = *domain
		}

		clicks = append(clicks, click)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link clicks: %w", err)
	}

	return clicks, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

var _ tracking.Repository = (*PostgresClickStore)(nil)
