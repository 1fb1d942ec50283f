package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
)

// MySQLCatalogRepo is a read-only view over the marketplace catalog
// (services + companies). The checkout core never writes here.
type MySQLCatalogRepo struct{ db *sql.DB }

func NewMySQLCatalogRepo(db *sql.DB) *MySQLCatalogRepo { return &MySQLCatalogRepo{db: db} }

func (r *MySQLCatalogRepo) GetServiceWithOwner(ctx context.Context, serviceID string) (*domain.Service, string, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT s.id, s.company_id, s.title, s.base_price_cents, s.packages, c.owner_id
FROM services s
JOIN companies c ON c.id = s.company_id
WHERE s.id = ?`, serviceID)

	var (
		svc      domain.Service
		base     sql.NullInt64
		packages []byte
		owner    sql.NullString
	)
	if err := row.Scan(&svc.ID, &svc.CompanyID, &svc.Title, &base, &packages, &owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrServiceNotFound
		}
		return nil, "", fmt.Errorf("catalog query: %w", err)
	}

	if base.Valid {
		v := base.Int64
		svc.BasePriceCents = &v
	}
	if len(packages) > 0 {
		if err := json.Unmarshal(packages, &svc.Packages); err != nil {
			return nil, "", fmt.Errorf("decode packages for %s: %w", serviceID, err)
		}
	}

	// owner.String stays "" when companies.owner_id is NULL; the
	// materializer treats that as a data-integrity fault.
	return &svc, owner.String, nil
}

var _ usecase.CatalogReader = (*MySQLCatalogRepo)(nil)
