package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoiceflow/invoice-server/internal/common"
	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/money"
)

// ProfileRepository stores the issuer's billing identity and defaults.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) (*entity.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) (*entity.Profile, error)
}

type profileRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewProfileRepository(pool *pgxpool.Pool, logger *slog.Logger) ProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &profileRepository{pool: pool, logger: logger}
}

const profileColumns = `
	id, email, COALESCE(business_name,''), COALESCE(business_address,''),
	default_currency, default_tax_rate::text, created_at, updated_at`

func (r *profileRepository) Create(ctx context.Context, p *entity.Profile) (*entity.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (email, business_name, business_address, default_currency, default_tax_rate)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5::numeric)
		RETURNING `+profileColumns,
		p.Email, p.BusinessName, p.BusinessAddress, p.DefaultCurrency, p.DefaultTaxRate.String(),
	)
	out, err := scanProfile(row)
	if err != nil {
		r.logger.Error("profile create failed", "email", p.Email, "error", err)
		return nil, common.WrapError(err, "create profile")
	}
	r.logger.Info("profile created", "profile_id", out.ID)
	return out, nil
}

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	out, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "get profile")
	}
	return out, nil
}

func (r *profileRepository) Update(ctx context.Context, p *entity.Profile) (*entity.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE profiles SET
			email = $2,
			business_name = NULLIF($3,''),
			business_address = NULLIF($4,''),
			default_currency = $5,
			default_tax_rate = $6::numeric,
			updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		p.ID, p.Email, p.BusinessName, p.BusinessAddress, p.DefaultCurrency, p.DefaultTaxRate.String(),
	)
	out, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("profile update failed", "profile_id", p.ID, "error", err)
		return nil, common.WrapError(err, "update profile")
	}
	r.logger.Info("profile updated", "profile_id", out.ID)
	return out, nil
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var p entity.Profile
	var rate string
	err := row.Scan(
		&p.ID, &p.Email, &p.BusinessName, &p.BusinessAddress,
		&p.DefaultCurrency, &rate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.DefaultTaxRate, err = money.Parse(rate); err != nil {
		return nil, err
	}
	return &p, nil
}
