package repository

import (
	"context"
	"encoding/json"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/config"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/pgconv"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"
)

const bundleDiscountKey = "bundle_discount"

// SystemConfigRepository reads tenant-level settings from the system_configs
// key/value table, falling back to the environment defaults when no row
// exists.
type SystemConfigRepository struct {
	db       DB
	fallback config.BundleConfig
}

func NewSystemConfigRepository(db DB, fallback config.BundleConfig) *SystemConfigRepository {
	return &SystemConfigRepository{db: db, fallback: fallback}
}

type bundleDiscountValue struct {
	Enabled      bool  `json:"enabled"`
	AmountCents  int64 `json:"amount_cents"`
	ValidityDays int   `json:"validity_days"`
}

func (r *SystemConfigRepository) BundleDiscount(ctx context.Context) (commands.BundleDiscountConfig, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT value FROM system_configs WHERE key = $1`, bundleDiscountKey).Scan(&raw)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return commands.BundleDiscountConfig{
				Enabled:      r.fallback.Enabled,
				AmountCents:  r.fallback.AmountCents,
				ValidityDays: r.fallback.ValidityDays,
			}, nil
		}
		return commands.BundleDiscountConfig{}, infra.WrapRepoErr("failed to read bundle discount config", err)
	}

	var v bundleDiscountValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return commands.BundleDiscountConfig{}, infra.WrapRepoErr("malformed bundle discount config", err)
	}
	return commands.BundleDiscountConfig{
		Enabled:      v.Enabled,
		AmountCents:  v.AmountCents,
		ValidityDays: v.ValidityDays,
	}, nil
}
