package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Neruaka/jana-distribution/internal/model"
)

// SettingRepo provides data access to the settings table.  Values are
// stored as JSONB and decoded into interface{} here; typed accessors
// live in the settings service.
type SettingRepo struct{ DB *sql.DB }

func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{DB: db} }

func scanSetting(row rowScanner) (model.Setting, error) {
	var s model.Setting
	var raw []byte
	err := row.Scan(&s.ID, &s.Key, &s.Category, &raw, &s.ValueType, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(raw, &s.Value); err != nil {
		return s, err
	}
	return s, nil
}

// Get fetches one setting by key.
func (r *SettingRepo) Get(ctx context.Context, key string) (model.Setting, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, key, category, value, value_type, updated_at
		 FROM settings WHERE key = $1`, key)
	return scanSetting(row)
}

// GetAll returns every setting, optionally restricted to one category.
func (r *SettingRepo) GetAll(ctx context.Context, category string) ([]model.Setting, error) {
	b := &Builder{}
	if category != "" {
		b.Where("category = ?", category)
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, key, category, value, value_type, updated_at
		 FROM settings `+b.WhereSQL()+` ORDER BY category, key`, b.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Setting, 0)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Upsert creates or replaces a setting by key.
func (r *SettingRepo) Upsert(ctx context.Context, s *model.Setting) error {
	raw, err := json.Marshal(s.Value)
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO settings (key, category, value, value_type)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET
		     category = EXCLUDED.category,
		     value = EXCLUDED.value,
		     value_type = EXCLUDED.value_type,
		     updated_at = NOW()
		 RETURNING id, updated_at`,
		s.Key, s.Category, raw, s.ValueType,
	).Scan(&s.ID, &s.UpdatedAt)
}

// Delete removes a setting by key.
func (r *SettingRepo) Delete(ctx context.Context, key string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return err
	}
	return requireRow(res)
}
