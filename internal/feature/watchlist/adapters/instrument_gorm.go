// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"quote_backend/internal/feature/watchlist/domain/entity"
	"quote_backend/internal/feature/watchlist/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// instrumentGorm はInstrumentRepositoryインターフェースのgorm実装です。
type instrumentGorm struct {
	db *gorm.DB
}

var _ usecase.InstrumentRepository = (*instrumentGorm)(nil)

// NewInstrumentRepository は指定されたDB接続でリポジトリを生成します。
func NewInstrumentRepository(db *gorm.DB) *instrumentGorm {
	return &instrumentGorm{db: db}
}

// ListActive はsort_key順にアクティブな銘柄を返します。marketが空なら全市場。
func (r *instrumentGorm) ListActive(ctx context.Context, market string) ([]entity.Instrument, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if market != "" {
		q = q.Where("market = ?", market)
	}
	var out []entity.Instrument
	if err := q.Order("sort_key ASC").Order("code ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *instrumentGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Upsert は銘柄を登録します。既存のコードなら名前・市場・並び順・有効状態を上書きします。
func (r *instrumentGorm) Upsert(ctx context.Context, in *entity.Instrument) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "market", "is_active", "sort_key", "updated_at"}),
	}).Create(in).Error
}

// SetActive はcodeのis_activeを更新し、該当行があったかを返します。
func (r *instrumentGorm) SetActive(ctx context.Context, code string, active bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Instrument{}).
		Where("code = ?", code).
		Update("is_active", active)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
