package adapters

import (
	"context"
	"fmt"
	"time"

	"quote_backend/internal/feature/candlesticks/domain/entity"
	"quote_backend/internal/feature/candlesticks/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type candlestickGorm struct {
	db *gorm.DB
}

var _ usecase.CandlestickRepository = (*candlestickGorm)(nil)

// NewCandlestickRepository returns a gorm-backed store usable with mysql, postgres or sqlite.
func NewCandlestickRepository(db *gorm.DB) *candlestickGorm {
	return &candlestickGorm{db: db}
}

// CandlestickModel is one stored bar. Decimals are kept as strings so no driver rounds them.
type CandlestickModel struct {
	ID         uint      `gorm:"primaryKey"`
	Symbol     string    `gorm:"size:32;not null;uniqueIndex:candlestick_key,priority:1"`
	Period     int32     `gorm:"not null;uniqueIndex:candlestick_key,priority:2"`
	AdjustType int32     `gorm:"not null;default:0;uniqueIndex:candlestick_key,priority:3"`
	BarTime    time.Time `gorm:"not null;uniqueIndex:candlestick_key,priority:4"`

	Open         string `gorm:"size:40;not null"`
	High         string `gorm:"size:40;not null"`
	Low          string `gorm:"size:40;not null"`
	Close        string `gorm:"size:40;not null"`
	Volume       int64  `gorm:"not null;default:0"`
	Turnover     string `gorm:"size:40;not null;default:'0'"`
	TradeSession int32  `gorm:"not null;default:0"`
}

func (CandlestickModel) TableName() string {
	return "candlesticks"
}

func toModel(e entity.Candlestick) CandlestickModel {
	return CandlestickModel{
		Symbol:       e.Symbol,
		Period:       int32(e.Period),
		AdjustType:   int32(e.Adjust),
		BarTime:      e.Timestamp.UTC(),
		Open:         e.Open.String(),
		High:         e.High.String(),
		Low:          e.Low.String(),
		Close:        e.Close.String(),
		Volume:       e.Volume,
		Turnover:     e.Turnover.String(),
		TradeSession: int32(e.TradeSession),
	}
}

func toEntity(m CandlestickModel) (entity.Candlestick, error) {
	var err error
	dec := func(s string) decimal.Decimal {
		d, e := decimal.NewFromString(s)
		if e != nil && err == nil {
			err = fmt.Errorf("candlestick %d: %w", m.ID, e)
		}
		return d
	}
	c := entity.Candlestick{
		Symbol:       m.Symbol,
		Period:       entity.Period(m.Period),
		Adjust:       entity.AdjustType(m.AdjustType),
		Open:         dec(m.Open),
		High:         dec(m.High),
		Low:          dec(m.Low),
		Close:        dec(m.Close),
		Volume:       m.Volume,
		Turnover:     dec(m.Turnover),
		Timestamp:    m.BarTime,
		TradeSession: entity.TradeSession(m.TradeSession),
	}
	if err != nil {
		return entity.Candlestick{}, err
	}
	if sym, perr := entity.ParseSymbol(m.Symbol); perr == nil {
		c.Timestamp = c.Timestamp.In(sym.Market.Location())
	}
	return c, nil
}

func toEntities(rows []CandlestickModel) ([]entity.Candlestick, error) {
	out := make([]entity.Candlestick, 0, len(rows))
	for _, m := range rows {
		c, err := toEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// UpsertBatch inserts bars, overwriting prices of bars already stored under the same key.
func (r *candlestickGorm) UpsertBatch(ctx context.Context, candles []entity.Candlestick) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandlestickModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "period"}, {Name: "adjust_type"}, {Name: "bar_time"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume", "turnover", "trade_session",
		}),
	}).CreateInBatches(&ms, 500).Error
}

// FindRange returns stored bars with start <= time <= end, oldest first. Zero bounds are open.
func (r *candlestickGorm) FindRange(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, start, end time.Time) ([]entity.Candlestick, error) {
	q := r.db.WithContext(ctx).
		Where(map[string]any{"symbol": symbol, "period": int32(period), "adjust_type": int32(adjust)})
	if !start.IsZero() {
		q = q.Where("bar_time >= ?", start.UTC())
	}
	if !end.IsZero() {
		q = q.Where("bar_time <= ?", end.UTC())
	}

	var rows []CandlestickModel
	if err := q.Order("bar_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows)
}

// FindLatest returns the newest limit bars, oldest first.
func (r *candlestickGorm) FindLatest(ctx context.Context, symbol string, period entity.Period, adjust entity.AdjustType, limit int) ([]entity.Candlestick, error) {
	var rows []CandlestickModel
	q := r.db.WithContext(ctx).
		Where(map[string]any{"symbol": symbol, "period": int32(period), "adjust_type": int32(adjust)}).
		Order("bar_time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return toEntities(rows)
}
