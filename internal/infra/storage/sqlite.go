package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"baktgo/internal/domain"
	"baktgo/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is the one-row summary of a backtest run. All rows of the
// other tables hang off RunID.
type RunRecord struct {
	RunID        string `gorm:"primaryKey"`
	CreatedAt    time.Time
	Strategy     string
	TimeframeSec int
	NumOfTrade   int
	NumOfOrders  int
	NumOfTrades  int
	WinRate      string
	Profit       string
	Loss         string
	TotalPnl     string
	ProfitFactor string
}

// OrderRecord is the final state of one order.
type OrderRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"index"`
	OrderID   int
	CreatedAt time.Time
	Side      string
	Type      string
	Price     string
	Size      string
	OpenSize  string
	Status    string
	NumFills  int
}

// TradeRecord is one fully closed position.
type TradeRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"index"`
	PositionID  int
	OpenOrderID int
	Side        string
	OpenedAt    time.Time
	ClosedAt    time.Time
	Amount      string
	OpenPrice   string
	ClosePrice  string
	Pnl         string
}

// WindowRecord is one simulation window's statistics.
type WindowRecord struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	RunID         string `gorm:"index"`
	WindowIndex   int
	Time          time.Time
	BuyPosSize    string
	SellPosSize   string
	BuyVolume     string
	SellVolume    string
	Ltp           string
	RealizedPnl   string
	UnrealizedPnl string
	ExecRecvDelay float64
}

// Storage persists backtest results into a SQLite database.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (creating if needed) the results database at path.
func NewStorage(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}, &OrderRecord{}, &TradeRecord{}, &WindowRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Storage{db: db}, nil
}

// SaveRun writes the whole result set of one run under a fresh run id
// and returns that id. The write is transactional: either the complete
// run lands or nothing does.
func (s *Storage) SaveRun(strategyName string, timeframeSec, numOfTrade int,
	orders []*domain.Order, trades []*domain.Position, windows []service.WindowStats,
	tradeStats service.TradeStats) (string, error) {

	runID := uuid.NewString()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		run := RunRecord{
			RunID:        runID,
			CreatedAt:    time.Now(),
			Strategy:     strategyName,
			TimeframeSec: timeframeSec,
			NumOfTrade:   numOfTrade,
			NumOfOrders:  len(orders),
			NumOfTrades:  tradeStats.NumOfTrades,
			WinRate:      tradeStats.WinRate.String(),
			Profit:       tradeStats.Profit.String(),
			Loss:         tradeStats.Loss.String(),
			TotalPnl:     tradeStats.TotalPnl.String(),
			ProfitFactor: tradeStats.ProfitFactor.String(),
		}
		if err := tx.Create(&run).Error; err != nil {
			return err
		}

		for _, o := range orders {
			rec := OrderRecord{
				RunID:     runID,
				OrderID:   o.ID,
				CreatedAt: o.CreatedAt,
				Side:      string(o.Side),
				Type:      string(o.Type),
				Price:     o.Price.String(),
				Size:      o.Size.String(),
				OpenSize:  o.OpenSize.String(),
				Status:    string(o.Status),
				NumFills:  len(o.Executions),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}

		for _, p := range trades {
			rec := TradeRecord{
				RunID:       runID,
				PositionID:  p.ID,
				OpenOrderID: p.OpenOrderID,
				Side:        string(p.Side),
				OpenedAt:    p.OpenedAt,
				ClosedAt:    p.ClosedAt,
				Amount:      p.Amount.String(),
				OpenPrice:   p.OpenPrice.String(),
				ClosePrice:  p.ClosePrice.String(),
				Pnl:         p.Pnl.String(),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}

		for i, w := range windows {
			rec := WindowRecord{
				RunID:         runID,
				WindowIndex:   i,
				Time:          w.Time,
				BuyPosSize:    w.BuyPosSize.String(),
				SellPosSize:   w.SellPosSize.String(),
				BuyVolume:     w.BuyVolume.String(),
				SellVolume:    w.SellVolume.String(),
				Ltp:           w.Ltp.String(),
				RealizedPnl:   w.RealizedPnl.String(),
				UnrealizedPnl: w.UnrealizedPnl.String(),
				ExecRecvDelay: w.ExecRecvDelay,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return runID, nil
}

// GetRun loads a run summary by id. A missing run is not an error.
func (s *Storage) GetRun(runID string) (*RunRecord, error) {
	var run RunRecord
	err := s.db.First(&run, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetTrades loads the archived trades of a run.
func (s *Storage) GetTrades(runID string) ([]TradeRecord, error) {
	var trades []TradeRecord
	err := s.db.Where("run_id = ?", runID).Order("id").Find(&trades).Error
	return trades, err
}

// GetWindows loads the per-window history of a run.
func (s *Storage) GetWindows(runID string) ([]WindowRecord, error) {
	var windows []WindowRecord
	err := s.db.Where("run_id = ?", runID).Order("window_index").Find(&windows).Error
	return windows, err
}
