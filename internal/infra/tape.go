package infra

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

// Tape CSV column layout, bitFlyer execution-history export format.
// The acceptance-id and delay columns are optional trailing fields.
const (
	colExecDate = iota
	colID
	colSide
	colPrice
	colSize
	colBuyAcceptanceID
	colSellAcceptanceID
	colDelay
)

var tickTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// LoadTape reads a CSV execution tape. It fails fast on a missing file,
// a malformed row or an empty tape; no partial run is ever attempted.
func LoadTape(path string) ([]domain.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tape: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // trailing optional columns

	var ticks []domain.Tick
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tape: %w", err)
		}
		line++
		if line == 1 && record[colExecDate] == "exec_date" {
			continue // header
		}
		tick, err := parseTick(record)
		if err != nil {
			return nil, fmt.Errorf("tape line %d: %w", line, err)
		}
		ticks = append(ticks, tick)
	}

	if len(ticks) == 0 {
		return nil, domain.ErrEmptyTape
	}
	return ticks, nil
}

func parseTick(record []string) (domain.Tick, error) {
	var t domain.Tick
	if len(record) < colSize+1 {
		return t, fmt.Errorf("%w: expected at least %d columns, got %d", domain.ErrInvalidArgument, colSize+1, len(record))
	}

	execDate, err := parseTickTime(record[colExecDate])
	if err != nil {
		return t, err
	}
	id, err := strconv.ParseInt(record[colID], 10, 64)
	if err != nil {
		return t, fmt.Errorf("%w: id %q", domain.ErrInvalidArgument, record[colID])
	}
	side := domain.Side(record[colSide])
	if !side.Valid() {
		return t, fmt.Errorf("%w: side %q", domain.ErrInvalidArgument, record[colSide])
	}
	price, err := decimal.NewFromString(record[colPrice])
	if err != nil {
		return t, fmt.Errorf("%w: price %q", domain.ErrInvalidArgument, record[colPrice])
	}
	size, err := decimal.NewFromString(record[colSize])
	if err != nil {
		return t, fmt.Errorf("%w: size %q", domain.ErrInvalidArgument, record[colSize])
	}

	t = domain.Tick{ExecDate: execDate, ID: id, Side: side, Price: price, Size: size}
	if len(record) > colBuyAcceptanceID {
		t.BuyAcceptanceID = record[colBuyAcceptanceID]
	}
	if len(record) > colSellAcceptanceID {
		t.SellAcceptanceID = record[colSellAcceptanceID]
	}
	if len(record) > colDelay && record[colDelay] != "" {
		delay, err := strconv.ParseFloat(record[colDelay], 64)
		if err != nil {
			return t, fmt.Errorf("%w: delay %q", domain.ErrInvalidArgument, record[colDelay])
		}
		t.DelaySec = delay
	}
	return t, nil
}

func parseTickTime(s string) (time.Time, error) {
	for _, layout := range tickTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable exec_date %q", domain.ErrInvalidArgument, s)
}
