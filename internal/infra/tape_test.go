package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

func writeTape(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tape.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tape file: %v", err)
	}
	return path
}

func TestLoadTape(t *testing.T) {
	path := writeTape(t, `exec_date,id,side,price,size,buy_child_order_acceptance_id,sell_child_order_acceptance_id,delay
2019-03-21 00:00:01.226,869055155,BUY,438606,0.01,JRF20190321-000001-067875,JRF20190321-000000-066269,1.2260770797729492
2019-03-21 00:00:03.5,869055156,SELL,438600,0.5,,,
2019-03-21T00:00:05Z,869055157,BUY,438610.5,1,,
`)

	ticks, err := LoadTape(path)
	if err != nil {
		t.Fatalf("LoadTape failed: %v", err)
	}
	if len(ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(ticks))
	}

	first := ticks[0]
	want := time.Date(2019, 3, 21, 0, 0, 1, 226000000, time.UTC)
	if !first.ExecDate.Equal(want) {
		t.Errorf("exec_date: expected %v, got %v", want, first.ExecDate)
	}
	if first.ID != 869055155 {
		t.Errorf("id: expected 869055155, got %d", first.ID)
	}
	if first.Side != domain.SideBuy {
		t.Errorf("side: expected BUY, got %s", first.Side)
	}
	if !first.Price.Equal(decimal.RequireFromString("438606")) {
		t.Errorf("price: expected 438606, got %s", first.Price)
	}
	if !first.Size.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("size: expected 0.01, got %s", first.Size)
	}
	if first.BuyAcceptanceID != "JRF20190321-000001-067875" {
		t.Errorf("unexpected buy acceptance id %q", first.BuyAcceptanceID)
	}
	if first.DelaySec < 1.22 || first.DelaySec > 1.23 {
		t.Errorf("unexpected delay %v", first.DelaySec)
	}

	// Blank delay column parses as zero.
	if ticks[1].DelaySec != 0 {
		t.Errorf("expected zero delay, got %v", ticks[1].DelaySec)
	}
	// RFC3339 timestamps are accepted too.
	if !ticks[2].ExecDate.Equal(time.Date(2019, 3, 21, 0, 0, 5, 0, time.UTC)) {
		t.Errorf("unexpected exec_date %v", ticks[2].ExecDate)
	}
}

func TestLoadTape_NoHeader(t *testing.T) {
	path := writeTape(t, "2019-03-21 00:00:01,1,SELL,100,0.1\n")

	ticks, err := LoadTape(path)
	if err != nil {
		t.Fatalf("LoadTape failed: %v", err)
	}
	if len(ticks) != 1 {
		t.Fatalf("expected 1 tick, got %d", len(ticks))
	}
}

func TestLoadTape_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad timestamp", "yesterday,1,BUY,100,0.1\n"},
		{"bad id", "2019-03-21 00:00:01,xx,BUY,100,0.1\n"},
		{"bad side", "2019-03-21 00:00:01,1,HOLD,100,0.1\n"},
		{"bad price", "2019-03-21 00:00:01,1,BUY,cheap,0.1\n"},
		{"bad size", "2019-03-21 00:00:01,1,BUY,100,lots\n"},
		{"bad delay", "2019-03-21 00:00:01,1,BUY,100,0.1,,,soon\n"},
		{"missing columns", "2019-03-21 00:00:01,1,BUY\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadTape(writeTape(t, tc.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadTape_Empty(t *testing.T) {
	_, err := LoadTape(writeTape(t, "exec_date,id,side,price,size\n"))
	if !errors.Is(err, domain.ErrEmptyTape) {
		t.Errorf("expected ErrEmptyTape, got %v", err)
	}
}

func TestLoadTape_MissingFile(t *testing.T) {
	if _, err := LoadTape(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
