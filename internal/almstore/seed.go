package almstore

import (
	"context"
	"fmt"
)

// seed populates a fresh schema with enough synthetic rows across two book
// months (so month-over-month position tools have something to compare)
// for every query surface above to return non-empty results.
func (s *Store) seed(ctx context.Context) error {
	var existing int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alm_inst").Scan(&existing); err != nil {
		return fmt.Errorf("almstore: check seed: %w", err)
	}
	if existing > 0 {
		return nil
	}

	contracts := []struct {
		id, currency, contractType, maturity, start, month string
		balance, rate                                       float64
	}{
		{"C0001", "USD", "LOAN", "2027-06-30", "2024-01-15", "2026-06", 1_200_000, 4.25},
		{"C0002", "USD", "DEPOSIT", "2026-12-31", "2023-11-01", "2026-06", 850_000, 2.10},
		{"C0003", "KRW", "LOAN", "2028-03-31", "2024-05-20", "2026-06", 1_500_000_000, 5.50},
		{"C0004", "EUR", "DEPOSIT", "2027-01-31", "2024-02-10", "2026-06", 600_000, 1.75},
		{"C0005", "USD", "LOAN", "2026-09-30", "2022-09-30", "2026-05", 900_000, 4.00},
		{"C0006", "KRW", "LOAN", "2027-11-30", "2023-11-30", "2026-05", 1_100_000_000, 5.25},
	}
	for _, c := range contracts {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO alm_inst (contract_id, currency_cd, contract_type, balance, interest_rate, maturity_date, start_date, book_month)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.id, c.currency, c.contractType, c.balance, c.rate, c.maturity, c.start, c.month)
		if err != nil {
			return fmt.Errorf("almstore: seed alm_inst: %w", err)
		}
	}

	gaps := []struct {
		month, bucket        string
		principal, interest float64
	}{
		{"2026-06", "0-3M", 120_000, 4_500},
		{"2026-06", "3-6M", -45_000, 1_200},
		{"2026-06", "6-12M", 200_000, 8_000},
		{"2026-06", "1-3Y", -60_000, -1_500},
	}
	for _, g := range gaps {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO liq_gap (book_month, time_bucket, principal_gap, interest_gap) VALUES (?, ?, ?, ?)`,
			g.month, g.bucket, g.principal, g.interest)
		if err != nil {
			return fmt.Errorf("almstore: seed liq_gap: %w", err)
		}
	}

	rates := []struct {
		date, from, to string
		rate            float64
	}{
		{"2026-06-01", "USD", "KRW", 1380.25},
		{"2026-06-15", "USD", "KRW", 1375.50},
		{"2026-06-30", "USD", "KRW", 1382.10},
		{"2026-06-01", "EUR", "KRW", 1490.00},
		{"2026-06-30", "EUR", "KRW", 1495.75},
	}
	for _, r := range rates {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO exch_rate_hist (rate_date, from_currency, to_currency, rate) VALUES (?, ?, ?, ?)`,
			r.date, r.from, r.to, r.rate)
		if err != nil {
			return fmt.Errorf("almstore: seed exch_rate_hist: %w", err)
		}
	}

	irc := []struct {
		date, code, term string
		rate              float64
	}{
		{"2026-06-01", "CD91", "3M", 3.45},
		{"2026-06-15", "CD91", "3M", 3.50},
		{"2026-06-30", "CD91", "3M", 3.48},
		{"2026-06-30", "KORIBOR", "6M", 3.62},
	}
	for _, r := range irc {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO irc_rate_hist (rate_date, rate_cd, term, rate) VALUES (?, ?, ?, ?)`,
			r.date, r.code, r.term, r.rate)
		if err != nil {
			return fmt.Errorf("almstore: seed irc_rate_hist: %w", err)
		}
	}

	return nil
}
