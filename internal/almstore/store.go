// Package almstore is the relational backing store for the ALM analytical
// tools: ALM_INST contracts, liquidity-gap buckets, and exchange-rate and
// interest-rate history. The schema and its contents are a synthetic stand-in — the
// engine above only depends on the query surface this package exposes, not
// on any particular production dataset.
package almstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config selects the SQL driver and connection string. Driver defaults to
// "sqlite3"; "mysql" and "postgres" are wired as interchangeable
// alternates over the identical query surface below.
type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SetDefaults fills in a local, file-free sqlite3 database when unset.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite3"
	}
	if c.DSN == "" && c.Driver == "sqlite3" {
		c.DSN = "file::memory:?cache=shared"
	}
}

// Validate rejects a config whose driver this package does not know how to
// open.
func (c *Config) Validate() error {
	switch c.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return fmt.Errorf("almstore: unsupported driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("almstore: dsn is required")
	}
	return nil
}

// Store wraps a *sql.DB seeded with the ALM_INST / liquidity-gap / exchange
// and interest rate history tables.
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens cfg's database, creates the schema if absent, and seeds it
// with synthetic rows.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("almstore: open %s: %w", cfg.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("almstore: ping %s: %w", cfg.Driver, err)
	}

	s := &Store{db: db, driver: cfg.Driver}
	if err := s.createSchema(ctx); err != nil {
		return nil, err
	}
	if err := s.seed(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS alm_inst (
			contract_id TEXT PRIMARY KEY,
			currency_cd TEXT NOT NULL,
			contract_type TEXT NOT NULL,
			balance REAL NOT NULL,
			interest_rate REAL NOT NULL,
			maturity_date TEXT NOT NULL,
			start_date TEXT NOT NULL,
			book_month TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS liq_gap (
			book_month TEXT NOT NULL,
			time_bucket TEXT NOT NULL,
			principal_gap REAL NOT NULL,
			interest_gap REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS exch_rate_hist (
			rate_date TEXT NOT NULL,
			from_currency TEXT NOT NULL,
			to_currency TEXT NOT NULL,
			rate REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS irc_rate_hist (
			rate_date TEXT NOT NULL,
			rate_cd TEXT NOT NULL,
			term TEXT NOT NULL,
			rate REAL NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("almstore: create schema: %w", err)
		}
	}
	return nil
}

// allowedContractFilters is the fixed, known-safe set of columns
// search_alm_contracts may filter on — building WHERE clauses only from
// this allowlist (never from the raw filter keys) is what keeps the
// query injection-free despite the filter set being caller-supplied.
var allowedContractFilters = map[string]string{
	"CURRENCY_CD":   "currency_cd",
	"CONTRACT_TYPE": "contract_type",
	"BOOK_MONTH":    "book_month",
}

// SearchContracts runs search_alm_contracts: filters is a decoded
// {column: value} map (already unmarshaled from the tool's filters_json
// argument) restricted to allowedContractFilters.
func (s *Store) SearchContracts(ctx context.Context, filters map[string]string) (string, error) {
	query := "SELECT contract_id, currency_cd, contract_type, balance, interest_rate, maturity_date FROM alm_inst"
	var args []interface{}
	var clauses []string
	for key, value := range filters {
		col, ok := allowedContractFilters[key]
		if !ok {
			continue
		}
		clauses = append(clauses, col+" = ?")
		args = append(args, value)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query = s.rebind(query)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var id, currency, contractType, maturity string
		var balance, rate float64
		if err := rows.Scan(&id, &currency, &contractType, &balance, &rate, &maturity); err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s | %s | %s | %.2f | %.3f%% | %s", id, currency, contractType, balance, rate, maturity))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return fmt.Sprintf("검색 결과: %d건\n%s", len(lines), strings.Join(lines, "\n")), nil
}

// AnalyzeLiquidityGap runs analyze_liquidity_gap: aggregates principal and
// interest gap per time bucket for bookMonth (empty means the latest
// seeded month).
func (s *Store) AnalyzeLiquidityGap(ctx context.Context, bookMonth string) (string, error) {
	if bookMonth == "" {
		bookMonth = s.latestBookMonth(ctx)
	}
	query := s.rebind(`SELECT time_bucket, SUM(principal_gap), SUM(interest_gap)
		FROM liq_gap WHERE book_month = ? GROUP BY time_bucket ORDER BY time_bucket`)

	rows, err := s.db.QueryContext(ctx, query, bookMonth)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var bucket string
		var principal, interest float64
		if err := rows.Scan(&bucket, &principal, &interest); err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s | 원금갭 %.2f | 이자갭 %.2f", bucket, principal, interest))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return fmt.Sprintf("%s 기준 유동성 갭 데이터가 없습니다.", bookMonth), nil
	}
	return fmt.Sprintf("%s 유동성 갭 분석:\n%s", bookMonth, strings.Join(lines, "\n")), nil
}

// GetAggregateStats runs get_aggregate_stats over alm_inst: count, total
// balance and average rate, grouped by currency.
func (s *Store) GetAggregateStats(ctx context.Context) (string, error) {
	query := `SELECT currency_cd, COUNT(*), SUM(balance), AVG(interest_rate) FROM alm_inst GROUP BY currency_cd ORDER BY currency_cd`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var currency string
		var count int
		var totalBalance, avgRate float64
		if err := rows.Scan(&currency, &count, &totalBalance, &avgRate); err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s | %d건 | 합계 %.2f | 평균금리 %.3f%%", currency, count, totalBalance, avgRate))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return "통화별 집계:\n" + strings.Join(lines, "\n"), nil
}

// CompareScenarios compares the given book months against each other: one
// row per month with contract count, total balance and average rate over
// all currencies together (no per-currency breakdown).
func (s *Store) CompareScenarios(ctx context.Context, bookMonths []string) (string, error) {
	if len(bookMonths) == 0 {
		return "비교할 시나리오가 지정되지 않았습니다.", nil
	}

	var b strings.Builder
	for _, month := range bookMonths {
		query := s.rebind(`SELECT COUNT(*), COALESCE(SUM(balance), 0), COALESCE(AVG(interest_rate), 0)
			FROM alm_inst WHERE book_month = ?`)
		var count int
		var totalBalance, avgRate float64
		if err := s.db.QueryRowContext(ctx, query, month).Scan(&count, &totalBalance, &avgRate); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s | %d건 | 합계 %.2f | 평균금리 %.3f%%\n", month, count, totalBalance, avgRate)
	}
	return "시나리오 비교:\n" + b.String(), nil
}

// AnalyzeTrends runs analyze_trends over exchange-rate or interest-rate
// history for the given series ("exchange" or "interest").
func (s *Store) AnalyzeTrends(ctx context.Context, series string) (string, error) {
	var query string
	switch series {
	case "exchange":
		query = "SELECT rate_date, from_currency, to_currency, rate FROM exch_rate_hist ORDER BY rate_date"
	case "interest":
		query = "SELECT rate_date, rate_cd, term, rate FROM irc_rate_hist ORDER BY rate_date"
	default:
		return "", fmt.Errorf("almstore: unknown trend series %q", series)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var date, a, b string
		var rate float64
		if err := rows.Scan(&date, &a, &b, &rate); err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s | %s/%s | %.4f", date, a, b, rate))
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return "추세 분석:\n" + strings.Join(lines, "\n"), nil
}

// AnalyzeNewPositionGrowth compares contract counts between currentMonth
// and priorMonth, per currency, reporting the net growth.
func (s *Store) AnalyzeNewPositionGrowth(ctx context.Context, currentMonth, priorMonth string) (string, error) {
	return s.compareMonthCounts(ctx, currentMonth, priorMonth, "신규 포지션 증가분")
}

// AnalyzeExpiredPositionDecrease compares contract counts between
// currentMonth and priorMonth the other way: for each currency present in
// priorMonth it reports priorMonth's count minus currentMonth's. Individual
// contracts are not matched across the two months.
func (s *Store) AnalyzeExpiredPositionDecrease(ctx context.Context, currentMonth, priorMonth string) (string, error) {
	return s.compareMonthCounts(ctx, priorMonth, currentMonth, "소멸 포지션 감소분")
}

func (s *Store) compareMonthCounts(ctx context.Context, newerMonth, olderMonth, label string) (string, error) {
	query := s.rebind(`SELECT currency_cd, COUNT(*) FROM alm_inst WHERE book_month = ? GROUP BY currency_cd ORDER BY currency_cd`)

	newer, err := s.countsByCurrency(ctx, query, newerMonth)
	if err != nil {
		return "", err
	}
	older, err := s.countsByCurrency(ctx, query, olderMonth)
	if err != nil {
		return "", err
	}

	var lines []string
	for currency, newCount := range newer {
		lines = append(lines, fmt.Sprintf("%s | %s: %d건 | %s: %d건 | 차이: %+d", currency, newerMonth, newCount, olderMonth, older[currency], newCount-older[currency]))
	}
	return fmt.Sprintf("%s (%s 대비 %s):\n%s", label, olderMonth, newerMonth, strings.Join(lines, "\n")), nil
}

func (s *Store) countsByCurrency(ctx context.Context, query, month string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var currency string
		var count int
		if err := rows.Scan(&currency, &count); err != nil {
			return nil, err
		}
		counts[currency] = count
	}
	return counts, rows.Err()
}

func (s *Store) latestBookMonth(ctx context.Context) string {
	var month string
	_ = s.db.QueryRowContext(ctx, "SELECT book_month FROM alm_inst ORDER BY book_month DESC LIMIT 1").Scan(&month)
	return month
}

// rebind rewrites "?" placeholders to "$1"-style when the driver is
// postgres, which does not accept the sqlite3/mysql placeholder syntax.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
