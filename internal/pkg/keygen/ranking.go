package keygen

import (
	"fmt"
	"time"

	"commerce-server/internal/pkg/errs"
)

type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Daily, Weekly, Monthly:
		return p, nil
	default:
		return "", errs.Wrapf(errs.ErrInvalidPeriod, "period %q", s)
	}
}

// Days is the length of the window a period aggregates over.
func (p Period) Days() int {
	switch p {
	case Weekly:
		return 7
	case Monthly:
		return 30
	default:
		return 1
	}
}

// Bucket formats t as the period's bucket: 2025-01-01, 2025-W01 or 2025-01.
func (p Period) Bucket(t time.Time) string {
	switch p {
	case Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func RankingKey(p Period, t time.Time) string {
	return ProductRanking.Key(string(p), p.Bucket(t))
}

func DailyRankingKey(t time.Time) string   { return RankingKey(Daily, t) }
func WeeklyRankingKey(t time.Time) string  { return RankingKey(Weekly, t) }
func MonthlyRankingKey(t time.Time) string { return RankingKey(Monthly, t) }

func RankingTTL(p Period) time.Duration {
	return PopularTTL(p.Days())
}
