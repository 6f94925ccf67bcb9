package product

import (
	"context"
	"strings"
	"time"

	domainProduct "product-catalog/internal/domain/product"
	"product-catalog/internal/validation"
	"product-catalog/pkg/envelope"
)

const MsgStatsFetched = "Stats are fetched Successfully"

var statsFields = []string{"today_start", "today_end", "week_start", "week_end", "month_start", "month_end"}

// StatsQuery optionally overrides the counting windows. Missing bounds
// default to the current day, week (starting Monday) and month.
type StatsQuery struct {
	TodayStart string `form:"today_start"`
	TodayEnd   string `form:"today_end"`
	WeekStart  string `form:"week_start"`
	WeekEnd    string `form:"week_end"`
	MonthStart string `form:"month_start"`
	MonthEnd   string `form:"month_end"`
}

func (q *StatsQuery) Lookup(field string) (any, bool) {
	switch field {
	case "today_start":
		return q.TodayStart, true
	case "today_end":
		return q.TodayEnd, true
	case "week_start":
		return q.WeekStart, true
	case "week_end":
		return q.WeekEnd, true
	case "month_start":
		return q.MonthStart, true
	case "month_end":
		return q.MonthEnd, true
	}
	return nil, false
}

type ProductStats struct {
	Total          int64 `json:"total"`
	TotalToday     int64 `json:"totalToday"`
	TotalThisWeek  int64 `json:"totalThisWeek"`
	TotalThisMonth int64 `json:"totalThisMonth"`
}

type StatsResponse struct {
	Product ProductStats `json:"product"`
}

type window struct {
	from, until time.Time
}

func (s *Service) Stats(ctx context.Context, ownerUserID int64, q *StatsQuery) *envelope.Envelope[StatsResponse] {
	if res, ok := check[StatsResponse](ctx, "product_stats", statsRules(), q); !ok {
		return res
	}

	today, week, month := defaultWindows(s.clock.Now())
	loc := today.from.Location()
	today = today.override(q.TodayStart, q.TodayEnd, loc)
	week = week.override(q.WeekStart, q.WeekEnd, loc)
	month = month.override(q.MonthStart, q.MonthEnd, loc)

	var stats ProductStats
	counts := []struct {
		dst *int64
		w   *window
	}{
		{&stats.Total, nil},
		{&stats.TotalToday, &today},
		{&stats.TotalThisWeek, &week},
		{&stats.TotalThisMonth, &month},
	}

	for _, c := range counts {
		filter := &domainProduct.CountFilter{OwnerUserID: ownerUserID}
		if c.w != nil {
			filter.CreatedFrom, filter.CreatedUntil = &c.w.from, &c.w.until
		}
		n, err := s.productRepo.Count(ctx, filter)
		if err != nil {
			return fail[StatsResponse]("product_stats", err)
		}
		*c.dst = n
	}

	return envelope.OK(MsgStatsFetched, &StatsResponse{Product: stats})
}

func defaultWindows(now time.Time) (today, week, month window) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today = window{from: dayStart, until: dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)}

	weekStart := dayStart.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	week = window{from: weekStart, until: weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	month = window{from: monthStart, until: monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)}

	return today, week, month
}

// override replaces the bounds that were supplied, reading zoneless values
// in loc. A date-only upper bound covers the whole day.
func (w window) override(start, end string, loc *time.Location) window {
	if t, err := validation.ParseDateIn(start, loc); err == nil {
		w.from = t
	}
	if t, err := validation.ParseDateIn(end, loc); err == nil {
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(end)); err == nil {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		w.until = t
	}
	return w
}
