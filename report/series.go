package report

import (
	"time"

	"github.com/shopspring/decimal"

	"nomadguide/calendar"
	"nomadguide/model"
)

const (
	dayKeyLayout     = "2006-01-02"
	dayLabelLayout   = "Jan 02"
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan 2006"
)

type DayPoint struct {
	Date  time.Time       `json:"date"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type WeekPoint struct {
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type MonthPoint struct {
	Month   string          `json:"month"`
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
}

// DailySeries returns one point per calendar day from windowStart through
// the earlier of now and windowEnd, both inclusive. Days without outcomes
// are present with zero totals. Days are taken in windowStart's location.
func DailySeries(outcomes []model.Transaction, windowStart, windowEnd, now time.Time) []DayPoint {
	loc := windowStart.Location()
	end := windowEnd
	if now.Before(end) {
		end = now
	}
	first := calendar.StartOfDay(windowStart)
	last := calendar.StartOfDay(end.In(loc))
	if last.Before(first) {
		return []DayPoint{}
	}

	days := calendar.DaysBetween(first, last) + 1
	points := make([]DayPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		date := first.AddDate(0, 0, i)
		points[i] = DayPoint{Date: date, Label: date.Format(dayLabelLayout), Total: decimal.Zero}
		index[date.Format(dayKeyLayout)] = i
	}

	for _, tx := range outcomes {
		i, ok := index[tx.Date.In(loc).Format(dayKeyLayout)]
		if !ok {
			continue
		}
		amount, _ := tx.AmountOrZero()
		points[i].Total = points[i].Total.Add(amount)
		points[i].Count++
	}
	return points
}

// WeeklySeries returns weekCount consecutive seven-day buckets, the last
// one ending today.
func WeeklySeries(outcomes []model.Transaction, weekCount int, now time.Time) []WeekPoint {
	if weekCount <= 0 {
		return []WeekPoint{}
	}
	today := calendar.StartOfDay(now)
	first := today.AddDate(0, 0, -7*weekCount+1)

	points := make([]WeekPoint, weekCount)
	for i := range points {
		start := first.AddDate(0, 0, 7*i)
		points[i] = WeekPoint{
			Start: start,
			End:   calendar.EndOfDay(start.AddDate(0, 0, 6)),
			Label: start.Format(dayLabelLayout),
			Total: decimal.Zero,
		}
	}

	for _, tx := range outcomes {
		date := tx.Date.In(now.Location())
		if date.After(now) {
			continue
		}
		offset := calendar.DaysBetween(first, date)
		if offset < 0 {
			continue
		}
		i := offset / 7
		if i >= weekCount {
			continue
		}
		amount, _ := tx.AmountOrZero()
		points[i].Total = points[i].Total.Add(amount)
		points[i].Count++
	}
	return points
}

// MonthlyTrend returns income and outcome totals for the monthCount
// calendar months ending with now's month, oldest first.
func MonthlyTrend(txs []model.Transaction, monthCount int, now time.Time) []MonthPoint {
	if monthCount <= 0 {
		return []MonthPoint{}
	}
	loc := now.Location()
	y, m, _ := now.Date()

	points := make([]MonthPoint, monthCount)
	index := make(map[string]int, monthCount)
	for i := range points {
		month := time.Date(y, m-time.Month(monthCount-1-i), 1, 0, 0, 0, 0, loc)
		key := month.Format(monthKeyLayout)
		points[i] = MonthPoint{
			Month:   key,
			Label:   month.Format(monthLabelLayout),
			Income:  decimal.Zero,
			Outcome: decimal.Zero,
		}
		index[key] = i
	}

	for _, tx := range txs {
		if tx.Date.After(now) {
			continue
		}
		i, ok := index[tx.Date.In(loc).Format(monthKeyLayout)]
		if !ok {
			continue
		}
		amount, _ := tx.AmountOrZero()
		if tx.Type == model.Income {
			points[i].Income = points[i].Income.Add(amount)
		} else {
			points[i].Outcome = points[i].Outcome.Add(amount)
		}
	}
	return points
}

// Totals extracts the Total of each daily point, for MovingAverage and
// ChartStats.
func Totals(points []DayPoint) []decimal.Decimal {
	out := make([]decimal.Decimal, len(points))
	for i, p := range points {
		out[i] = p.Total
	}
	return out
}
