// Package report aggregates admin order listings into sales reports.
//
// Counts include every order in range; revenue only counts orders whose
// payment has been verified. All dates are calendar days in UTC.
package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"storefront/internal/model"
)

// DateLayout is the calendar-day format used for ranges and date buckets.
const DateLayout = "2006-01-02"

// UnknownPaymentMethod labels orders that carry no payment method.
const UnknownPaymentMethod = "Unknown"

// Range is an inclusive range of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseRange parses start and end as YYYY-MM-DD. The end day is inclusive.
func ParseRange(start, end string) (Range, error) {
	s, err := time.ParseInLocation(DateLayout, strings.TrimSpace(start), time.UTC)
	if err != nil {
		return Range{}, model.ErrInvalidDateRange
	}
	e, err := time.ParseInLocation(DateLayout, strings.TrimSpace(end), time.UTC)
	if err != nil {
		return Range{}, model.ErrInvalidDateRange
	}
	if e.Before(s) {
		return Range{}, model.ErrInvalidDateRange
	}
	return Range{Start: s, End: e}, nil
}

// LastDays returns the range covering the n calendar days ending on now.
func LastDays(now time.Time, n int) Range {
	end := truncateDay(now)
	return Range{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// Contains reports whether t falls on a day within r.
func (r Range) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(truncateDay(r.Start)) && t.Before(truncateDay(r.End).AddDate(0, 0, 1))
}

// Aggregate builds the sales report for the orders that fall within r.
func Aggregate(orders []model.Order, r Range) model.SalesReport {
	rep := model.SalesReport{
		Start:           r.Start.UTC().Format(DateLayout),
		End:             r.End.UTC().Format(DateLayout),
		ByDate:          []model.SalesByDate{},
		ByProduct:       []model.SalesByProduct{},
		ByPaymentMethod: []model.SalesByPaymentMethod{},
	}

	byDate := map[string]*model.SalesByDate{}
	byProduct := map[int64]*model.SalesByProduct{}
	byMethod := map[string]*model.SalesByPaymentMethod{}

	for _, o := range orders {
		if !r.Contains(o.OrderDate) {
			continue
		}

		revenue := 0.0
		if o.PaymentVerified {
			revenue = o.TotalAmount
		}

		rep.TotalOrders++
		rep.TotalRevenue += revenue

		day := o.OrderDate.UTC().Format(DateLayout)
		d, ok := byDate[day]
		if !ok {
			d = &model.SalesByDate{Date: day}
			byDate[day] = d
		}
		d.OrderCount++
		d.Revenue += revenue

		method := strings.TrimSpace(o.PaymentMethod)
		if method == "" {
			method = UnknownPaymentMethod
		}
		m, ok := byMethod[method]
		if !ok {
			m = &model.SalesByPaymentMethod{Method: method}
			byMethod[method] = m
		}
		m.OrderCount++
		m.Revenue += revenue

		for _, item := range o.Items {
			p, ok := byProduct[item.ProductID]
			if !ok {
				p = &model.SalesByProduct{ProductID: item.ProductID, Name: item.Name}
				byProduct[item.ProductID] = p
			}
			p.QuantitySold += item.Quantity
			if o.PaymentVerified {
				p.Revenue += item.PriceAtPurchase * float64(item.Quantity)
			}
		}
	}

	rep.TotalRevenue = roundCents(rep.TotalRevenue)

	for _, d := range byDate {
		d.Revenue = roundCents(d.Revenue)
		rep.ByDate = append(rep.ByDate, *d)
	}
	sort.Slice(rep.ByDate, func(i, j int) bool {
		return rep.ByDate[i].Date < rep.ByDate[j].Date
	})

	for _, p := range byProduct {
		p.Revenue = roundCents(p.Revenue)
		rep.ByProduct = append(rep.ByProduct, *p)
	}
	sort.Slice(rep.ByProduct, func(i, j int) bool {
		a, b := rep.ByProduct[i], rep.ByProduct[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.ProductID < b.ProductID
	})

	for _, m := range byMethod {
		m.Revenue = roundCents(m.Revenue)
		rep.ByPaymentMethod = append(rep.ByPaymentMethod, *m)
	}
	sort.Slice(rep.ByPaymentMethod, func(i, j int) bool {
		a, b := rep.ByPaymentMethod[i], rep.ByPaymentMethod[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Method < b.Method
	})

	return rep
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
