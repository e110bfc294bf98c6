package estimate

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultAvgTicket is used for cities outside the known service areas.
const DefaultAvgTicket = 6500

// Metro is a primary city and the suburbs that share its average ticket.
type Metro struct {
	Primary   string
	Suburbs   []string
	AvgTicket float64
}

// Metros are the known service areas.
var Metros = []Metro{
	{
		Primary:   "Milwaukee",
		Suburbs:   []string{"Wauwatosa", "West Allis", "Brookfield", "New Berlin", "Franklin", "Oak Creek"},
		AvgTicket: 7500,
	},
	{
		Primary:   "Madison",
		Suburbs:   []string{"Middleton", "Fitchburg", "Verona", "Sun Prairie", "Waunakee", "McFarland"},
		AvgTicket: 6800,
	},
	{
		Primary:   "Green Bay",
		Suburbs:   []string{"De Pere", "Ashwaubenon", "Allouez", "Bellevue", "Howard", "Suamico"},
		AvgTicket: 6200,
	},
}

// Tickets resolves a city to an average job ticket.
type Tickets struct {
	metros   []Metro
	byCity   map[string]float64
	fallback float64
}

// NewTickets indexes metros. A fallback of 0 or less means DefaultAvgTicket.
func NewTickets(metros []Metro, fallback float64) *Tickets {
	if fallback <= 0 {
		fallback = DefaultAvgTicket
	}
	t := &Tickets{metros: metros, byCity: make(map[string]float64), fallback: fallback}
	for _, m := range metros {
		t.byCity[cityKey(m.Primary)] = m.AvgTicket
		for _, s := range m.Suburbs {
			t.byCity[cityKey(s)] = m.AvgTicket
		}
	}
	return t
}

// For returns the average ticket of city, matched case-insensitively with
// any ", ST" suffix ignored.
func (t *Tickets) For(city string) float64 {
	if v, ok := t.byCity[cityKey(city)]; ok {
		return v
	}
	return t.fallback
}

// Cities lists every known city, primaries first in metro order.
func (t *Tickets) Cities() []string {
	var out []string
	for _, m := range t.metros {
		out = append(out, m.Primary)
	}
	for _, m := range t.metros {
		out = append(out, m.Suburbs...)
	}
	return out
}

func cityKey(city string) string {
	city, _, _ = strings.Cut(city, ",")
	return cases.Fold().String(strings.Join(strings.Fields(city), " "))
}
