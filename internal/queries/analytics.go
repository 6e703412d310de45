package queries

import (
	"bytes"
	"encoding/json"
)

// NoData is returned by MostPopular when a distribution is empty.
const NoData = "N/A"

// StatusCounts holds the number of queries per pipeline status.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Booked    int `json:"booked"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
}

// Total returns the sum across all statuses.
func (c StatusCounts) Total() int {
	return c.Pending + c.Booked + c.Upcoming + c.Completed + c.Rejected
}

// CountByStatus tallies queries per status. A query whose status falls
// outside the enum counts as Pending.
func CountByStatus(qs []Query) StatusCounts {
	var counts StatusCounts
	for _, q := range qs {
		switch q.Status {
		case StatusBooked:
			counts.Booked++
		case StatusUpcoming:
			counts.Upcoming++
		case StatusCompleted:
			counts.Completed++
		case StatusRejected:
			counts.Rejected++
		default:
			counts.Pending++
		}
	}
	return counts
}

// ConversionRate is the percentage of queries that reached Booked or
// Completed. An empty collection converts at 0.
func ConversionRate(qs []Query) float64 {
	if len(qs) == 0 {
		return 0
	}
	counts := CountByStatus(qs)
	return float64(counts.Booked+counts.Completed) / float64(len(qs)) * 100
}

// Distribution is a counter keyed by label, remembering first-encountered
// insertion order so argmax ties resolve deterministically.
type Distribution struct {
	keys   []string
	counts map[string]int
}

// NewDistribution returns an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{counts: make(map[string]int)}
}

// Add increments the counter for key.
func (d *Distribution) Add(key string) {
	if _, ok := d.counts[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.counts[key]++
}

// Count returns the tally for key.
func (d *Distribution) Count(key string) int {
	return d.counts[key]
}

// Keys returns the labels in insertion order.
func (d *Distribution) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of distinct labels.
func (d *Distribution) Len() int {
	return len(d.keys)
}

// MostPopular returns the label with the highest count. Ties resolve to the
// earliest-inserted label; an empty distribution yields NoData.
func (d *Distribution) MostPopular() string {
	best := NoData
	bestCount := 0
	for _, key := range d.keys {
		if d.counts[key] > bestCount {
			best = key
			bestCount = d.counts[key]
		}
	}
	return best
}

// MarshalJSON emits the distribution as an object in insertion order.
func (d *Distribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(d.counts[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ServiceDistribution counts demand per requested service. A query listing
// three services increments three counters; one with no services increments
// none.
func ServiceDistribution(qs []Query) *Distribution {
	dist := NewDistribution()
	for _, q := range qs {
		for _, s := range q.Services {
			dist.Add(s)
		}
	}
	return dist
}

// BudgetDistribution counts queries per raw budget label. Labels are not
// normalized: distinct free-text labels are distinct buckets.
func BudgetDistribution(qs []Query) *Distribution {
	dist := NewDistribution()
	for _, q := range qs {
		dist.Add(q.Budget.Label)
	}
	return dist
}

// Client is the roll-up of all queries sharing a contact email. It is
// derived, never persisted.
type Client struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Queries []Query `json:"queries"`
}

// GroupByClient folds queries into one Client per distinct email, in a
// single pass. Name and company come from the first query seen for that
// email; later conflicting values are ignored. Query order within a client
// follows the input order.
func GroupByClient(qs []Query) []Client {
	index := make(map[string]int)
	clients := make([]Client, 0)
	for _, q := range qs {
		i, ok := index[q.Email]
		if !ok {
			i = len(clients)
			index[q.Email] = i
			clients = append(clients, Client{
				Email:   q.Email,
				Name:    q.Name,
				Company: q.Company,
			})
		}
		clients[i].Queries = append(clients[i].Queries, q)
	}
	return clients
}
