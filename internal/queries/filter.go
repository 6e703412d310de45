package queries

import "strings"

// FilterAll passes every status through Filter.
const FilterAll = "All"

// Filter narrows a query collection for display. The status predicate is an
// exact match unless statusFilter is "All" or empty; the search term matches
// case-insensitively against name, company or email. Both predicates must
// hold. Input order is preserved.
func Filter(qs []Query, statusFilter, searchTerm string) []Query {
	search := strings.ToLower(strings.TrimSpace(searchTerm))
	out := make([]Query, 0, len(qs))
	for _, q := range qs {
		if statusFilter != "" && statusFilter != FilterAll && string(q.Status) != statusFilter {
			continue
		}
		if search != "" && !matchesSearch(search, q.Name, q.Company, q.Email) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// FilterClients narrows a client roll-up by the same search semantics.
func FilterClients(clients []Client, searchTerm string) []Client {
	search := strings.ToLower(strings.TrimSpace(searchTerm))
	if search == "" {
		return clients
	}
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if matchesSearch(search, c.Name, c.Company, c.Email) {
			out = append(out, c)
		}
	}
	return out
}

func matchesSearch(search string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
