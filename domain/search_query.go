package domain

import (
	"strconv"
	"strings"
)

// ParseSearch turns the raw search box input into a query for one room.
// Flags are read command-line style and removed from the terms:
//
//	dinner --from bob --limit 5
//
// Unknown flags are dropped with their value.
func ParseSearch(room RoomID, input string) SearchQuery {
	query := SearchQuery{Room: room}

	parts := strings.Fields(input)
	var terms []string
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			value := parts[i+1]
			switch strings.TrimPrefix(part, "--") {
			case "from":
				query.Sender = UserID(value)
			case "limit":
				if n, err := strconv.Atoi(value); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}
		terms = append(terms, part)
	}

	query.Terms = strings.Join(terms, " ")
	return query
}
