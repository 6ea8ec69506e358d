package repository

import "strings"

// RestaurantQuery describes a filtered select on restaurants.  Zero values
// mean "no filter": the zero RestaurantQuery selects everything.
type RestaurantQuery struct {
	Name     string // case-insensitive substring match on name
	Category string // exact match on category
	OrderBy  string // name | rating | created_at; anything else leaves rows unordered
	Desc     bool
	Limit    int
}

var restaurantOrderColumns = map[string]string{
	"name":       "name",
	"rating":     "rating",
	"created_at": "created_at",
}

// where builds the WHERE clause (without the keyword) and its arguments.
func (q RestaurantQuery) where() (string, []any) {
	where := []string{}
	args := []any{}
	if name := strings.TrimSpace(q.Name); name != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(name))+"%")
	}
	if cat := strings.TrimSpace(q.Category); cat != "" {
		where = append(where, "category = ?")
		args = append(args, cat)
	}
	return strings.Join(where, " AND "), args
}

func (q RestaurantQuery) orderBy() string {
	col, ok := restaurantOrderColumns[strings.ToLower(q.OrderBy)]
	if !ok {
		return ""
	}
	if q.Desc {
		return " ORDER BY " + col + " DESC, id"
	}
	return " ORDER BY " + col + " ASC, id"
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
