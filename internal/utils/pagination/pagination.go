package pagination

// Default limits differ by call site: user-scoped views page at 50, the
// public feed at 100.
const (
	DefaultUserLimit   = 50
	DefaultPublicLimit = 100
)

// Page is a normalized (page, limit) window over a ranked sequence.
type Page struct {
	Number int
	Limit  int
}

// Normalize coerces raw page/limit inputs into a usable window. Zero or
// negative values fall back to page 1 and the given default limit, so an
// out-of-range request can never error — it just lands on an empty window.
func Normalize(page, limit, defaultLimit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return Page{Number: page, Limit: limit}
}

// Offset returns the number of ranked items to skip: (page-1) * limit.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
