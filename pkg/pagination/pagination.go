package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many rows any listing query can request.
	MaxLimit = 60
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes the pagination metadata returned alongside listings.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Normalize enforces the configured default and maximum limits.
func Normalize(params Params) Params {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	return params
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	normalized := Normalize(p)
	return (normalized.Page - 1) * normalized.Limit
}

// BuildPage assembles the metadata for a listing result.
func BuildPage(params Params, total int64) Page {
	normalized := Normalize(params)
	totalPages := int((total + int64(normalized.Limit) - 1) / int64(normalized.Limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return Page{
		Page:       normalized.Page,
		Limit:      normalized.Limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
