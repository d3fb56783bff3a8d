package pagination

const (
	// DefaultLimit is the storefront page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list call can request.
	MaxLimit = 100
	// Step is how much the catalog window grows on each load-more.
	Step = 20
)

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Params holds list inputs passed to the backend. Cursor is the opaque
// afterDate value echoed back from the previous page; it is never inspected
// client-side.
type Params struct {
	Limit  int
	Cursor string
	UserID string
}
