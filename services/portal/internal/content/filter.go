package content

import (
	"fmt"
	"strings"
)

type Filter struct {
	PublishedOnly bool
	Category      string
	Limit         int
}

// CacheKey identifies the filter within one content type's cache namespace.
func (f Filter) CacheKey() string {
	return fmt.Sprintf("pub=%t:cat=%s:limit=%d", f.PublishedOnly, strings.ToLower(strings.TrimSpace(f.Category)), f.Limit)
}
