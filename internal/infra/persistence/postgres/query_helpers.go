package postgres

import (
	"strings"

	"gorm.io/gorm"
)

const maxPageSize = 100

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so user input only matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// paginate applies limit and offset. A non-positive limit keeps the default page size.
func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
