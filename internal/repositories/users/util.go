package users

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/common"
)

func profileOrEmpty(doc string) string {
	if doc == "" {
		return common.EmptyProfileDocument
	}
	return doc
}

// affectedOne turns an UPDATE result into ErrorNotFound when no row matched.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
