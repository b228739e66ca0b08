package transactions

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securefin/internal/models"
)

func scanAll(rows *sql.Rows) ([]*models.Transaction, error) {
	defer rows.Close()

	result := []*models.Transaction{}
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.UserName, &t.AmountEncrypted, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
