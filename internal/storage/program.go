package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

// ListPrograms возвращает весь каталог open-source программ по алфавиту.
// Каталог небольшой, фильтрация по тегам и поиску выполняется в сервисном
// слое поверх закешированного списка.
func (s *Storage) ListPrograms(ctx context.Context) ([]*models.Program, error) {
	const op = "storage.ListPrograms"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, url, array_to_string(tags, ',')
			  FROM programs
			  ORDER BY name ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Program
	for rows.Next() {
		var item models.Program
		var tags string
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.URL, &tags); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if tags != "" {
			item.Tags = strings.Split(tags, ",")
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
