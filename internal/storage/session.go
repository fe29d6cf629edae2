package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

// ListSessions возвращает все сессии с вложенными темами.
// Сессии отсортированы по дате по убыванию, темы внутри сессии —
// по sort_order по возрастанию. Сортировка является частью контракта,
// обработчики отдают список как есть.
func (s *Storage) ListSessions(ctx context.Context) ([]*models.Session, error) {
	const op = "storage.ListSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.title, s.description, s.video_url, s.session_date,
			      t.id, t.timestamp_mark, t.topic, t.sort_order
			  FROM weekly_sessions s
			  LEFT JOIN session_topics t ON t.session_id = s.id
			  ORDER BY s.session_date DESC, s.id, t.sort_order ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Session
	var current *models.Session
	for rows.Next() {
		var (
			sessionID, title, videoURL   string
			description                  *string
			sessionDate                  time.Time
			topicID, timestampMark, name *string
			sortOrder                    *int
		)
		if err := rows.Scan(&sessionID, &title, &description, &videoURL, &sessionDate,
			&topicID, &timestampMark, &name, &sortOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if current == nil || current.ID != sessionID {
			current = &models.Session{
				ID:          sessionID,
				Title:       title,
				Description: description,
				VideoURL:    videoURL,
				SessionDate: sessionDate,
				Topics:      []models.SessionTopic{},
			}
			result = append(result, current)
		}
		// LEFT JOIN: у сессии без тем строка с NULL темой
		if topicID != nil {
			topic := models.SessionTopic{ID: *topicID, Topic: *name}
			if timestampMark != nil {
				topic.Timestamp = *timestampMark
			}
			if sortOrder != nil {
				topic.SortOrder = *sortOrder
			}
			current.Topics = append(current.Topics, topic)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateSession вставляет сессию вместе с темами и возвращает её ID.
func (s *Storage) CreateSession(ctx context.Context, session models.Session) (string, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var newID string
	query := `INSERT INTO weekly_sessions (title, description, video_url, session_date)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := tx.QueryRowContext(ctx, query,
		session.Title, session.Description, session.VideoURL, session.SessionDate).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	for _, topic := range session.Topics {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_topics (session_id, timestamp_mark, topic, sort_order)
			 VALUES ($1, $2, $3, $4)`,
			newID, topic.Timestamp, topic.Topic, topic.SortOrder)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateSession обновляет сессию и полностью заменяет её темы.
// Возвращает количество изменённых сессий (0, если ID не найден).
func (s *Storage) UpdateSession(ctx context.Context, session models.Session) (int, error) {
	const op = "storage.UpdateSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE weekly_sessions
		 SET title = $1, description = $2, video_url = $3, session_date = $4
		 WHERE id = $5`,
		session.Title, session.Description, session.VideoURL, session.SessionDate, session.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_topics WHERE session_id = $1`, session.ID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	for _, topic := range session.Topics {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_topics (session_id, timestamp_mark, topic, sort_order)
			 VALUES ($1, $2, $3, $4)`,
			session.ID, topic.Timestamp, topic.Topic, topic.SortOrder)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
