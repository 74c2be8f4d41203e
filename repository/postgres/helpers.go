package postgres

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/taskboard/domain"
)

const uniqueViolation = "23505"

func marshalHistory(history []domain.HistoryEntry) ([]byte, error) {
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	return json.Marshal(history)
}

func unmarshalHistory(raw []byte) ([]domain.HistoryEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var history []domain.HistoryEntry
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return history, nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
