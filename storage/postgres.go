package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledgerly/models"

	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

// PostgresStore keeps subscribers in the subscribers table, where email is
// the primary key. The unique constraint decides duplicates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscribers WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check subscriber: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Add(ctx context.Context, sub models.Subscriber) (bool, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscribers (email, signup_date, source, survey_sent, survey_completed, reward_eligible, last_emailed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sub.Email, sub.SignupDate, sub.Source, sub.SurveySent, sub.SurveyCompleted, sub.RewardEligible, sub.LastEmailedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return true, nil
}

// All returns subscribers newest first.
func (s *PostgresStore) All(ctx context.Context) ([]models.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT email, signup_date, source, survey_sent, survey_completed, reward_eligible, last_emailed_at
		FROM subscribers
		ORDER BY signup_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	subs := []models.Subscriber{}
	for rows.Next() {
		var sub models.Subscriber
		var emailedAt sql.NullTime
		if err := rows.Scan(
			&sub.Email,
			&sub.SignupDate,
			&sub.Source,
			&sub.SurveySent,
			&sub.SurveyCompleted,
			&sub.RewardEligible,
			&emailedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber row: %w", err)
		}
		if emailedAt.Valid {
			t := emailedAt.Time
			sub.LastEmailedAt = &t
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriber rows: %w", err)
	}

	return subs, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
