package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"smart-learning-portal/internal/domain"
)

const uniqueViolation = "23505"

// Store persists every portal record collection as JSONB documents, one
// table per collection. Constraint-bearing fields (email, student/quiz pair,
// publication flag) are lifted into plain columns so the invariants hold at
// the database, not in caller discipline.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// isUniqueViolation reports whether err is a duplicate-key error on the
// named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// Users

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO portal_users (id, email, data) VALUES ($1, $2, $3)`,
		user.ID, user.Email, data)
	if isUniqueViolation(err, "portal_users_email_key") {
		return domain.ErrEmailTaken
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.userBy(ctx, `SELECT data FROM portal_users WHERE email=$1`, email)
}

func (s *Store) UserByID(ctx context.Context, id string) (domain.User, error) {
	return s.userBy(ctx, `SELECT data FROM portal_users WHERE id=$1`, id)
}

func (s *Store) userBy(ctx context.Context, query, arg string) (domain.User, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		log.Printf("corrupt user record, treating as missing: %v", err)
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// Materials

func (s *Store) SaveMaterial(ctx context.Context, material domain.StudyMaterial) error {
	data, err := json.Marshal(material)
	if err != nil {
		return fmt.Errorf("marshal material: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO portal_materials (id, data) VALUES ($1, $2)`,
		material.ID, data)
	return err
}

func (s *Store) AllMaterials(ctx context.Context) ([]domain.StudyMaterial, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM portal_materials ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	defer rows.Close()

	var out []domain.StudyMaterial
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var m domain.StudyMaterial
		if err := json.Unmarshal(raw, &m); err != nil {
			log.Printf("corrupt material record, skipping: %v", err)
			continue
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Quizzes

func (s *Store) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO portal_quizzes (id, published, created_at, data) VALUES ($1, $2, $3, $4)`,
		quiz.ID, quiz.Published, quiz.CreatedAt, data)
	return err
}

func (s *Store) Published(ctx context.Context) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM portal_quizzes WHERE published ORDER BY created_at LIMIT 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrNoPublishedQuiz
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load published quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		log.Printf("corrupt quiz record, treating as unpublished: %v", err)
		return domain.Quiz{}, domain.ErrNoPublishedQuiz
	}
	return quiz, nil
}

func (s *Store) Unpublish(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE portal_quizzes
		 SET published = FALSE, data = jsonb_set(data, '{published}', 'false'::jsonb)
		 WHERE published`)
	return err
}

// Attempts

func (s *Store) SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO portal_attempts (id, student_id, quiz_id, data) VALUES ($1, $2, $3, $4)`,
		attempt.ID, attempt.StudentID, attempt.QuizID, data)
	if isUniqueViolation(err, "portal_attempts_student_quiz_key") {
		return domain.ErrDuplicateAttempt
	}
	return err
}

func (s *Store) AttemptByStudent(ctx context.Context, studentID, quizID string) (domain.QuizAttempt, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM portal_attempts WHERE student_id=$1 AND quiz_id=$2`,
		studentID, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("load attempt: %w", err)
	}
	var attempt domain.QuizAttempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		log.Printf("corrupt attempt record, treating as missing: %v", err)
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *Store) AllAttempts(ctx context.Context) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM portal_attempts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.QuizAttempt
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var a domain.QuizAttempt
		if err := json.Unmarshal(raw, &a); err != nil {
			log.Printf("corrupt attempt record, skipping: %v", err)
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Projects

func (s *Store) SaveProject(ctx context.Context, project domain.Project) error {
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO portal_projects (id, student_id, data) VALUES ($1, $2, $3)`,
		project.ID, project.StudentID, data)
	return err
}

func (s *Store) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM portal_projects WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("load project: %w", err)
	}
	var project domain.Project
	if err := json.Unmarshal(raw, &project); err != nil {
		log.Printf("corrupt project record, treating as missing: %v", err)
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return project, nil
}

func (s *Store) UpdateProject(ctx context.Context, project domain.Project) error {
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE portal_projects SET data=$2 WHERE id=$1`, project.ID, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (s *Store) ProjectsByStudent(ctx context.Context, studentID string) ([]domain.Project, error) {
	return s.projects(ctx, `SELECT data FROM portal_projects WHERE student_id=$1 ORDER BY seq`, studentID)
}

func (s *Store) AllProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects(ctx, `SELECT data FROM portal_projects ORDER BY seq`)
}

func (s *Store) projects(ctx context.Context, query string, args ...interface{}) ([]domain.Project, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var p domain.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Printf("corrupt project record, skipping: %v", err)
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
