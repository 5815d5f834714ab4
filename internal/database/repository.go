package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-hirekit/internal/models"
	"go-hirekit/internal/quota"
)

// Repository implements every collaborator store on one pgx pool:
// profiles, usage counters, subscriptions, applications, transcripts.
type Repository struct {
	db *pgxpool.Pool
}

func Connect(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode (PgBouncer) choke on the
	// statement cache, so force plain exec mode.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// ---------------- PROFILES ----------------

// GetProfile returns nil without error when the user has no profile yet.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	query := `
		SELECT id, user_id, name, skills, experience, education, location, phone, target_role, resume_text, created_at, updated_at
		FROM profiles WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Skills, &p.Experience, &p.Education,
		&p.Location, &p.Phone, &p.TargetRole, &p.ResumeText, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	query := `
		INSERT INTO profiles (id, user_id, name, skills, experience, education, location, phone, target_role, resume_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id)
		DO UPDATE SET name = EXCLUDED.name, skills = EXCLUDED.skills, experience = EXCLUDED.experience,
			education = EXCLUDED.education, location = EXCLUDED.location, phone = EXCLUDED.phone,
			target_role = EXCLUDED.target_role, resume_text = EXCLUDED.resume_text, updated_at = now()
		RETURNING id, user_id, name, skills, experience, education, location, phone, target_role, resume_text, created_at, updated_at`

	var saved models.Profile
	err := r.db.QueryRow(ctx, query, uuid.NewString(), p.UserID, p.Name, p.Skills, p.Experience,
		p.Education, p.Location, p.Phone, p.TargetRole, p.ResumeText).Scan(
		&saved.ID, &saved.UserID, &saved.Name, &saved.Skills, &saved.Experience, &saved.Education,
		&saved.Location, &saved.Phone, &saved.TargetRole, &saved.ResumeText, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &saved, nil
}

// ---------------- SUBSCRIPTIONS & USAGE ----------------

// GetPlan resolves the user's active plan, defaulting to free.
func (r *Repository) GetPlan(ctx context.Context, userID string) (quota.Plan, error) {
	var plan string
	err := r.db.QueryRow(ctx,
		`SELECT plan FROM subscriptions WHERE user_id = $1 AND status = 'active'`, userID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return quota.PlanFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get plan: %w", err)
	}
	return quota.Plan(plan), nil
}

// GetUsage returns today's counters, implicit zero when no row exists.
func (r *Repository) GetUsage(ctx context.Context, userID, day string) (quota.Counters, error) {
	var c quota.Counters
	err := r.db.QueryRow(ctx,
		`SELECT chat_count, apply_count, resume_count, upload_count FROM usage WHERE user_id = $1 AND day = $2`,
		userID, day).Scan(&c.Chat, &c.Apply, &c.Resume, &c.Upload)
	if errors.Is(err, pgx.ErrNoRows) {
		return quota.Counters{}, nil
	}
	if err != nil {
		return quota.Counters{}, fmt.Errorf("failed to get usage: %w", err)
	}
	return c, nil
}

var usageColumns = map[quota.Resource]string{
	quota.ResourceChat:   "chat_count",
	quota.ResourceApply:  "apply_count",
	quota.ResourceResume: "resume_count",
	quota.ResourceUpload: "upload_count",
}

// IncrementUsage bumps exactly one counter column in a single upsert
// statement. This is the atomicity the quota gate relies on: two
// concurrent increments for the same key both land.
func (r *Repository) IncrementUsage(ctx context.Context, userID, day string, res quota.Resource) error {
	col, ok := usageColumns[res]
	if !ok {
		return fmt.Errorf("unknown usage resource %q", res)
	}

	query := fmt.Sprintf(`
		INSERT INTO usage (user_id, day, %s) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day)
		DO UPDATE SET %s = usage.%s + 1`, col, col, col)

	if _, err := r.db.Exec(ctx, query, userID, day); err != nil {
		return fmt.Errorf("failed to increment %s usage: %w", res, err)
	}
	return nil
}

// ---------------- APPLICATIONS ----------------

func (r *Repository) CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	app.ID = uuid.NewString()
	query := `
		INSERT INTO applications (id, user_id, job_title, company, job_url, status, notes, screenshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query, app.ID, app.UserID, app.JobTitle, app.Company,
		app.JobURL, app.Status, app.Notes, app.Screenshot).Scan(&app.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	return app, nil
}

func (r *Repository) ListApplications(ctx context.Context, userID string) ([]models.Application, error) {
	query := `
		SELECT id, user_id, job_title, company, job_url, status, notes, created_at
		FROM applications WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobTitle, &a.Company, &a.JobURL,
			&a.Status, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application not found")
	}
	return nil
}

// ---------------- CHAT TRANSCRIPTS ----------------

func (r *Repository) SaveChatMessage(ctx context.Context, msg models.ChatMessage) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_history (id, user_id, session_id, role, content) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), msg.UserID, msg.SessionID, msg.Role, msg.Content)
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// ListChatSessions groups a user's history by session, titled with the
// first user message of each.
func (r *Repository) ListChatSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	query := `
		SELECT session_id, content, created_at FROM chat_history
		WHERE user_id = $1 AND role = 'user'
		ORDER BY created_at DESC LIMIT 1000`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	sessions := []models.ChatSession{}
	for rows.Next() {
		var sessionID, content string
		var createdAt time.Time
		if err := rows.Scan(&sessionID, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		if seen[sessionID] {
			continue
		}
		seen[sessionID] = true

		title := content
		if len(title) > 30 {
			title = title[:30] + "..."
		}
		sessions = append(sessions, models.ChatSession{ID: sessionID, Title: title, UpdatedAt: createdAt})
	}
	return sessions, rows.Err()
}

func (r *Repository) DeleteChatSession(ctx context.Context, userID, sessionID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM chat_history WHERE user_id = $1 AND session_id = $2`, userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	return nil
}
