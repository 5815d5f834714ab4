package models

import (
	"time"
)

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusRejected  ApplicationStatus = "rejected"
	StatusOffer     ApplicationStatus = "offer"
)

// ValidStatus reports whether s is one of the known application states.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusPending, StatusApplied, StatusInterview, StatusRejected, StatusOffer:
		return true
	}
	return false
}

type Profile struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Skills     []string  `json:"skills"`
	Experience string    `json:"experience"`
	Education  string    `json:"education"`
	Location   string    `json:"location"`
	Phone      string    `json:"phone"`
	TargetRole string    `json:"target_role"`
	ResumeText string    `json:"resume_text,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type Application struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	JobTitle   string            `json:"job_title"`
	Company    string            `json:"company"`
	JobURL     string            `json:"job_url"`
	Status     ApplicationStatus `json:"status"`
	Notes      string            `json:"notes,omitempty"`
	Screenshot string            `json:"screenshot,omitempty"` // base64 PNG evidence
	CreatedAt  time.Time         `json:"created_at"`
}

type ChatMessage struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}
