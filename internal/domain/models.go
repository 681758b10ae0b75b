package domain

import "time"

// Role distinguishes the two kinds of portal accounts.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is a portal account. Password is an opaque string compared by
// equality, matching the original portal's behavior; it is not a secure
// credential scheme and is flagged as such in the design notes.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	USN      string `json:"usn,omitempty"`     // student seat number
	AdminID  string `json:"adminId,omitempty"` // admin identifier
}

// StudyMaterial is an admin-published study handout, optionally with an
// attached PDF carried as an opaque base64 data URL.
type StudyMaterial struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	PDFData     string    `json:"pdfData,omitempty"`
	PDFName     string    `json:"pdfName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Question is a single multiple-choice question; exactly one option,
// identified by CorrectIndex, is correct.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	ImageData    string   `json:"imageData,omitempty"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Quiz is an ordered set of questions with a time limit. Quizzes are
// immutable once saved; at most one quiz is published at a time.
type Quiz struct {
	ID          string     `json:"id"`
	Questions   []Question `json:"questions"`
	TimeMinutes int        `json:"timeMinutes"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Duration returns the quiz time limit in seconds.
func (q Quiz) Duration() int {
	return q.TimeMinutes * 60
}

// Unanswered is the answer-slot sentinel for a question the student never
// selected an option for. It never compares equal to a valid correct index.
const Unanswered = -1

// QuizAttempt is one student's scored run through a quiz. At most one
// attempt exists per (student, quiz) pair.
type QuizAttempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	USN         string    `json:"usn"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	TimeTaken   int       `json:"timeTaken"` // seconds
	Answers     []int     `json:"answers"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ProjectStatus is the review state of a submitted project.
type ProjectStatus string

const (
	ProjectPending  ProjectStatus = "pending"
	ProjectApproved ProjectStatus = "approved"
	ProjectRejected ProjectStatus = "rejected"
)

// Project is a student submission awaiting a single admin decision.
type Project struct {
	ID           string        `json:"id"`
	StudentID    string        `json:"studentId"`
	StudentName  string        `json:"studentName"`
	StudentEmail string        `json:"studentEmail"`
	Title        string        `json:"title"`
	Summary      string        `json:"summary"`
	ImageData    string        `json:"imageData,omitempty"`
	PDFData      string        `json:"pdfData,omitempty"`
	PDFName      string        `json:"pdfName,omitempty"`
	Status       ProjectStatus `json:"status"`
	SubmittedAt  time.Time     `json:"submittedAt"`
}

// LeaderboardEntry is one ranked row: a student's best attempt.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	USN         string    `json:"usn"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	TimeTaken   int       `json:"timeTaken"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Leaderboard is the ranked best-attempt-per-student view. QuizID is empty
// for the global board pooling all quizzes.
type Leaderboard struct {
	QuizID    string             `json:"quizId,omitempty"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
