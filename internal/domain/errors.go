package domain

import "errors"

var (
	// ErrNoPublishedQuiz is returned when no quiz is currently published.
	ErrNoPublishedQuiz = errors.New("no published quiz")
	// ErrQuizNotFound indicates a referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAlreadyAttempted is returned when the student has a recorded
	// attempt for the published quiz; the session opens in results view.
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrAttemptNotFound indicates no attempt exists for a (student, quiz) pair.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrDuplicateAttempt is returned by stores rejecting a second attempt
	// for the same (student, quiz) pair.
	ErrDuplicateAttempt = errors.New("duplicate attempt for student and quiz")
	// ErrAttemptNotInProgress is returned for answer or submit calls on a
	// session that is not in the in-progress state.
	ErrAttemptNotInProgress = errors.New("attempt not in progress")
	// ErrIndexOutOfRange is returned when a question or option index falls
	// outside the quiz shape.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrSessionBusy is returned when another connection is already driving
	// the same attempt session.
	ErrSessionBusy = errors.New("attempt session already claimed")

	// ErrProjectNotFound indicates a referenced project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectDecided is returned when approving or rejecting a project
	// that has already left the pending state.
	ErrProjectDecided = errors.New("project already decided")

	// ErrEmailTaken is returned at signup when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when login lookup fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound indicates a referenced account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when the acting user lacks the required role.
	ErrForbidden = errors.New("operation not allowed for role")

	// ErrValidation wraps user-correctable input problems; callers surface
	// the message and keep state unchanged.
	ErrValidation = errors.New("validation failed")
)
