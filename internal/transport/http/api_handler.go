package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
)

// APIHandler exposes the portal's request/response surface: accounts,
// materials, quiz publishing, projects, and the leaderboard. The acting user
// arrives as an explicit ID in each request and is resolved to an account
// before any service call; nothing reads an ambient session.
type APIHandler struct {
	accounts  *app.AccountService
	materials *app.MaterialService
	authoring *app.AuthoringService
	projects  *app.ProjectService
	boards    *app.LeaderboardService
	quizzes   app.PublishedQuizSource
}

func NewAPIHandler(accounts *app.AccountService, materials *app.MaterialService, authoring *app.AuthoringService, projects *app.ProjectService, boards *app.LeaderboardService, quizzes app.PublishedQuizSource) *APIHandler {
	return &APIHandler{
		accounts:  accounts,
		materials: materials,
		authoring: authoring,
		projects:  projects,
		boards:    boards,
		quizzes:   quizzes,
	}
}

// Register wires every endpoint onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/signup", h.handleSignup)
	mux.HandleFunc("/api/login", h.handleLogin)
	mux.HandleFunc("/api/materials", h.handleMaterials)
	mux.HandleFunc("/api/quiz", h.handleQuiz)
	mux.HandleFunc("/api/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/api/projects", h.handleProjects)
	mux.HandleFunc("/api/projects/decide", h.handleDecide)
}

func (h *APIHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     domain.Role `json:"role"`
		USN      string      `json:"usn"`
		AdminID  string      `json:"adminId"`
	}
	if !decode(w, r, &req) {
		return
	}
	roleID := req.USN
	if req.Role == domain.RoleAdmin {
		roleID = req.AdminID
	}
	user, err := h.accounts.SignUp(r.Context(), req.Name, req.Email, req.Password, req.Role, roleID)
	if err != nil {
		writeError(w, err)
		return
	}
	user.Password = ""
	writeJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     domain.Role `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	user, err := h.accounts.LogIn(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	user.Password = ""
	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) handleMaterials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		materials, err := h.materials.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, materials)
	case http.MethodPost:
		var req struct {
			AdminID     string `json:"adminId"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Content     string `json:"content"`
			PDFData     string `json:"pdfData"`
			PDFName     string `json:"pdfName"`
		}
		if !decode(w, r, &req) {
			return
		}
		admin, err := h.accounts.ByID(r.Context(), req.AdminID)
		if err != nil {
			writeError(w, err)
			return
		}
		material, err := h.materials.Add(r.Context(), admin, req.Title, req.Description, req.Content, req.PDFData, req.PDFName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, material)
	default:
		methodNotAllowed(w)
	}
}

func (h *APIHandler) handleQuiz(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		quiz, err := h.quizzes.Published(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		// Availability summary only; questions travel over the attempt
		// websocket once a session opens.
		writeJSON(w, http.StatusOK, map[string]any{
			"quizId":        quiz.ID,
			"questionCount": len(quiz.Questions),
			"timeMinutes":   quiz.TimeMinutes,
		})
	case http.MethodPost:
		var req struct {
			AdminID     string            `json:"adminId"`
			TimeMinutes int               `json:"timeMinutes"`
			Questions   []domain.Question `json:"questions"`
		}
		if !decode(w, r, &req) {
			return
		}
		admin, err := h.accounts.ByID(r.Context(), req.AdminID)
		if err != nil {
			writeError(w, err)
			return
		}
		quiz, err := h.authoring.PublishQuiz(r.Context(), admin, req.Questions, req.TimeMinutes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, quiz)
	default:
		methodNotAllowed(w)
	}
}

func (h *APIHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	board, err := h.boards.Leaderboard(r.Context(), r.URL.Query().Get("quizId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *APIHandler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var (
			projects []domain.Project
			err      error
		)
		if studentID := r.URL.Query().Get("studentId"); studentID != "" {
			projects, err = h.projects.ByStudent(r.Context(), studentID)
		} else {
			projects, err = h.projects.All(r.Context())
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		var req struct {
			StudentID string `json:"studentId"`
			Title     string `json:"title"`
			Summary   string `json:"summary"`
			ImageData string `json:"imageData"`
			PDFData   string `json:"pdfData"`
			PDFName   string `json:"pdfName"`
		}
		if !decode(w, r, &req) {
			return
		}
		student, err := h.accounts.ByID(r.Context(), req.StudentID)
		if err != nil {
			writeError(w, err)
			return
		}
		project, err := h.projects.Submit(r.Context(), student, req.Title, req.Summary, req.ImageData, req.PDFData, req.PDFName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	default:
		methodNotAllowed(w)
	}
}

func (h *APIHandler) handleDecide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		AdminID   string `json:"adminId"`
		ProjectID string `json:"projectId"`
		Approve   bool   `json:"approve"`
	}
	if !decode(w, r, &req) {
		return
	}
	admin, err := h.accounts.ByID(r.Context(), req.AdminID)
	if err != nil {
		writeError(w, err)
		return
	}
	project, err := h.projects.Decide(r.Context(), admin, req.ProjectID, req.Approve)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNoPublishedQuiz),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrAlreadyAttempted),
		errors.Is(err, domain.ErrDuplicateAttempt),
		errors.Is(err, domain.ErrProjectDecided):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
