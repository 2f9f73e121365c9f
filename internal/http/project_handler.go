package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/leavedesk/internal/application"
)

type projectService interface {
	CreateProject(ctx context.Context, params application.CreateProjectParams) (application.Project, error)
	GetProject(ctx context.Context, id string) (application.Project, error)
	ListProjects(ctx context.Context) ([]application.Project, error)
	AssignEmployee(ctx context.Context, params application.AssignEmployeeParams) (application.Assignment, error)
	GetAssignment(ctx context.Context, principal application.Principal, id string) (application.Assignment, error)
	ListAssignments(ctx context.Context, principal application.Principal) ([]application.Assignment, error)
}

type ProjectHandler struct {
	service   projectService
	responder responder
	logger    *slog.Logger
}

func NewProjectHandler(service projectService, logger *slog.Logger) *ProjectHandler {
	base := defaultLogger(logger)
	return &ProjectHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProjectHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProjectHandler", operation, attrs...)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode project request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	project, err := h.service.CreateProject(r.Context(), application.CreateProjectParams{
		Principal: principal,
		Input: application.ProjectInput{
			Name:      req.Name,
			ManagerID: strings.TrimSpace(req.ManagerID),
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "project creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("project_id", project.ID).InfoContext(r.Context(), "project created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	project, err := h.service.GetProject(r.Context(), projectID)
	if err != nil {
		h.log(r.Context(), "Get", "project_id", projectID).ErrorContext(r.Context(), "project lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "project listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]projectDTO, 0, len(projects))
	for _, project := range projects {
		dtos = append(dtos, toProjectDTO(project))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, projectListResponse{Projects: dtos})
}

func (h *ProjectHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateAssignment", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assignment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "CreateAssignment",
		"principal_id", principal.UserID,
		"project_id", input.ProjectID,
		"employee_id", input.EmployeeID,
	)

	assignment, err := h.service.AssignEmployee(r.Context(), application.AssignEmployeeParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "assignment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("assignment_id", assignment.ID).InfoContext(r.Context(), "assignment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *ProjectHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assignmentID, ok := AssignmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(assignmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAssignmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	assignment, err := h.service.GetAssignment(r.Context(), principal, assignmentID)
	if err != nil {
		h.log(r.Context(), "GetAssignment", "assignment_id", assignmentID).ErrorContext(r.Context(), "assignment lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *ProjectHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	assignments, err := h.service.ListAssignments(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListAssignments", "principal_id", principal.UserID).ErrorContext(r.Context(), "assignment listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]assignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		dtos = append(dtos, toAssignmentDTO(assignment))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentListResponse{Assignments: dtos})
}

type projectRequest struct {
	Name      string `json:"name"`
	ManagerID string `json:"manager_id"`
}

type assignmentRequest struct {
	ProjectID  string `json:"project_id"`
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (req assignmentRequest) toInput() (application.AssignmentInput, error) {
	input := application.AssignmentInput{
		ProjectID:  strings.TrimSpace(req.ProjectID),
		EmployeeID: strings.TrimSpace(req.EmployeeID),
	}

	if raw := strings.TrimSpace(req.StartDate); raw != "" {
		start, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return application.AssignmentInput{}, errors.New("開始日は YYYY-MM-DD 形式で指定してください。")
		}
		input.StartDate = start
	}
	if raw := strings.TrimSpace(req.EndDate); raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return application.AssignmentInput{}, errors.New("終了日は YYYY-MM-DD 形式で指定してください。")
		}
		input.EndDate = end
	}
	return input, nil
}

type projectDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ManagerID string `json:"manager_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type projectResponse struct {
	Project projectDTO `json:"project"`
}

type projectListResponse struct {
	Projects []projectDTO `json:"projects"`
}

type assignmentDTO struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	ManagerID  string `json:"manager_id"`
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type assignmentResponse struct {
	Assignment assignmentDTO `json:"assignment"`
}

type assignmentListResponse struct {
	Assignments []assignmentDTO `json:"assignments"`
}

func toProjectDTO(project application.Project) projectDTO {
	return projectDTO{
		ID:        project.ID,
		Name:      project.Name,
		ManagerID: project.ManagerID,
		CreatedAt: project.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: project.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toAssignmentDTO(assignment application.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:         assignment.ID,
		ProjectID:  assignment.ProjectID,
		ManagerID:  assignment.ManagerID,
		EmployeeID: assignment.EmployeeID,
		StartDate:  assignment.StartDate.UTC().Format(dateLayout),
		EndDate:    assignment.EndDate.UTC().Format(dateLayout),
		CreatedAt:  assignment.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  assignment.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
