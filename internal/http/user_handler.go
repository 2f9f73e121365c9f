package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/leavedesk/internal/application"
	"github.com/example/leavedesk/internal/workcal"
)

type userService interface {
	CreateUser(ctx context.Context, input application.UserInput) (application.User, error)
	GetUser(ctx context.Context, id string) (application.User, error)
	ListUsers(ctx context.Context) ([]application.User, error)
}

type attendanceService interface {
	CountApprovedAbsences(ctx context.Context, userID string, year int, month time.Month) int
	MealVoucherEntitlement(ctx context.Context, userID string, year int, month time.Month) (int, error)
}

type UserHandler struct {
	service    userService
	attendance attendanceService
	responder  responder
	now        func() time.Time
	logger     *slog.Logger
}

func NewUserHandler(service userService, attendance attendanceService, now func() time.Time, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &UserHandler{
		service:    service,
		attendance: attendance,
		responder:  newResponder(base),
		now:        now,
		logger:     base,
	}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// Create registers a new account. Sign-up is open, so no principal is
// required here.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode user request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "email", strings.TrimSpace(strings.ToLower(req.Email)))

	user, err := h.service.CreateUser(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "user creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "user created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: toUserDTO(user)})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "user listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]userDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toUserDTO(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userListResponse{Users: dtos})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	h.respondWithUser(w, r, userID)
}

// GetCurrent resolves the authenticated principal's own directory entry.
func (h *UserHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal.UserID == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	h.respondWithUser(w, r, principal.UserID)
}

func (h *UserHandler) respondWithUser(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.log(r.Context(), "Get", "user_id", userID).ErrorContext(r.Context(), "user lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, userResponse{User: toUserDTO(user)})
}

// MealVouchers reports the voucher entitlement for the user and month. The
// month arrives as a path segment (1-12); an optional year query parameter
// overrides the current year.
func (h *UserHandler) MealVouchers(w http.ResponseWriter, r *http.Request, monthParam string) {
	if h == nil || h.service == nil || h.attendance == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	monthNum, err := strconv.Atoi(strings.TrimSpace(monthParam))
	if err != nil || monthNum < 1 || monthNum > 12 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
		return
	}
	month := time.Month(monthNum)

	year := h.now().UTC().Year()
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
			return
		}
		year = parsed
	}

	// Resolve the user first so an unknown id answers 404, not a zero report.
	if _, err := h.service.GetUser(r.Context(), userID); err != nil {
		h.log(r.Context(), "MealVouchers", "user_id", userID).ErrorContext(r.Context(), "user lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	vouchers, err := h.attendance.MealVoucherEntitlement(r.Context(), userID, year, month)
	if err != nil {
		h.log(r.Context(), "MealVouchers", "user_id", userID).ErrorContext(r.Context(), "entitlement computation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, mealVoucherResponse{
		UserID:           userID,
		Year:             year,
		Month:            monthNum,
		WorkingDays:      workcal.WorkingDaysInMonth(year, month),
		ApprovedAbsences: h.attendance.CountApprovedAbsences(r.Context(), userID, year, month),
		Vouchers:         vouchers,
	})
}

type userRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

func (req userRequest) toInput() application.UserInput {
	return application.UserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        application.Role(strings.TrimSpace(req.Role)),
	}
}

type userDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type userResponse struct {
	User userDTO `json:"user"`
}

type userListResponse struct {
	Users []userDTO `json:"users"`
}

type mealVoucherResponse struct {
	UserID           string `json:"user_id"`
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	WorkingDays      int    `json:"working_days"`
	ApprovedAbsences int    `json:"approved_absences"`
	Vouchers         int    `json:"vouchers"`
}

func toUserDTO(user application.User) userDTO {
	return userDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   user.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
