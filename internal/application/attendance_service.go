package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/leavedesk/internal/workcal"
)

// DefaultVouchersPerDay is the fixed meal-voucher token allotment granted for
// each worked day.
const DefaultVouchersPerDay = 8

// AttendanceService derives monthly working-day counts and the meal-voucher
// entitlement from approved absences. It only reads event state; quota
// enforcement happens at creation time, not here.
type AttendanceService struct {
	events         EventRepository
	vouchersPerDay int
	logger         *slog.Logger
}

// NewAttendanceService wires the event repository. A vouchersPerDay of zero
// or less selects DefaultVouchersPerDay.
func NewAttendanceService(events EventRepository, vouchersPerDay int) *AttendanceService {
	return NewAttendanceServiceWithLogger(events, vouchersPerDay, nil)
}

// NewAttendanceServiceWithLogger constructs an AttendanceService with a
// specified logger.
func NewAttendanceServiceWithLogger(events EventRepository, vouchersPerDay int, logger *slog.Logger) *AttendanceService {
	if vouchersPerDay <= 0 {
		vouchersPerDay = DefaultVouchersPerDay
	}
	return &AttendanceService{
		events:         events,
		vouchersPerDay: vouchersPerDay,
		logger:         defaultLogger(logger),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// CountApprovedAbsences counts Accepted events of any type for the user
// within the given calendar month. A failed lookup yields zero: absence of
// records is not an error for this derived metric, though the failure is
// still logged for operators.
func (s *AttendanceService) CountApprovedAbsences(ctx context.Context, userID string, year int, month time.Month) int {
	if s == nil || s.events == nil {
		return 0
	}

	first, last := workcal.MonthRange(year, month)
	count, err := s.events.CountEvents(ctx, EventRepositoryFilter{
		UserID:   userID,
		Status:   EventStatusAccepted,
		DateFrom: &first,
		DateTo:   &last,
	})
	if err != nil {
		s.loggerWith(ctx, "CountApprovedAbsences", "user_id", userID).
			WarnContext(ctx, "absence lookup failed, reporting zero", "error", err)
		return 0
	}
	return count
}

// MealVoucherEntitlement returns the voucher token total for the user and
// month: (working days in month - approved absences) * tokens per day.
//
// The result is not clamped at zero. When approved absences exceed the
// month's working days the raw negative value is returned.
func (s *AttendanceService) MealVoucherEntitlement(ctx context.Context, userID string, year int, month time.Month) (int, error) {
	if s == nil || s.events == nil {
		return 0, fmt.Errorf("event repository not configured")
	}
	if month < time.January || month > time.December {
		vErr := &ValidationError{}
		vErr.add("month", "month must be between 1 and 12")
		return 0, vErr
	}

	workingDays := workcal.WorkingDaysInMonth(year, month)
	absences := s.CountApprovedAbsences(ctx, userID, year, month)
	return (workingDays - absences) * s.vouchersPerDay, nil
}
