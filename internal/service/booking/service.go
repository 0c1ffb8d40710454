package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/showcase/backend/internal/model/booking"
)

// DateLayout is the date format the booking form submits.
const DateLayout = "2006-01-02"

var ErrDispatchFailed = errors.New("booking dispatch failed")

// ValidationError lists the fields that failed the form gate.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid booking: " + strings.Join(keys, ", ")
}

// Dispatcher hands an accepted booking to the external email service.
type Dispatcher interface {
	Dispatch(ctx context.Context, b booking.Booking) error
}

// Service validates booking requests and dispatches them.
type Service struct {
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a dispatcher into the booking flow.
func NewService(dispatcher Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Submit validates req and dispatches it. Validation failures return a
// *ValidationError; dispatch failures wrap ErrDispatchFailed.
func (s *Service) Submit(ctx context.Context, req booking.Request) (booking.Booking, error) {
	req = normalize(req)
	if err := Validate(req); err != nil {
		return booking.Booking{}, err
	}

	b := booking.Booking{
		ID:        uuid.NewString(),
		Request:   req,
		CreatedAt: s.now().UTC(),
	}

	if err := s.dispatcher.Dispatch(ctx, b); err != nil {
		s.logger.Error("booking dispatch failed", zap.String("booking", b.ID), zap.Error(err))
		return booking.Booking{}, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	s.logger.Info("booking accepted", zap.String("booking", b.ID), zap.String("service", req.Service))
	return b, nil
}

func normalize(req booking.Request) booking.Request {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Service = strings.TrimSpace(req.Service)
	req.Date = strings.TrimSpace(req.Date)
	req.Message = strings.TrimSpace(req.Message)
	return req
}

// Validate is the precondition gate in front of dispatch.
func Validate(req booking.Request) error {
	fields := make(map[string]string)

	if req.Name == "" {
		fields["name"] = "required"
	}
	switch {
	case req.Email == "":
		fields["email"] = "required"
	case !govalidator.IsEmail(req.Email):
		fields["email"] = "invalid email address"
	}
	if req.Phone != "" && !govalidator.Matches(req.Phone, `^\+?[0-9 ()-]{6,20}$`) {
		fields["phone"] = "invalid phone number"
	}
	if req.Service == "" {
		fields["service"] = "required"
	}
	if req.Date == "" {
		fields["date"] = "required"
	} else if _, err := time.Parse(DateLayout, req.Date); err != nil {
		fields["date"] = "expected YYYY-MM-DD"
	}
	if len(req.Message) > 2000 {
		fields["message"] = "too long"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
