package reservation

import (
	"context"
	"strings"
	"time"

	"winter-feast/internal/logger"
	"winter-feast/internal/models"
)

// Repository is the reservation storage needed by the service.
//
// CreateReservation must evaluate both invariants — one reservation per
// user and the per-table-type capacity — against a consistent snapshot
// together with the insert, so two concurrent requests for the last slot
// cannot both succeed.
type Repository interface {
	CreateReservation(ctx context.Context, r *models.Reservation, capacity int) error
	ListReservationsByUser(ctx context.Context, userID int) ([]models.Reservation, error)
	ListAllReservations(ctx context.Context) ([]models.AdminReservation, error)
	GetReservationByID(ctx context.Context, id int) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, id int) error
}

// Service allocates and releases table reservations.
type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ReserveRequest carries the reservation form fields. All contact fields
// are required; notes are optional.
type ReserveRequest struct {
	TableType    string
	TimeStartRaw string
	GuestName    string
	GuestPhone   string
	GuestEmail   string
	GuestNotes   string
	GuestAddress string
}

// ParseStartTime parses an ISO-8601 local date-time as submitted by a
// datetime-local form input, with or without seconds.
func ParseStartTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.ErrInvalidTime
}

// Reserve books a table of the requested type for the user. It fails when
// the user already holds a reservation, when the table type is unknown or
// at capacity, or when any field is missing or malformed; no row is
// inserted in those cases.
func (s *Service) Reserve(ctx context.Context, userID int, req ReserveRequest) (*models.Reservation, error) {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.GuestPhone = strings.TrimSpace(req.GuestPhone)
	req.GuestEmail = strings.TrimSpace(req.GuestEmail)
	req.GuestNotes = strings.TrimSpace(req.GuestNotes)
	req.GuestAddress = strings.TrimSpace(req.GuestAddress)

	if req.GuestName == "" || req.GuestPhone == "" || req.GuestEmail == "" ||
		req.GuestAddress == "" || req.TimeStartRaw == "" {
		return nil, models.ErrMissingFields
	}

	capacity, ok := models.TableCapacity[req.TableType]
	if !ok {
		return nil, models.ErrUnknownTableType
	}

	timeStart, err := ParseStartTime(req.TimeStartRaw)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		TableType:  req.TableType,
		TimeStart:  timeStart,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		UserID:     userID,
	}
	if req.GuestNotes != "" {
		reservation.GuestNotes = &req.GuestNotes
	}
	if req.GuestAddress != "" {
		reservation.GuestAddress = &req.GuestAddress
	}

	if err := s.repo.CreateReservation(ctx, reservation, capacity); err != nil {
		return nil, err
	}

	s.log.Info("reservation_created", "Table reserved", "", map[string]interface{}{
		"reservation_id": reservation.ID,
		"table_type":     reservation.TableType,
		"user_id":        userID,
	})
	return reservation, nil
}

// ListMine returns the user's reservations, newest start time first.
func (s *Service) ListMine(ctx context.Context, userID int) ([]models.Reservation, error) {
	return s.repo.ListReservationsByUser(ctx, userID)
}

// ListAll returns every reservation with its owner's nickname, for the
// administrator view.
func (s *Service) ListAll(ctx context.Context) ([]models.AdminReservation, error) {
	return s.repo.ListAllReservations(ctx)
}

// Cancel deletes a reservation unconditionally, freeing its capacity slot.
// Owners may cancel their own reservations, administrators any.
func (s *Service) Cancel(ctx context.Context, id int, user *models.User) error {
	reservation, err := s.repo.GetReservationByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsAdmin() && reservation.UserID != user.ID {
		return models.ErrReservationNotFound
	}

	if err := s.repo.DeleteReservation(ctx, id); err != nil {
		return err
	}

	s.log.Info("reservation_cancelled", "Reservation cancelled", "", map[string]interface{}{
		"reservation_id": id,
		"by_user":        user.ID,
	})
	return nil
}
