package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/logger"
	"github.com/uniplanner/core/internal/ports"
)

// AdminService exposes the administrative calls: listing users, removing a
// user, and resetting a user's calendar. Whether the caller is actually an
// administrator is decided by the backend; this client only issues the
// requests.
type AdminService struct {
	api    ports.PlannerAPI
	logger *logger.Logger
}

// NewAdminService creates an admin service backed by the planner API.
func NewAdminService(api ports.PlannerAPI, appLogger *logger.Logger) *AdminService {
	return &AdminService{
		api:    api,
		logger: appLogger.WithComponent("admin"),
	}
}

// Users lists all registered users.
func (s *AdminService) Users(ctx context.Context) ([]entities.AdminUser, error) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Remove deletes a user and all their data.
func (s *AdminService) Remove(ctx context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return &entities.ValidationError{Field: "uid", Reason: "must not be empty"}
	}

	if err := s.api.RemoveUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}

	s.logger.Infow("User removed", "uid", uid)
	return nil
}

// ResetCalendar wipes a user's tasks and courses.
func (s *AdminService) ResetCalendar(ctx context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return &entities.ValidationError{Field: "uid", Reason: "must not be empty"}
	}

	if err := s.api.ResetCalendar(ctx, uid); err != nil {
		return fmt.Errorf("failed to reset calendar: %w", err)
	}

	s.logger.Infow("Calendar reset", "uid", uid)
	return nil
}
