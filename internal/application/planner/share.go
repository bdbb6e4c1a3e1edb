package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/uniplanner/core/internal/domain/entities"
	"github.com/uniplanner/core/internal/infrastructure/logger"
	"github.com/uniplanner/core/internal/ports"
)

// ShareService mints share tokens and resolves them to read-only schedules.
// Token generation and expiry live in the backend; this service only carries
// the token as an opaque string.
type ShareService struct {
	api    ports.PlannerAPI
	logger *logger.Logger
}

// NewShareService creates a share service backed by the planner API.
func NewShareService(api ports.PlannerAPI, appLogger *logger.Logger) *ShareService {
	return &ShareService{
		api:    api,
		logger: appLogger.WithComponent("share"),
	}
}

// CreateLink mints a share token scoped to the named courses. At least one
// course must be selected; a link to nothing is rejected locally.
func (s *ShareService) CreateLink(ctx context.Context, courseNames []string) (string, error) {
	names := make([]string, 0, len(courseNames))
	for _, name := range courseNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return "", &entities.ValidationError{Field: "courses", Reason: "at least one course must be selected"}
	}

	token, err := s.api.CreateShareLink(ctx, names)
	if err != nil {
		return "", fmt.Errorf("failed to create share link: %w", err)
	}

	s.logger.Infow("Share link created", "courses", len(names))
	return token, nil
}

// Resolve fetches the read-only schedule a share token points at. No
// credential is attached; anyone holding the token may view it.
func (s *ShareService) Resolve(ctx context.Context, token string) (entities.SharedSchedule, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.SharedSchedule{}, &entities.ValidationError{Field: "token", Reason: "must not be empty"}
	}

	schedule, err := s.api.ResolveSharedSchedule(ctx, token)
	if err != nil {
		return entities.SharedSchedule{}, fmt.Errorf("failed to resolve shared schedule: %w", err)
	}
	if schedule.OwnerName == "" {
		schedule.OwnerName = "User"
	}

	return schedule, nil
}
