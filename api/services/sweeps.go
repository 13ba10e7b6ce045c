package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SendFollowups sends an autogenerated follow up on every open request
// whose follow up date has passed, and on every open request past its
// statutory due date. It returns the number sent.
func (svc *Service) SendFollowups(logger *zerolog.Logger, now time.Time) (int, error) {
	due, err := svc.DB.GetFollowupRequests()
	if err != nil {
		return 0, fmt.Errorf("error retrieving requests due for follow up: %w", err)
	}
	overdue, err := svc.DB.GetOverdueRequests()
	if err != nil {
		return 0, fmt.Errorf("error retrieving overdue requests: %w", err)
	}

	// a request can be both followup-due and overdue
	seen := make(map[uuid.UUID]bool, len(due))
	for i := range due {
		seen[due[i].ID] = true
	}
	requests := due
	for i := range overdue {
		if !seen[overdue[i].ID] {
			requests = append(requests, overdue[i])
		}
	}

	sent := 0
	for i := range requests {
		if _, err := svc.followupRequest(&requests[i], true, now); err != nil {
			return sent, fmt.Errorf("error following up on request %s: %w", requests[i].ID, err)
		}
		logger.Info().Str("request_id", requests[i].ID.String()).Msg("Automatic follow up sent")
		sent++
	}
	return sent, nil
}

// LiftExpiredEmbargoes clears non-permanent embargoes whose expiration
// date has passed. It returns the number lifted.
func (svc *Service) LiftExpiredEmbargoes(logger *zerolog.Logger) (int, error) {
	requests, err := svc.DB.GetExpiredEmbargoes()
	if err != nil {
		return 0, fmt.Errorf("error retrieving expired embargoes: %w", err)
	}

	lifted := 0
	for i := range requests {
		if err := svc.DB.ClearEmbargo(requests[i].ID); err != nil {
			return lifted, fmt.Errorf("error lifting embargo on request %s: %w", requests[i].ID, err)
		}
		logger.Info().Str("request_id", requests[i].ID.String()).Msg("Expired embargo lifted")
		lifted++
	}
	return lifted, nil
}
