package services

import (
	"fmt"
	"time"

	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DetectStaleAgencies sweeps all agencies with open requests and marks
// those that have gone silent, opening a review task for each. Agencies
// that have responded recently are unmarked unless a staff member marked
// them stale by hand. It returns the number of agencies marked stale.
func (svc *Service) DetectStaleAgencies(logger *zerolog.Logger, now time.Time) (int, error) {
	agencies, err := svc.DB.GetAgencies()
	if err != nil {
		return 0, fmt.Errorf("error retrieving agencies: %w", err)
	}

	marked := 0
	for i := range agencies {
		agency := &agencies[i]
		if agency.Status != models.AgencyApproved {
			continue
		}

		open, err := svc.DB.GetOpenRequests(&agency.ID)
		if err != nil {
			return marked, fmt.Errorf("error retrieving open requests for agency %s: %w", agency.ID, err)
		}

		var latestResponse *time.Time
		resp, err := svc.DB.GetLatestAgencyResponse(agency.ID)
		if err != nil {
			return marked, fmt.Errorf("error retrieving latest response for agency %s: %w", agency.ID, err)
		}
		if resp != nil {
			latestResponse = &resp.Date
		}

		stale := agency.ManualStale ||
			agencyIsStale(open, latestResponse, svc.Config.Requests.StaleDays, now)

		if stale {
			if err := svc.markAgencyStale(logger, agency); err != nil {
				return marked, err
			}
			marked++
		} else if agency.Stale && !agency.ManualStale {
			// the agency has come back to life
			if err := svc.unmarkAgencyStale(agency.ID, "system"); err != nil {
				return marked, err
			}
			logger.Info().Str("agency_id", agency.ID.String()).Msg("Agency no longer stale")
		}
	}

	return marked, nil
}

// agencyIsStale reports whether an agency with the given open requests
// has been silent for at least staleDays. With no responses on record
// the silence is measured from the oldest open submission.
func agencyIsStale(open []models.Request, latestResponse *time.Time, staleDays int, now time.Time) bool {
	if len(open) == 0 {
		return false
	}

	since := latestResponse
	if since == nil {
		for i := range open {
			if open[i].DateSubmitted == nil {
				continue
			}
			if since == nil || open[i].DateSubmitted.Before(*since) {
				since = open[i].DateSubmitted
			}
		}
	}
	if since == nil {
		return false
	}

	return int(now.Sub(*since).Hours()/24) >= staleDays
}

func (svc *Service) markAgencyStale(logger *zerolog.Logger, agency *models.Agency) error {
	if err := svc.DB.SetAgencyStale(agency.ID, true, agency.ManualStale); err != nil {
		return fmt.Errorf("error marking agency %s stale: %w", agency.ID, err)
	}

	task, created, err := svc.DB.GetOrCreateStaleAgencyTask(agency.ID)
	if err != nil {
		return fmt.Errorf("error creating stale agency task for %s: %w", agency.ID, err)
	}
	if !created {
		return nil
	}

	logger.Info().Str("agency_id", agency.ID.String()).Str("task_id", task.ID.String()).Msg("Agency marked stale")

	if svc.Publisher != nil {
		if err := svc.Publisher.Notify(events.EventPayload{
			Type:     events.EventAgencyStale,
			ObjectID: agency.ID.String(),
			Data:     map[string]string{"name": agency.Name},
		}); err != nil {
			return fmt.Errorf("error publishing stale agency event: %w", err)
		}
	}
	return nil
}

// unmarkAgencyStale clears the stale flag and resolves any open stale
// agency tasks.
func (svc *Service) unmarkAgencyStale(agencyID uuid.UUID, resolvedBy string) error {
	if err := svc.DB.SetAgencyStale(agencyID, false, false); err != nil {
		return fmt.Errorf("error unmarking agency %s stale: %w", agencyID, err)
	}
	if err := svc.DB.ResolveAgencyStaleTasks(agencyID, resolvedBy); err != nil {
		return fmt.Errorf("error resolving stale agency tasks for %s: %w", agencyID, err)
	}
	return nil
}
