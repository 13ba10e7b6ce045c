package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CreateAgencyService records a user-suggested agency. It starts out
// pending and opens a review task for staff.
func CreateAgencyService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	var payload models.Agency
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid agency payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}
	if payload.Name == "" {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	payload.Slug = Slugify(payload.Name)
	if claims.IsStaff() {
		payload.Status = models.AgencyApproved
	} else {
		payload.Status = models.AgencyPending
	}

	agency, err := svc.DB.CreateAgency(&payload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create agency in database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if agency.Status == models.AgencyPending {
		if _, err := svc.DB.CreateTask(&models.Task{
			Type:     models.TaskNewAgency,
			AgencyID: &agency.ID,
			Text:     fmt.Sprintf("Agency %q suggested by %s", agency.Name, claims.Username),
		}); err != nil {
			logger.Error().Err(err).Str("agency_id", agency.ID.String()).Msg("Failed to create new agency task")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
	}

	logger.Info().Str("agency_id", agency.ID.String()).Str("status", agency.Status).Msg("Agency created")
	var location = fmt.Sprintf("%s/%s", r.URL.Path, agency.ID)
	WriteResponse(w, http.StatusCreated, *agency, location)
}

// GetAgenciesService lists agencies. Non-staff only see approved ones.
func GetAgenciesService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	agencies, err := svc.DB.GetAgencies()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve agencies from database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if !claims.IsStaff() {
		approved := make([]models.Agency, 0, len(agencies))
		for _, a := range agencies {
			if a.Status == models.AgencyApproved {
				approved = append(approved, a)
			}
		}
		agencies = approved
	}
	if agencies == nil {
		agencies = []models.Agency{}
	}

	WriteResponse(w, http.StatusOK, agencies)
}

func loadAgency(svc *Service, w http.ResponseWriter, r *http.Request) *models.Agency {
	logger := zerolog.Ctx(r.Context())

	agencyID, err := uuid.Parse(mux.Vars(r)["agency-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid agency id")
		WriteResponse(w, http.StatusBadRequest, nil)
		return nil
	}

	agency, err := svc.DB.GetAgency(agencyID)
	if err != nil {
		logger.Error().Err(err).Str("agency_id", agencyID.String()).Msg("Database error retrieving agency")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return nil
	}
	if agency == nil {
		WriteResponse(w, http.StatusNotFound, nil)
		return nil
	}
	return agency
}

// GetAgencyService retrieves a single agency.
func GetAgencyService(svc *Service, w http.ResponseWriter, r *http.Request) {

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	agency := loadAgency(svc, w, r)
	if agency == nil {
		return
	}
	if agency.Status != models.AgencyApproved && !claims.IsStaff() {
		WriteResponse(w, http.StatusNotFound, nil)
		return
	}

	WriteResponse(w, http.StatusOK, *agency)
}

// UpdateAgencyService updates an agency's contact details. Staff only,
// enforced by the route middleware.
func UpdateAgencyService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	agency := loadAgency(svc, w, r)
	if agency == nil {
		return
	}

	var payload models.Agency
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid agency update payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	agency.Name = payload.Name
	agency.Slug = Slugify(payload.Name)
	agency.Email = payload.Email
	agency.CCEmails = payload.CCEmails
	agency.Phone = payload.Phone
	agency.Fax = payload.Fax
	agency.Address = payload.Address
	agency.AppealAgencyID = payload.AppealAgencyID
	agency.ManualStale = payload.ManualStale
	if payload.ManualStale {
		agency.Stale = true
	}

	updated, err := svc.DB.UpdateAgency(agency)
	if err != nil {
		logger.Error().Err(err).Str("agency_id", agency.ID.String()).Msg("Database error updating agency")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("agency_id", updated.ID.String()).Msg("Agency updated")
	WriteResponse(w, http.StatusOK, *updated)
}

// ApproveAgencyService marks a pending agency approved and sends out
// any requests parked on it.
func ApproveAgencyService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	agency := loadAgency(svc, w, r)
	if agency == nil {
		return
	}

	agency.Status = models.AgencyApproved
	if _, err := svc.DB.UpdateAgency(agency); err != nil {
		logger.Error().Err(err).Str("agency_id", agency.ID.String()).Msg("Database error approving agency")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	// requests submitted to the agency while it was pending go out now
	now := time.Now().UTC()
	parked, err := svc.DB.GetAgencyRequestsByStatus(agency.ID, models.StatusSubmitted)
	if err != nil {
		logger.Error().Err(err).Str("agency_id", agency.ID.String()).Msg("Database error retrieving parked requests")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	resubmitted := 0
	for i := range parked {
		if err := svc.submitRequest(&parked[i], false, now); err != nil {
			logger.Error().Err(err).Str("request_id", parked[i].ID.String()).Msg("Failed to resubmit parked request")
			continue
		}
		resubmitted++
	}

	logger.Info().Str("agency_id", agency.ID.String()).Int("resubmitted", resubmitted).Msg("Agency approved")
	WriteResponse(w, http.StatusOK, *agency)
}

// RejectAgencyService marks a pending agency rejected. Parked requests
// move to a replacement agency when one is given, otherwise they return
// to their owners as drafts.
func RejectAgencyService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	agency := loadAgency(svc, w, r)
	if agency == nil {
		return
	}

	var payload struct {
		ReplacementAgencyID *uuid.UUID `json:"replacement_agency_id"`
	}
	if r.Body != nil {
		// an empty body means no replacement
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	var replacement *models.Agency
	if payload.ReplacementAgencyID != nil {
		var err error
		replacement, err = svc.DB.GetAgency(*payload.ReplacementAgencyID)
		if err != nil {
			logger.Error().Err(err).Msg("Database error retrieving replacement agency")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		if replacement == nil || replacement.Status != models.AgencyApproved {
			WriteResponse(w, http.StatusBadRequest, nil)
			return
		}
	}

	agency.Status = models.AgencyRejected
	if _, err := svc.DB.UpdateAgency(agency); err != nil {
		logger.Error().Err(err).Str("agency_id", agency.ID.String()).Msg("Database error rejecting agency")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	parked, err := svc.DB.GetAgencyRequestsByStatus(agency.ID, models.StatusSubmitted)
	if err != nil {
		logger.Error().Err(err).Str("agency_id", agency.ID.String()).Msg("Database error retrieving parked requests")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	now := time.Now().UTC()
	for i := range parked {
		if replacement != nil {
			parked[i].AgencyID = &replacement.ID
			parked[i].Email = ""
			parked[i].CCEmails = nil
			if err := svc.submitRequest(&parked[i], false, now); err != nil {
				logger.Error().Err(err).Str("request_id", parked[i].ID.String()).Msg("Failed to move parked request to replacement agency")
			}
			continue
		}
		parked[i].Status = models.StatusStarted
		if _, err := svc.DB.UpdateRequest(&parked[i]); err != nil {
			logger.Error().Err(err).Str("request_id", parked[i].ID.String()).Msg("Failed to return parked request to draft")
		}
	}

	logger.Info().Str("agency_id", agency.ID.String()).Msg("Agency rejected")
	WriteResponse(w, http.StatusOK, *agency)
}
