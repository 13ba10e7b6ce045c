package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
)

var ErrNoAgency = errors.New("cannot submit a request without an agency")

// RequestDetail is a request with its communication thread.
type RequestDetail struct {
	Request        models.Request         `json:"request"`
	Communications []models.Communication `json:"communications"`
}

// CreateRequestService creates a new draft request owned by the
// authenticated user.
func CreateRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	var payload models.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid request payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	if payload.Title == "" {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	// Only staff may file on behalf of other users
	if !claims.IsStaff() || payload.Username == "" {
		payload.Username = claims.Username
	}
	payload.Status = models.StatusStarted
	payload.Slug = Slugify(payload.Title)

	svc.syncUser(logger, claims)

	request, err := svc.DB.CreateRequest(&payload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create request in database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", request.ID.String()).Msg("Request created successfully")

	var location = fmt.Sprintf("%s/%s", r.URL.Path, request.ID)
	WriteResponse(w, http.StatusCreated, *request, location)
}

// GetRequestsService retrieves all requests viewable by the
// authenticated user.
func GetRequestsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		logger.Warn().Msg("Unauthorized request: missing claims")
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	requests, err := svc.DB.GetViewableRequests(claims.Username, claims.IsStaff())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve requests from database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if requests == nil {
		requests = []models.Request{}
	}

	logger.Info().Int("request_count", len(requests)).Msg("Successfully retrieved requests")
	WriteResponse(w, http.StatusOK, models.RequestsResponse{Requests: requests})
}

// loadViewableRequest fetches a request and enforces visibility. It
// writes the error response itself and returns nil when the caller
// should stop.
func loadViewableRequest(svc *Service, w http.ResponseWriter, r *http.Request, claims authn.Claims) *models.Request {
	logger := zerolog.Ctx(r.Context())

	requestID, err := uuid.Parse(mux.Vars(r)["request-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid request id")
		WriteResponse(w, http.StatusBadRequest, nil)
		return nil
	}

	request, err := svc.DB.GetRequest(requestID)
	if err != nil {
		logger.Error().Err(err).Str("request_id", requestID.String()).Msg("Database error retrieving request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return nil
	}
	if request == nil {
		logger.Warn().Str("request_id", requestID.String()).Msg("Request not found")
		WriteResponse(w, http.StatusNotFound, nil)
		return nil
	}

	if !request.Viewable(claims.Username, claims.IsStaff()) {
		logger.Warn().Str("request_id", requestID.String()).Str("requested_by", claims.Username).Msg("Access denied: request not viewable")
		WriteResponse(w, http.StatusForbidden, nil)
		return nil
	}

	return request
}

// GetRequestService retrieves a single request with its communications.
func GetRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}

	comms, err := svc.DB.GetCommunications(request.ID)
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Database error retrieving communications")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if comms == nil {
		comms = []models.Communication{}
	}

	WriteResponse(w, http.StatusOK, RequestDetail{Request: *request, Communications: comms})
}

// UpdateRequestService updates a request's editable fields. Only the
// owner or staff may update.
func UpdateRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}

	if request.Username != claims.Username && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	var payload models.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid update request payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	request.Title = payload.Title
	request.Slug = Slugify(payload.Title)
	request.Jurisdiction = payload.Jurisdiction
	request.AgencyID = payload.AgencyID
	request.RequestedDocs = payload.RequestedDocs
	request.Description = payload.Description
	request.DateEstimate = payload.DateEstimate
	request.DisableAutofollowups = payload.DisableAutofollowups
	now := time.Now().UTC()
	if claims.IsStaff() {
		request.TrackingID = payload.TrackingID
		request.PriceCents = payload.PriceCents
		request.BlockIncoming = payload.BlockIncoming
		if models.IsValidStatus(payload.Status) && payload.Status != request.Status {
			request.Status = payload.Status
			if models.IsEndStatus(request.Status) {
				request.DateDone = &now
			} else {
				request.DateDone = nil
			}
		}
	}
	applyEmbargoDefaults(request, svc.Config.Requests.EmbargoDays, now)

	updated, err := svc.DB.UpdateRequest(request)
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Database error updating request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", updated.ID.String()).Msg("Request updated successfully")
	WriteResponse(w, http.StatusOK, *updated)
}

// DeleteRequestService deletes a draft request.
func DeleteRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}

	if request.Username != claims.Username && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}
	if !request.IsEditable() {
		logger.Warn().Str("request_id", request.ID.String()).Msg("Only draft requests can be deleted")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	if err := svc.DB.DeleteRequest(request.ID); err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Database error deleting request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", request.ID.String()).Msg("Request deleted successfully")
	WriteResponse(w, http.StatusNoContent, nil)
}

// SubmitRequestService submits a draft (or resubmits an updated request)
// to its agency.
func SubmitRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}
	if request.Username != claims.Username && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	if err := svc.submitRequest(request, false, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrNoAgency) {
			logger.Warn().Str("request_id", request.ID.String()).Msg("Submit without an agency")
			WriteResponse(w, http.StatusBadRequest, nil)
			return
		}
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Failed to submit request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", request.ID.String()).Str("status", request.Status).Msg("Request submitted")
	WriteResponse(w, http.StatusOK, *request)
}

// FollowupRequestService appends an autogenerated follow up and
// resubmits the request.
func FollowupRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}
	if request.Username != claims.Username && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	comm, err := svc.followupRequest(request, false, time.Now().UTC())
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Failed to follow up on request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", request.ID.String()).Msg("Follow up sent")
	WriteResponse(w, http.StatusCreated, *comm)
}

// AppealRequestService sends an appeal to the agency (or its appeal
// agency when one is configured).
func AppealRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}
	if request.Username != claims.Username && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == "" {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	now := time.Now().UTC()
	comm, err := svc.DB.CreateCommunication(&models.Communication{
		RequestID:   &request.ID,
		From:        claims.Username,
		To:          request.Email,
		Body:        payload.Message,
		Response:    false,
		DeliveredBy: models.DeliveredEmail,
		Date:        now,
	})
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Failed to record appeal communication")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if err := svc.submitRequest(request, true, now); err != nil {
		if errors.Is(err, ErrNoAgency) {
			WriteResponse(w, http.StatusBadRequest, nil)
			return
		}
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Failed to submit appeal")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", request.ID.String()).Msg("Appeal submitted")
	WriteResponse(w, http.StatusCreated, *comm)
}

// EmbargoRequestService sets or clears the embargo on a request.
func EmbargoRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}
	if request.Username != claims.Username && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	var payload struct {
		Embargo     bool       `json:"embargo"`
		Permanent   bool       `json:"permanent"`
		DateEmbargo *time.Time `json:"date_embargo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	request.Embargo = payload.Embargo
	request.PermanentEmbargo = payload.Embargo && payload.Permanent
	request.DateEmbargo = payload.DateEmbargo
	applyEmbargoDefaults(request, svc.Config.Requests.EmbargoDays, time.Now().UTC())

	updated, err := svc.DB.UpdateRequest(request)
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Database error updating embargo")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", updated.ID.String()).Bool("embargo", updated.Embargo).Msg("Embargo updated")
	WriteResponse(w, http.StatusOK, *updated)
}

// FlagRequestService opens a flagged task so staff can look into a
// problem the user reports on a request.
func FlagRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Text) == "" {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	task, err := svc.DB.CreateTask(&models.Task{
		Type:      models.TaskFlagged,
		RequestID: &request.ID,
		Text:      strings.TrimSpace(payload.Text),
	})
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Database error creating flagged task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("request_id", request.ID.String()).Str("task_id", task.ID.String()).Msg("Request flagged")
	WriteResponse(w, http.StatusCreated, *task)
}

// PayRequestService charges the user's card for the agency's fee. The
// check is mailed, so a snail mail task is opened for staff.
func PayRequestService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	request := loadViewableRequest(svc, w, r, claims)
	if request == nil {
		return
	}

	// Collaborators may pay, so only viewability is checked above.
	now := time.Now().UTC()
	if request.Status != models.StatusPayment {
		logger.Warn().Str("request_id", request.ID.String()).Str("status", request.Status).Msg("Request is not payable")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}
	if request.CrowdfundID != nil {
		cf, err := svc.DB.GetCrowdfund(*request.CrowdfundID)
		if err != nil {
			logger.Error().Err(err).Msg("Database error retrieving crowdfund")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		if cf != nil && !cf.Expired(now) {
			logger.Warn().Str("request_id", request.ID.String()).Msg("Request has an open crowdfund")
			WriteResponse(w, http.StatusBadRequest, nil)
			return
		}
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(request.PriceCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(fmt.Sprintf("Request fee for %s", request.Title)),
	}
	params.SetSource(payload.Token)
	params.AddMetadata("action", "request-fee")
	params.AddMetadata("request_id", request.ID.String())
	params.SetIdempotencyKey(uuid.NewString())

	charge, err := svc.Charges.New(params)
	if err != nil {
		logger.Error().Err(err).Str("request_id", request.ID.String()).Msg("Stripe charge failed")
		WriteResponse(w, http.StatusPaymentRequired, nil)
		return
	}

	comm, err := svc.DB.CreateCommunication(&models.Communication{
		RequestID:   &request.ID,
		From:        claims.Username,
		To:          request.Email,
		Body:        fmt.Sprintf("A payment of $%.2f was made for this request.", float64(request.PriceCents)/100),
		DeliveredBy: models.DeliveredMail,
		Date:        now,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to record payment communication")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if _, err := svc.DB.CreateTask(&models.Task{
		Type:            models.TaskSnailMail,
		RequestID:       &request.ID,
		CommunicationID: &comm.ID,
		AmountCents:     request.PriceCents,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to create snail mail task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	request.Status = models.StatusSubmitted
	updateDates(request, now, now)
	if _, err := svc.DB.UpdateRequest(request); err != nil {
		logger.Error().Err(err).Msg("Database error updating paid request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Notify(events.EventPayload{
			Type:      events.EventRequestUpdated,
			ObjectID:  request.ID.String(),
			Recipient: svc.requestOwnerEmail(request),
			Data: map[string]string{
				"title":  request.Title,
				"action": "paid fees",
			},
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to publish payment event")
		}
	}

	logger.Info().Str("request_id", request.ID.String()).Str("charge_id", charge.ID).Int64("amount_cents", request.PriceCents).Msg("Request fee paid")
	WriteResponse(w, http.StatusOK, *request)
}

// submitRequest sends a request (or an appeal) to its agency. Unapproved
// agencies park the request in the submitted status until staff approve
// them.
func (svc *Service) submitRequest(request *models.Request, appeal bool, now time.Time) error {
	if request.AgencyID == nil {
		return ErrNoAgency
	}

	agency, err := svc.DB.GetAgency(*request.AgencyID)
	if err != nil {
		return fmt.Errorf("error retrieving agency: %w", err)
	}
	if agency == nil {
		return ErrNoAgency
	}

	if appeal && agency.AppealAgencyID != nil {
		appealAgency, err := svc.DB.GetAgency(*agency.AppealAgencyID)
		if err != nil {
			return fmt.Errorf("error retrieving appeal agency: %w", err)
		}
		if appealAgency != nil {
			agency = appealAgency
		}
	}

	// appeals clear the current addresses and take them from the appeal
	// agency
	if appeal {
		request.Email = ""
		request.CCEmails = nil
	}
	if request.Email == "" {
		request.Email = agency.Email
		request.CCEmails = agency.CCEmails
	}
	if request.MailID == "" {
		request.MailID = newMailID(request.ID)
	}

	outbound := ""
	if agency.Status != models.AgencyApproved {
		// nothing is sent until the agency is approved
		request.Status = models.StatusSubmitted
	} else {
		if appeal {
			request.Status = models.StatusAppealing
		} else if !request.IsOpen() {
			request.Status = models.StatusAck
		}
		lastComm := now
		outbound = requestLetter(request)
		if comm, err := svc.DB.GetLatestCommunication(request.ID); err == nil && comm != nil {
			lastComm = comm.Date
			if comm.Body != "" {
				outbound = comm.Body
			}
		}
		updateDates(request, lastComm, now)
	}
	request.DateUpdated = &now

	if _, err := svc.DB.UpdateRequest(request); err != nil {
		return fmt.Errorf("error saving submitted request: %w", err)
	}

	if outbound != "" {
		if err := svc.sendToAgency(request, outbound); err != nil {
			return fmt.Errorf("error mailing request to agency: %w", err)
		}
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Notify(events.EventPayload{
			Type:      events.EventRequestSubmitted,
			ObjectID:  request.ID.String(),
			Recipient: svc.requestOwnerEmail(request),
			Data:      map[string]string{"title": request.Title, "status": request.Status},
		}); err != nil {
			return fmt.Errorf("error publishing submit event: %w", err)
		}
	}

	return nil
}

// followupRequest appends an autogenerated follow up message and
// resubmits the request to the agency.
func (svc *Service) followupRequest(request *models.Request, automatic bool, now time.Time) (*models.Communication, error) {
	var estimate string
	switch {
	case request.DateEstimate == nil:
		estimate = "none"
	case now.Before(*request.DateEstimate):
		estimate = "future"
	default:
		estimate = "past"
	}

	comm, err := svc.DB.CreateCommunication(&models.Communication{
		RequestID:     &request.ID,
		From:          request.Username,
		To:            request.Email,
		Body:          followupBody(request, estimate),
		Response:      false,
		Autogenerated: automatic,
		DeliveredBy:   models.DeliveredEmail,
		Date:          now,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating followup communication: %w", err)
	}

	if err := svc.submitRequest(request, false, now); err != nil {
		return nil, err
	}
	return comm, nil
}

// sendToAgency emails the agency from the request's unique reply
// address so the response routes back onto the thread.
func (svc *Service) sendToAgency(request *models.Request, body string) error {
	if svc.Email == nil || request.Email == "" {
		return nil
	}

	from := fmt.Sprintf("%s@%s", request.MailID, svc.Config.Mail.InboundDomain)
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{request.Email},
			CcAddresses: request.CCEmails,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(fmt.Sprintf("Public Records Request: %s", request.Title))},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	}

	if _, err := svc.Email.SendEmail(context.Background(), input); err != nil {
		return fmt.Errorf("error emailing agency %s: %w", request.Email, err)
	}
	return nil
}

// requestLetter is the initial letter sent with a new submission. Once
// the thread has communications, the latest one is sent instead.
func requestLetter(request *models.Request) string {
	return fmt.Sprintf(
		"To Whom It May Concern:\n\nPursuant to the %s public records law, I hereby request the following records:\n\n%s\n\n"+
			"I also request that, if appropriate, fees be waived as I believe this request is in the public interest. "+
			"In the event that there are fees, I would be grateful if you would inform me of the total charges in advance.\n\n"+
			"Thank you in advance for your anticipated cooperation in this matter.",
		request.Jurisdiction.Name, request.RequestedDocs)
}

func followupBody(request *models.Request, estimate string) string {
	body := fmt.Sprintf(
		"To Whom It May Concern:\n\nI wanted to follow up on the following request, copied below. "+
			"Please let me know when I can expect to receive a response to the records requested under tracking number %q.\n\n%s",
		request.TrackingID, request.RequestedDocs)
	switch estimate {
	case "future":
		body += fmt.Sprintf("\n\nYou had previously indicated that the request would be completed by %s.",
			request.DateEstimate.Format("January 2, 2006"))
	case "past":
		body += fmt.Sprintf("\n\nThe request was estimated to be completed by %s, which has passed.",
			request.DateEstimate.Format("January 2, 2006"))
	}
	return body
}

// applyEmbargoDefaults normalizes the embargo fields: an embargo on a
// completed request keeps an expiration date, defaulting to defaultDays
// out; an embargo on an active request has none.
func applyEmbargoDefaults(request *models.Request, defaultDays int, now time.Time) {
	if !request.Embargo {
		request.DateEmbargo = nil
		return
	}
	if models.IsEndStatus(request.Status) {
		if request.DateEmbargo == nil {
			expiry := now.AddDate(0, 0, defaultDays)
			request.DateEmbargo = &expiry
		}
	} else {
		request.DateEmbargo = nil
	}
}

// updateDates maintains the due date, follow up date, and paused
// day-count per the request status.
func updateDates(request *models.Request, lastComm, now time.Time) {
	// first submission sets the clock running
	if request.DateSubmitted == nil {
		request.DateSubmitted = &now
		if request.Jurisdiction.Days != nil {
			due := now.AddDate(0, 0, *request.Jurisdiction.Days)
			request.DateDue = &due
		}
	}

	if request.Status == models.StatusAck || request.Status == models.StatusProcessed {
		// unpause the count down
		if request.DaysUntilDue != nil {
			due := now.AddDate(0, 0, *request.DaysUntilDue)
			request.DateDue = &due
			request.DaysUntilDue = nil
		}
		updateFollowupDate(request, lastComm, now)
	} else if request.DateFollowup != nil {
		// no longer waiting on the agency, do not follow up
		request.DateFollowup = nil
	}

	// if we need to respond, pause the count down until we do
	if (request.Status == models.StatusFix || request.Status == models.StatusPayment) && request.DateDue != nil {
		days := int(request.DateDue.Sub(lastComm).Hours() / 24)
		if days < 0 {
			days = 0
		}
		request.DaysUntilDue = &days
		request.DateDue = nil
	}
}

func updateFollowupDate(request *models.Request, lastComm, now time.Time) {
	newDate := lastComm.AddDate(0, 0, followupDays(request, now))
	if request.DateDue != nil && request.DateDue.After(newDate) {
		newDate = *request.DateDue
	}
	if request.DateFollowup == nil || request.DateFollowup.Before(newDate) {
		request.DateFollowup = &newDate
	}
}

// followupDays is how long we wait before following up: the statutory
// period before acknowledgement, the time until the agency's estimate,
// or 30 days federal / 15 days otherwise.
func followupDays(request *models.Request, now time.Time) int {
	if request.Status == models.StatusAck && request.Jurisdiction.Days != nil {
		return *request.Jurisdiction.Days
	}
	if request.DateEstimate != nil && now.Before(*request.DateEstimate) {
		return int(request.DateEstimate.Sub(now).Hours() / 24)
	}
	if request.Jurisdiction.Level == models.LevelFederal {
		return 30
	}
	return 15
}

func newMailID(id uuid.UUID) string {
	return fmt.Sprintf("%s-%08d", id, rand.Intn(100000000))
}
