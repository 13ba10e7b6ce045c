package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
)

// defaultCrowdfundDays is the campaign length when none is given.
const defaultCrowdfundDays = 30

// CreateCrowdfundService launches a crowdfunding campaign for a request's
// fees or for a project.
func CreateCrowdfundService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	var payload models.Crowdfund
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid crowdfund payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}
	// a campaign belongs to exactly one request or one project
	if (payload.RequestID == nil) == (payload.ProjectID == nil) {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	now := time.Now().UTC()
	var request *models.Request
	if payload.RequestID != nil {
		var err error
		request, err = svc.DB.GetRequest(*payload.RequestID)
		if err != nil {
			logger.Error().Err(err).Msg("Database error retrieving request")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		if request == nil {
			WriteResponse(w, http.StatusNotFound, nil)
			return
		}
		if request.Username != claims.Username && !claims.IsStaff() {
			WriteResponse(w, http.StatusForbidden, nil)
			return
		}
		if request.Status != models.StatusPayment {
			logger.Warn().Str("request_id", request.ID.String()).Str("status", request.Status).Msg("Crowdfund requires a fee to pay")
			WriteResponse(w, http.StatusBadRequest, nil)
			return
		}
		if request.CrowdfundID != nil {
			WriteResponse(w, http.StatusConflict, nil)
			return
		}
		if payload.PaymentRequiredCents == 0 {
			payload.PaymentRequiredCents = request.PriceCents
		}
		if payload.Name == "" {
			payload.Name = fmt.Sprintf("Crowdfund request fees: %s", request.Title)
		}
		// request fee campaigns never collect more than the fee
		payload.PaymentCapped = true
	}
	if payload.ProjectID != nil {
		project, err := svc.DB.GetProject(*payload.ProjectID)
		if err != nil {
			logger.Error().Err(err).Msg("Database error retrieving project")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		if project == nil {
			WriteResponse(w, http.StatusNotFound, nil)
			return
		}
		if !project.HasContributor(claims.Username) && !claims.IsStaff() {
			WriteResponse(w, http.StatusForbidden, nil)
			return
		}
	}

	if payload.PaymentRequiredCents <= 0 {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}
	if payload.DateDue == nil {
		due := now.AddDate(0, 0, defaultCrowdfundDays)
		payload.DateDue = &due
	}
	payload.PaymentReceivedCents = 0
	payload.Closed = false

	crowdfund, err := svc.DB.CreateCrowdfund(&payload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create crowdfund in database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if request != nil {
		request.CrowdfundID = &crowdfund.ID
		if _, err := svc.DB.UpdateRequest(request); err != nil {
			logger.Error().Err(err).Msg("Database error linking crowdfund to request")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Notify(events.EventPayload{
			Type:      events.EventCrowdfundLaunched,
			ObjectID:  crowdfund.ID.String(),
			Recipient: svc.requestOwnerEmail(request),
			Data:      map[string]string{"name": crowdfund.Name},
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to publish crowdfund launch event")
		}
	}

	logger.Info().Str("crowdfund_id", crowdfund.ID.String()).Int64("required_cents", crowdfund.PaymentRequiredCents).Msg("Crowdfund launched")
	var location = fmt.Sprintf("%s/%s", r.URL.Path, crowdfund.ID)
	WriteResponse(w, http.StatusCreated, *crowdfund, location)
}

// GetCrowdfundsService lists all campaigns.
func GetCrowdfundsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	crowdfunds, err := svc.DB.GetCrowdfunds()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve crowdfunds from database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if crowdfunds == nil {
		crowdfunds = []models.Crowdfund{}
	}

	WriteResponse(w, http.StatusOK, models.CrowdfundsResponse{Crowdfunds: crowdfunds})
}

func loadCrowdfund(svc *Service, w http.ResponseWriter, r *http.Request) *models.Crowdfund {
	logger := zerolog.Ctx(r.Context())

	crowdfundID, err := uuid.Parse(mux.Vars(r)["crowdfund-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid crowdfund id")
		WriteResponse(w, http.StatusBadRequest, nil)
		return nil
	}

	crowdfund, err := svc.DB.GetCrowdfund(crowdfundID)
	if err != nil {
		logger.Error().Err(err).Str("crowdfund_id", crowdfundID.String()).Msg("Database error retrieving crowdfund")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return nil
	}
	if crowdfund == nil {
		WriteResponse(w, http.StatusNotFound, nil)
		return nil
	}
	return crowdfund
}

// GetCrowdfundService retrieves a campaign with its contributions. Only
// contributors who opted in are listed by name.
func GetCrowdfundService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	crowdfund := loadCrowdfund(svc, w, r)
	if crowdfund == nil {
		return
	}

	payments, err := svc.DB.GetPayments(crowdfund.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving payments")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	var shown []models.CrowdfundPayment
	anonymous := 0
	for _, p := range payments {
		if p.Show {
			shown = append(shown, p)
		} else {
			anonymous++
		}
	}
	if shown == nil {
		shown = []models.CrowdfundPayment{}
	}

	WriteResponse(w, http.StatusOK, models.CrowdfundDetail{
		Crowdfund:             *crowdfund,
		Payments:              shown,
		ContributorsCount:     len(payments),
		AnonymousContributors: anonymous,
		PercentFunded:         crowdfund.PercentFunded(),
	})
}

// MakePaymentService charges a contribution to a campaign. Capped
// campaigns clamp the amount to what is still needed and close once the
// goal is reached.
func MakePaymentService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	crowdfund := loadCrowdfund(svc, w, r)
	if crowdfund == nil {
		return
	}

	now := time.Now().UTC()
	if crowdfund.Expired(now) {
		logger.Warn().Str("crowdfund_id", crowdfund.ID.String()).Msg("Payment to an expired crowdfund")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	var payload struct {
		Token       string `json:"token"`
		AmountCents int64  `json:"amount_cents"`
		Show        bool   `json:"show"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" || payload.AmountCents <= 0 {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	amount := payload.AmountCents
	if crowdfund.PaymentCapped && amount > crowdfund.AmountRemainingCents() {
		amount = crowdfund.AmountRemainingCents()
	}
	if amount <= 0 {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(fmt.Sprintf("Contribution to %s", crowdfund.Name)),
	}
	params.SetSource(payload.Token)
	params.AddMetadata("action", "crowdfund-payment")
	params.AddMetadata("crowdfund_id", crowdfund.ID.String())
	params.SetIdempotencyKey(uuid.NewString())

	charge, err := svc.Charges.New(params)
	if err != nil {
		logger.Error().Err(err).Str("crowdfund_id", crowdfund.ID.String()).Msg("Stripe charge failed")
		WriteResponse(w, http.StatusPaymentRequired, nil)
		return
	}

	payment, err := svc.DB.CreatePayment(&models.CrowdfundPayment{
		CrowdfundID: crowdfund.ID,
		Username:    claims.Username,
		Name:        claims.FullName,
		AmountCents: amount,
		Show:        payload.Show,
		ChargeID:    charge.ID,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to record crowdfund payment")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	received := crowdfund.PaymentReceivedCents + amount
	closed := crowdfund.PaymentCapped && received >= crowdfund.PaymentRequiredCents
	if err := svc.DB.UpdateCrowdfundReceived(crowdfund.ID, received, closed); err != nil {
		logger.Error().Err(err).Msg("Database error updating crowdfund total")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	crowdfund.PaymentReceivedCents = received
	crowdfund.Closed = closed

	if closed {
		if _, err := svc.DB.CreateTask(&models.Task{
			Type:        models.TaskCrowdfund,
			CrowdfundID: &crowdfund.ID,
			RequestID:   crowdfund.RequestID,
			AmountCents: received,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to create crowdfund task")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		if svc.Publisher != nil {
			recipient := ""
			if crowdfund.RequestID != nil {
				if req, err := svc.DB.GetRequest(*crowdfund.RequestID); err == nil {
					recipient = svc.requestOwnerEmail(req)
				}
			}
			if err := svc.Publisher.Notify(events.EventPayload{
				Type:      events.EventCrowdfundClosed,
				ObjectID:  crowdfund.ID.String(),
				Recipient: recipient,
				Data: map[string]string{
					"name":           crowdfund.Name,
					"received_cents": fmt.Sprintf("%d", received),
				},
			}); err != nil {
				logger.Error().Err(err).Msg("Failed to publish crowdfund close event")
			}
		}
		logger.Info().Str("crowdfund_id", crowdfund.ID.String()).Msg("Crowdfund reached its goal")
	}

	logger.Info().Str("crowdfund_id", crowdfund.ID.String()).Int64("amount_cents", amount).Msg("Crowdfund payment recorded")
	WriteResponse(w, http.StatusCreated, *payment)
}
