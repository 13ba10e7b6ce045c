package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/internal/appconfig"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v84"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Requests: appconfig.RequestsConfig{
			StaleDays:   120,
			EmbargoDays: 30,
		},
		Mail: appconfig.MailConfig{
			InboundDomain: "requests.example.com",
			SigningKey:    "test-signing-key",
		},
	}
}

func intPtr(i int) *int { return &i }

func TestCreateRequestService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	payload := models.Request{
		Title:         "Use of Force Reports 2025",
		RequestedDocs: "All use of force reports filed in 2025.",
		Jurisdiction:  models.Jurisdiction{Name: "Massachusetts", Level: models.LevelState},
	}

	mockClaims := authn.Claims{Username: "testuser"}

	mockDB.On("CreateRequest", mock.MatchedBy(func(req *models.Request) bool {
		return req.Username == "testuser" &&
			req.Status == models.StatusStarted &&
			req.Slug == "use-of-force-reports-2025"
	})).Return(&models.Request{
		ID:       uuid.New(),
		Username: "testuser",
		Title:    payload.Title,
		Status:   models.StatusStarted,
	}, nil)

	requestBody, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/api/requests", bytes.NewReader(requestBody))
	ctx := context.WithValue(r.Context(), middleware.ClaimsKey, mockClaims)
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	CreateRequestService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusCreated, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	var created models.Request
	err := json.Unmarshal(body, &created)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, payload.Title, created.Title)
	assert.Equal(t, models.StatusStarted, created.Status)

	mockDB.AssertExpectations(t)
}

func TestCreateRequestService_NonStaffCannotFileForOthers(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	mockClaims := authn.Claims{Username: "testuser"}

	mockDB.On("CreateRequest", mock.MatchedBy(func(req *models.Request) bool {
		// the username in the payload must be overridden
		return req.Username == "testuser"
	})).Return(&models.Request{ID: uuid.New(), Username: "testuser"}, nil)

	requestBody, _ := json.Marshal(models.Request{Title: "Budget records", Username: "someoneelse"})
	r := httptest.NewRequest(http.MethodPost, "/api/requests", bytes.NewReader(requestBody))
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, mockClaims))

	w := httptest.NewRecorder()
	CreateRequestService(svc, w, r)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestGetRequestsService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	mockRequests := []models.Request{
		{ID: uuid.New(), Title: "Request 1", Username: "testuser"},
		{ID: uuid.New(), Title: "Request 2", Username: "testuser"},
	}
	mockDB.On("GetViewableRequests", "testuser", false).Return(mockRequests, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	GetRequestsService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	var response models.RequestsResponse
	err := json.Unmarshal(body, &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Len(t, response.Requests, 2)

	mockDB.AssertExpectations(t)
	mockDB.AssertCalled(t, "GetViewableRequests", "testuser", false)
}

func TestGetRequestService_EmbargoedHiddenFromOthers(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	requestID := uuid.New()
	mockDB.On("GetRequest", requestID).Return(&models.Request{
		ID:       requestID,
		Username: "owner",
		Status:   models.StatusDone,
		Embargo:  true,
	}, nil)

	r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/requests/%s", requestID), nil)
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "someoneelse"}))

	w := httptest.NewRecorder()
	GetRequestService(svc, w, r)

	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestSubmitRequestService_NoAgency(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	requestID := uuid.New()
	mockDB.On("GetRequest", requestID).Return(&models.Request{
		ID:       requestID,
		Username: "testuser",
		Status:   models.StatusStarted,
	}, nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/submit", requestID), nil)
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	SubmitRequestService(svc, w, r)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	mockDB.AssertNotCalled(t, "UpdateRequest", mock.Anything)
}

func TestSubmitRequestService_ApprovedAgency(t *testing.T) {

	mockDB := new(MockStore)
	mockPublisher := new(MockNotifier)
	svc := &Service{Config: testConfig(), DB: mockDB, Publisher: mockPublisher}

	requestID := uuid.New()
	agencyID := uuid.New()
	request := &models.Request{
		ID:           requestID,
		Username:     "testuser",
		Title:        "Meeting Minutes",
		Status:       models.StatusStarted,
		AgencyID:     &agencyID,
		Jurisdiction: models.Jurisdiction{Name: "Massachusetts", Level: models.LevelState, Days: intPtr(10)},
	}

	mockDB.On("GetRequest", requestID).Return(request, nil)
	mockDB.On("GetAgency", agencyID).Return(&models.Agency{
		ID:     agencyID,
		Name:   "Boston Police Department",
		Status: models.AgencyApproved,
		Email:  "foia@bpd.example.gov",
	}, nil)
	mockDB.On("GetLatestCommunication", requestID).Return(nil, nil)
	mockDB.On("UpdateRequest", mock.Anything).Return(request, nil)
	mockDB.On("GetUser", "testuser").Return(&models.User{Username: "testuser", Email: "testuser@example.com"}, nil)
	mockPublisher.On("Notify", mock.MatchedBy(func(e events.EventPayload) bool {
		return e.Type == events.EventRequestSubmitted && e.Recipient == "testuser@example.com"
	})).Return(nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/submit", requestID), nil)
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	SubmitRequestService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, models.StatusAck, request.Status)
	assert.Equal(t, "foia@bpd.example.gov", request.Email)
	assert.NotEmpty(t, request.MailID, "Submission should assign an inbound mail address")
	assert.NotNil(t, request.DateSubmitted)
	assert.NotNil(t, request.DateDue, "Statutory period should set a due date")

	mockDB.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestSubmitRequestService_PendingAgencyParksRequest(t *testing.T) {

	mockDB := new(MockStore)
	mockPublisher := new(MockNotifier)
	svc := &Service{Config: testConfig(), DB: mockDB, Publisher: mockPublisher}

	requestID := uuid.New()
	agencyID := uuid.New()
	request := &models.Request{
		ID:       requestID,
		Username: "testuser",
		Status:   models.StatusStarted,
		AgencyID: &agencyID,
	}

	mockDB.On("GetRequest", requestID).Return(request, nil)
	mockDB.On("GetAgency", agencyID).Return(&models.Agency{
		ID:     agencyID,
		Status: models.AgencyPending,
		Email:  "records@pending.example.gov",
	}, nil)
	mockDB.On("UpdateRequest", mock.Anything).Return(request, nil)
	mockDB.On("GetUser", "testuser").Return(nil, nil)
	mockPublisher.On("Notify", mock.Anything).Return(nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/submit", requestID), nil)
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	SubmitRequestService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, models.StatusSubmitted, request.Status, "Nothing goes out until the agency is approved")
	assert.Nil(t, request.DateDue, "The clock does not run while the agency is pending")

	mockDB.AssertExpectations(t)
}

func TestSubmitRequestService_MailsAgency(t *testing.T) {

	mockDB := new(MockStore)
	mockPublisher := new(MockNotifier)
	mockEmail := new(MockEmailClient)
	svc := &Service{Config: testConfig(), DB: mockDB, Publisher: mockPublisher, Email: mockEmail}

	requestID := uuid.New()
	agencyID := uuid.New()
	request := &models.Request{
		ID:            requestID,
		Username:      "testuser",
		Title:         "Meeting Minutes",
		RequestedDocs: "All select board meeting minutes from 2025.",
		Status:        models.StatusStarted,
		AgencyID:      &agencyID,
		Jurisdiction:  models.Jurisdiction{Name: "Massachusetts", Level: models.LevelState, Days: intPtr(10)},
	}

	mockDB.On("GetRequest", requestID).Return(request, nil)
	mockDB.On("GetAgency", agencyID).Return(&models.Agency{
		ID:     agencyID,
		Status: models.AgencyApproved,
		Email:  "foia@bpd.example.gov",
	}, nil)
	mockDB.On("GetLatestCommunication", requestID).Return(nil, nil)
	mockDB.On("UpdateRequest", mock.Anything).Return(request, nil)
	mockDB.On("GetUser", "testuser").Return(nil, nil)
	mockPublisher.On("Notify", mock.Anything).Return(nil)
	// the letter goes out from the request's own inbound address so the
	// agency's reply lands back on the thread
	mockEmail.On("SendEmail", mock.Anything, mock.MatchedBy(func(input *sesv2.SendEmailInput) bool {
		return strings.HasSuffix(*input.FromEmailAddress, "@requests.example.com") &&
			len(input.Destination.ToAddresses) == 1 &&
			input.Destination.ToAddresses[0] == "foia@bpd.example.gov" &&
			strings.Contains(*input.Content.Simple.Body.Text.Data, "meeting minutes")
	})).Return(&sesv2.SendEmailOutput{}, nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/submit", requestID), nil)
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	SubmitRequestService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, fmt.Sprintf("%s@requests.example.com", request.MailID),
		*mockEmail.Calls[0].Arguments.Get(1).(*sesv2.SendEmailInput).FromEmailAddress)
	mockEmail.AssertExpectations(t)
	mockDB.AssertExpectations(t)
}

func TestCreateRequestService_SyncsUserProfile(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	mockDB.On("UpsertUser", mock.MatchedBy(func(user *models.User) bool {
		return user.Username == "testuser" &&
			user.Email == "testuser@example.com" &&
			user.FullName == "Test User" &&
			!user.Staff
	})).Return(&models.User{ID: uuid.New(), Username: "testuser"}, nil)
	mockDB.On("CreateRequest", mock.Anything).Return(&models.Request{ID: uuid.New(), Username: "testuser"}, nil)

	requestBody, _ := json.Marshal(models.Request{Title: "Budget records"})
	r := httptest.NewRequest(http.MethodPost, "/api/requests", bytes.NewReader(requestBody))
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{
		Username: "testuser",
		Email:    "testuser@example.com",
		FullName: "Test User",
	}))

	w := httptest.NewRecorder()
	CreateRequestService(svc, w, r)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestFlagRequestService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	requestID := uuid.New()
	mockDB.On("GetRequest", requestID).Return(&models.Request{
		ID:       requestID,
		Username: "testuser",
		Status:   models.StatusAck,
	}, nil)
	mockDB.On("CreateTask", mock.MatchedBy(func(task *models.Task) bool {
		return task.Type == models.TaskFlagged &&
			task.RequestID != nil && *task.RequestID == requestID &&
			task.Text == "The agency demanded fees it already waived."
	})).Return(&models.Task{ID: uuid.New(), Type: models.TaskFlagged}, nil)

	requestBody, _ := json.Marshal(map[string]string{"text": "The agency demanded fees it already waived."})
	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/flag", requestID), bytes.NewReader(requestBody))
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	FlagRequestService(svc, w, r)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestFlagRequestService_RequiresText(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	requestID := uuid.New()
	mockDB.On("GetRequest", requestID).Return(&models.Request{
		ID:       requestID,
		Username: "testuser",
		Status:   models.StatusAck,
	}, nil)

	requestBody, _ := json.Marshal(map[string]string{"text": "  "})
	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/flag", requestID), bytes.NewReader(requestBody))
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	FlagRequestService(svc, w, r)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	mockDB.AssertNotCalled(t, "CreateTask", mock.Anything)
}

func TestDeleteRequestService_NonDraftRejected(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	requestID := uuid.New()
	mockDB.On("GetRequest", requestID).Return(&models.Request{
		ID:       requestID,
		Username: "testuser",
		Status:   models.StatusAck,
	}, nil)

	r := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/requests/%s", requestID), nil)
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	DeleteRequestService(svc, w, r)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	mockDB.AssertNotCalled(t, "DeleteRequest", mock.Anything)
}

func TestPayRequestService(t *testing.T) {

	mockDB := new(MockStore)
	mockPublisher := new(MockNotifier)
	mockCharges := new(MockChargeClient)
	svc := &Service{Config: testConfig(), DB: mockDB, Publisher: mockPublisher, Charges: mockCharges}

	requestID := uuid.New()
	request := &models.Request{
		ID:         requestID,
		Username:   "testuser",
		Title:      "Inspection Records",
		Status:     models.StatusPayment,
		Email:      "records@agency.example.gov",
		PriceCents: 2500,
	}

	mockDB.On("GetRequest", requestID).Return(request, nil)
	mockCharges.On("New", mock.MatchedBy(func(params *stripe.ChargeParams) bool {
		return params.Amount != nil && *params.Amount == 2500
	})).Return(&stripe.Charge{ID: "ch_test_123"}, nil)
	mockDB.On("CreateCommunication", mock.Anything).Return(&models.Communication{ID: uuid.New()}, nil)
	mockDB.On("CreateTask", mock.MatchedBy(func(task *models.Task) bool {
		return task.Type == models.TaskSnailMail && task.AmountCents == 2500
	})).Return(&models.Task{ID: uuid.New()}, nil)
	mockDB.On("UpdateRequest", mock.Anything).Return(request, nil)
	mockDB.On("GetUser", "testuser").Return(&models.User{Email: "testuser@example.com"}, nil)
	mockPublisher.On("Notify", mock.Anything).Return(nil)

	requestBody, _ := json.Marshal(map[string]string{"token": "tok_visa"})
	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/pay", requestID), bytes.NewReader(requestBody))
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	PayRequestService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, models.StatusSubmitted, request.Status, "Paying returns the request to the agency")

	mockDB.AssertExpectations(t)
	mockCharges.AssertExpectations(t)
}

func TestPayRequestService_NotPayable(t *testing.T) {

	mockDB := new(MockStore)
	mockCharges := new(MockChargeClient)
	svc := &Service{Config: testConfig(), DB: mockDB, Charges: mockCharges}

	requestID := uuid.New()
	mockDB.On("GetRequest", requestID).Return(&models.Request{
		ID:       requestID,
		Username: "testuser",
		Status:   models.StatusProcessed,
	}, nil)

	requestBody, _ := json.Marshal(map[string]string{"token": "tok_visa"})
	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/requests/%s/pay", requestID), bytes.NewReader(requestBody))
	r = mux.SetURLVars(r, map[string]string{"request-id": requestID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	PayRequestService(svc, w, r)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	mockCharges.AssertNotCalled(t, "New", mock.Anything)
}

func TestFollowupDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// statutory period while awaiting acknowledgement
	ack := &models.Request{
		Status:       models.StatusAck,
		Jurisdiction: models.Jurisdiction{Level: models.LevelState, Days: intPtr(10)},
	}
	assert.Equal(t, 10, followupDays(ack, now))

	// an agency estimate in the future wins
	estimate := now.AddDate(0, 0, 45)
	estimated := &models.Request{
		Status:       models.StatusProcessed,
		Jurisdiction: models.Jurisdiction{Level: models.LevelState},
		DateEstimate: &estimate,
	}
	assert.Equal(t, 45, followupDays(estimated, now))

	// defaults by jurisdiction level
	federal := &models.Request{
		Status:       models.StatusProcessed,
		Jurisdiction: models.Jurisdiction{Level: models.LevelFederal},
	}
	assert.Equal(t, 30, followupDays(federal, now))

	local := &models.Request{
		Status:       models.StatusProcessed,
		Jurisdiction: models.Jurisdiction{Level: models.LevelLocal},
	}
	assert.Equal(t, 15, followupDays(local, now))
}

func TestUpdateDates_PausesWhilePaymentRequired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	submitted := now.AddDate(0, 0, -5)
	due := now.AddDate(0, 0, 7)

	request := &models.Request{
		Status:        models.StatusPayment,
		DateSubmitted: &submitted,
		DateDue:       &due,
	}

	updateDates(request, now, now)

	assert.Nil(t, request.DateDue, "The due date pauses while we owe the agency a payment")
	if assert.NotNil(t, request.DaysUntilDue) {
		assert.Equal(t, 7, *request.DaysUntilDue)
	}
}

func TestUpdateDates_ResumesAfterAcknowledgement(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	submitted := now.AddDate(0, 0, -10)

	request := &models.Request{
		Status:        models.StatusProcessed,
		DateSubmitted: &submitted,
		DaysUntilDue:  intPtr(7),
	}

	updateDates(request, now, now)

	assert.Nil(t, request.DaysUntilDue)
	if assert.NotNil(t, request.DateDue) {
		assert.Equal(t, now.AddDate(0, 0, 7), *request.DateDue)
	}
	assert.NotNil(t, request.DateFollowup)
}

func TestApplyEmbargoDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// a completed embargoed request gets a default expiration
	done := &models.Request{Status: models.StatusDone, Embargo: true}
	applyEmbargoDefaults(done, 30, now)
	if assert.NotNil(t, done.DateEmbargo) {
		assert.Equal(t, now.AddDate(0, 0, 30), *done.DateEmbargo)
	}

	// an active embargoed request has no expiration
	expiry := now.AddDate(0, 0, 10)
	active := &models.Request{Status: models.StatusProcessed, Embargo: true, DateEmbargo: &expiry}
	applyEmbargoDefaults(active, 30, now)
	assert.Nil(t, active.DateEmbargo)

	// clearing the embargo clears the expiration
	cleared := &models.Request{Status: models.StatusDone, Embargo: false, DateEmbargo: &expiry}
	applyEmbargoDefaults(cleared, 30, now)
	assert.Nil(t, cleared.DateEmbargo)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "use-of-force-reports-2025", Slugify("Use of Force Reports 2025"))
	assert.Equal(t, "whats-in-the-budget", Slugify("What's in the Budget?"))
	assert.Equal(t, "records", Slugify("  Records  "))
}
