package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateAgencyService_UserSuggestionPending(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	agencyID := uuid.New()
	mockDB.On("CreateAgency", mock.MatchedBy(func(a *models.Agency) bool {
		return a.Status == models.AgencyPending && a.Slug == "springfield-water-department"
	})).Return(&models.Agency{
		ID:     agencyID,
		Name:   "Springfield Water Department",
		Status: models.AgencyPending,
	}, nil)
	mockDB.On("CreateTask", mock.MatchedBy(func(task *models.Task) bool {
		return task.Type == models.TaskNewAgency && task.AgencyID != nil && *task.AgencyID == agencyID
	})).Return(&models.Task{ID: uuid.New()}, nil)

	requestBody, _ := json.Marshal(models.Agency{Name: "Springfield Water Department"})
	r := httptest.NewRequest(http.MethodPost, "/api/agencies", bytes.NewReader(requestBody))
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	CreateAgencyService(svc, w, r)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestCreateAgencyService_StaffApprovedImmediately(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	mockDB.On("CreateAgency", mock.MatchedBy(func(a *models.Agency) bool {
		return a.Status == models.AgencyApproved
	})).Return(&models.Agency{ID: uuid.New(), Status: models.AgencyApproved}, nil)

	requestBody, _ := json.Marshal(models.Agency{Name: "State Archives"})
	r := httptest.NewRequest(http.MethodPost, "/api/agencies", bytes.NewReader(requestBody))
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	CreateAgencyService(svc, w, r)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	mockDB.AssertNotCalled(t, "CreateTask", mock.Anything)
}

func TestGetAgenciesService_NonStaffSeeApprovedOnly(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	mockDB.On("GetAgencies").Return([]models.Agency{
		{ID: uuid.New(), Name: "Approved Agency", Status: models.AgencyApproved},
		{ID: uuid.New(), Name: "Pending Agency", Status: models.AgencyPending},
	}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/agencies", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	GetAgenciesService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var agencies []models.Agency
	err := json.NewDecoder(res.Body).Decode(&agencies)
	assert.NoError(t, err)
	assert.Len(t, agencies, 1)
	assert.Equal(t, "Approved Agency", agencies[0].Name)
}

func TestApproveAgencyService_ResubmitsParkedRequests(t *testing.T) {

	mockDB := new(MockStore)
	mockPublisher := new(MockNotifier)
	svc := &Service{Config: testConfig(), DB: mockDB, Publisher: mockPublisher}

	agencyID := uuid.New()
	agency := &models.Agency{
		ID:     agencyID,
		Name:   "Springfield Water Department",
		Status: models.AgencyPending,
		Email:  "records@water.example.gov",
	}
	parked := models.Request{
		ID:       uuid.New(),
		Username: "testuser",
		Status:   models.StatusSubmitted,
		AgencyID: &agencyID,
		MailID:   "already-assigned-00123456",
	}

	mockDB.On("GetAgency", agencyID).Return(agency, nil)
	mockDB.On("UpdateAgency", mock.MatchedBy(func(a *models.Agency) bool {
		return a.Status == models.AgencyApproved
	})).Return(agency, nil)
	mockDB.On("GetAgencyRequestsByStatus", agencyID, models.StatusSubmitted).Return([]models.Request{parked}, nil)
	mockDB.On("GetLatestCommunication", parked.ID).Return(nil, nil)
	mockDB.On("UpdateRequest", mock.MatchedBy(func(req *models.Request) bool {
		return req.ID == parked.ID && req.Status == models.StatusAck
	})).Return(&parked, nil)
	mockDB.On("GetUser", "testuser").Return(nil, nil)
	mockPublisher.On("Notify", mock.Anything).Return(nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/agencies/%s/approve", agencyID), nil)
	r = mux.SetURLVars(r, map[string]string{"agency-id": agencyID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	ApproveAgencyService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestRejectAgencyService_ReturnsParkedToDraft(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	agencyID := uuid.New()
	agency := &models.Agency{ID: agencyID, Status: models.AgencyPending}
	parked := models.Request{
		ID:       uuid.New(),
		Username: "testuser",
		Status:   models.StatusSubmitted,
		AgencyID: &agencyID,
	}

	mockDB.On("GetAgency", agencyID).Return(agency, nil)
	mockDB.On("UpdateAgency", mock.MatchedBy(func(a *models.Agency) bool {
		return a.Status == models.AgencyRejected
	})).Return(agency, nil)
	mockDB.On("GetAgencyRequestsByStatus", agencyID, models.StatusSubmitted).Return([]models.Request{parked}, nil)
	mockDB.On("UpdateRequest", mock.MatchedBy(func(req *models.Request) bool {
		return req.ID == parked.ID && req.Status == models.StatusStarted
	})).Return(&parked, nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/agencies/%s/reject", agencyID), nil)
	r = mux.SetURLVars(r, map[string]string{"agency-id": agencyID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	RejectAgencyService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestRejectAgencyService_MovesParkedToReplacement(t *testing.T) {

	mockDB := new(MockStore)
	mockPublisher := new(MockNotifier)
	svc := &Service{Config: testConfig(), DB: mockDB, Publisher: mockPublisher}

	agencyID := uuid.New()
	replacementID := uuid.New()
	agency := &models.Agency{ID: agencyID, Status: models.AgencyPending}
	replacement := &models.Agency{
		ID:     replacementID,
		Status: models.AgencyApproved,
		Email:  "records@replacement.example.gov",
	}
	parked := models.Request{
		ID:       uuid.New(),
		Username: "testuser",
		Status:   models.StatusSubmitted,
		AgencyID: &agencyID,
		Email:    "records@old.example.gov",
	}

	mockDB.On("GetAgency", agencyID).Return(agency, nil)
	mockDB.On("GetAgency", replacementID).Return(replacement, nil)
	mockDB.On("UpdateAgency", mock.Anything).Return(agency, nil)
	mockDB.On("GetAgencyRequestsByStatus", agencyID, models.StatusSubmitted).Return([]models.Request{parked}, nil)
	mockDB.On("GetLatestCommunication", parked.ID).Return(nil, nil)
	mockDB.On("UpdateRequest", mock.MatchedBy(func(req *models.Request) bool {
		// addresses come from the replacement agency
		return req.Email == "records@replacement.example.gov" && req.Status == models.StatusAck
	})).Return(&parked, nil)
	mockDB.On("GetUser", "testuser").Return(nil, nil)
	mockPublisher.On("Notify", mock.Anything).Return(nil)

	requestBody, _ := json.Marshal(map[string]string{"replacement_agency_id": replacementID.String()})
	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/agencies/%s/reject", agencyID), bytes.NewReader(requestBody))
	r = mux.SetURLVars(r, map[string]string{"agency-id": agencyID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	RejectAgencyService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}
