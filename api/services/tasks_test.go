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

func staffClaims(username string) authn.Claims {
	claims := authn.Claims{Username: username}
	claims.RealmAccess.Roles = []string{authn.StaffRole}
	return claims
}

func TestGetTasksService_Filters(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	resolved := false
	mockDB.On("GetTasks", "orphan", &resolved).Return([]models.Task{
		{ID: uuid.New(), Type: models.TaskOrphan},
	}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/tasks?type=orphan&resolved=false", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	GetTasksService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestGetTasksService_BadResolvedParam(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	r := httptest.NewRequest(http.MethodGet, "/api/tasks?resolved=maybe", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	GetTasksService(svc, w, r)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	mockDB.AssertNotCalled(t, "GetTasks", mock.Anything, mock.Anything)
}

func TestResolveTaskService_StaleAgencyUnmarks(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	taskID := uuid.New()
	agencyID := uuid.New()
	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:       taskID,
		Type:     models.TaskStaleAgency,
		AgencyID: &agencyID,
	}, nil)
	mockDB.On("SetAgencyStale", agencyID, false, false).Return(nil)
	mockDB.On("ResolveAgencyStaleTasks", agencyID, "staffer").Return(nil)
	mockDB.On("ResolveTask", taskID, "staffer").Return(nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/tasks/%s/resolve", taskID), nil)
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	ResolveTaskService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestResolveTaskService_AlreadyResolved(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	taskID := uuid.New()
	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:       taskID,
		Type:     models.TaskResponse,
		Resolved: true,
	}, nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/tasks/%s/resolve", taskID), nil)
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	ResolveTaskService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	mockDB.AssertNotCalled(t, "ResolveTask", mock.Anything, mock.Anything)
}

func TestMoveOrphanService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	taskID := uuid.New()
	commID := uuid.New()
	requestID := uuid.New()
	request := &models.Request{
		ID:     requestID,
		Status: models.StatusAck,
	}

	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:              taskID,
		Type:            models.TaskOrphan,
		CommunicationID: &commID,
		Reason:          models.OrphanBadSender,
	}, nil)
	mockDB.On("GetRequest", requestID).Return(request, nil)
	mockDB.On("GetCommunication", commID).Return(&models.Communication{ID: commID}, nil)
	mockDB.On("MoveCommunication", commID, requestID).Return(nil)
	mockDB.On("CreateTask", mock.MatchedBy(func(task *models.Task) bool {
		return task.Type == models.TaskResponse
	})).Return(&models.Task{ID: uuid.New()}, nil)
	mockDB.On("UpdateRequest", mock.Anything).Return(request, nil)
	mockDB.On("ResolveTask", taskID, "staffer").Return(nil)

	requestBody, _ := json.Marshal(map[string]string{"request_id": requestID.String()})
	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/tasks/%s/orphan/move", taskID), bytes.NewReader(requestBody))
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	MoveOrphanService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, models.StatusProcessed, request.Status, "The moved mail counts as a response")
	mockDB.AssertExpectations(t)
}

func TestMoveOrphanService_WrongTaskType(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	taskID := uuid.New()
	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:   taskID,
		Type: models.TaskResponse,
	}, nil)

	requestBody, _ := json.Marshal(map[string]string{"request_id": uuid.NewString()})
	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/tasks/%s/orphan/move", taskID), bytes.NewReader(requestBody))
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	MoveOrphanService(svc, w, r)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	mockDB.AssertNotCalled(t, "MoveCommunication", mock.Anything, mock.Anything)
}

func TestRejectOrphanService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	taskID := uuid.New()
	commID := uuid.New()
	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:              taskID,
		Type:            models.TaskOrphan,
		CommunicationID: &commID,
	}, nil)
	mockDB.On("DeleteCommunication", commID).Return(nil)
	mockDB.On("ResolveTask", taskID, "staffer").Return(nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/tasks/%s/orphan/reject", taskID), nil)
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	RejectOrphanService(svc, w, r)

	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestStaleAgencyReviewService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	taskID := uuid.New()
	agencyID := uuid.New()
	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:       taskID,
		Type:     models.TaskStaleAgency,
		AgencyID: &agencyID,
	}, nil)
	mockDB.On("GetAgency", agencyID).Return(&models.Agency{
		ID:    agencyID,
		Name:  "Silent Agency",
		Stale: true,
	}, nil)
	daysSince := 130
	mockDB.On("GetStaleRequests", agencyID).Return([]models.StaleRequest{
		{Request: models.Request{ID: uuid.New(), Status: models.StatusProcessed}, DaysSinceResponse: &daysSince},
	}, nil)
	mockDB.On("GetLatestAgencyResponse", agencyID).Return(nil, nil)

	r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%s/stale-requests", taskID), nil)
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	StaleAgencyReviewService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var review models.StaleAgencyReview
	err := json.NewDecoder(res.Body).Decode(&review)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, "Silent Agency", review.Agency.Name)
	assert.Len(t, review.StaleRequests, 1)
}
