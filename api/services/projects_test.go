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
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateProjectService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	mockDB.On("CreateProject", mock.MatchedBy(func(p *models.Project) bool {
		// new projects start private and unreviewed, with the creator on board
		return p.Private && !p.Approved && p.HasContributor("testuser")
	})).Return(&models.Project{ID: uuid.New(), Title: "Police Accountability"}, nil)

	requestBody, _ := json.Marshal(models.Project{Title: "Police Accountability"})
	r := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(requestBody))
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	CreateProjectService(svc, w, r)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestGetProjectsService_HidesPrivateFromOthers(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	mockDB.On("GetProjects").Return([]models.Project{
		{ID: uuid.New(), Title: "Public Project", Approved: true},
		{ID: uuid.New(), Title: "Private Project", Private: true, Contributors: []string{"someoneelse"}},
	}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	GetProjectsService(svc, w, r)

	res := w.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response models.ProjectsResponse
	err := json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Len(t, response.Projects, 1)
	assert.Equal(t, "Public Project", response.Projects[0].Title)
}

func TestPublishProjectService_OpensReviewTask(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	projectID := uuid.New()
	mockDB.On("GetProject", projectID).Return(&models.Project{
		ID:           projectID,
		Title:        "Police Accountability",
		Private:      true,
		Contributors: []string{"testuser"},
	}, nil)
	mockDB.On("CreateTask", mock.MatchedBy(func(task *models.Task) bool {
		return task.Type == models.TaskProjectReview && task.ProjectID != nil && *task.ProjectID == projectID
	})).Return(&models.Task{ID: uuid.New()}, nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/projects/%s/publish", projectID), nil)
	r = mux.SetURLVars(r, map[string]string{"project-id": projectID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, authn.Claims{Username: "testuser"}))

	w := httptest.NewRecorder()
	PublishProjectService(svc, w, r)

	assert.Equal(t, http.StatusAccepted, w.Result().StatusCode)
	mockDB.AssertExpectations(t)
}

func TestApproveProjectService(t *testing.T) {

	mockDB := new(MockStore)
	mockPublisher := new(MockNotifier)
	svc := &Service{Config: testConfig(), DB: mockDB, Publisher: mockPublisher}

	taskID := uuid.New()
	projectID := uuid.New()
	project := &models.Project{
		ID:           projectID,
		Title:        "Police Accountability",
		Private:      true,
		Contributors: []string{"testuser", "collaborator"},
	}

	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:        taskID,
		Type:      models.TaskProjectReview,
		ProjectID: &projectID,
	}, nil)
	mockDB.On("GetProject", projectID).Return(project, nil)
	mockDB.On("SetProjectFlags", projectID, true, false).Return(nil)
	mockDB.On("GetProjectContributors", projectID).Return([]models.User{
		{Username: "testuser", Email: "testuser@example.com"},
		{Username: "collaborator", Email: ""},
	}, nil)
	// contributors without an email on file are skipped
	mockPublisher.On("Notify", mock.MatchedBy(func(e events.EventPayload) bool {
		return e.Type == events.EventProjectReviewed && e.Recipient == "testuser@example.com"
	})).Return(nil).Once()
	mockDB.On("ResolveTask", taskID, "staffer").Return(nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/tasks/%s/project/approve", taskID), nil)
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	ApproveProjectService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.True(t, project.Approved)
	assert.False(t, project.Private)

	mockDB.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestRejectProjectService(t *testing.T) {

	mockDB := new(MockStore)
	svc := &Service{Config: testConfig(), DB: mockDB}

	taskID := uuid.New()
	projectID := uuid.New()
	project := &models.Project{ID: projectID, Title: "Not Ready"}

	mockDB.On("GetTask", taskID).Return(&models.Task{
		ID:        taskID,
		Type:      models.TaskProjectReview,
		ProjectID: &projectID,
	}, nil)
	mockDB.On("GetProject", projectID).Return(project, nil)
	mockDB.On("SetProjectFlags", projectID, false, true).Return(nil)
	mockDB.On("ResolveTask", taskID, "staffer").Return(nil)

	r := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/tasks/%s/project/reject", taskID), nil)
	r = mux.SetURLVars(r, map[string]string{"task-id": taskID.String()})
	r = r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, staffClaims("staffer")))

	w := httptest.NewRecorder()
	RejectProjectService(svc, w, r)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.False(t, project.Approved)
	assert.True(t, project.Private)
	mockDB.AssertExpectations(t)
}
