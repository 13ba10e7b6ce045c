package services

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CreateProjectService creates a private, unapproved project with the
// authenticated user as its first contributor.
func CreateProjectService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	var payload models.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid project payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}
	if payload.Title == "" {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	payload.Slug = Slugify(payload.Title)
	payload.Private = true
	payload.Approved = false
	if !payload.HasContributor(claims.Username) {
		payload.Contributors = append(payload.Contributors, claims.Username)
	}

	svc.syncUser(logger, claims)

	project, err := svc.DB.CreateProject(&payload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create project in database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("project_id", project.ID.String()).Msg("Project created successfully")
	var location = fmt.Sprintf("%s/%s", r.URL.Path, project.ID)
	WriteResponse(w, http.StatusCreated, *project, location)
}

// GetProjectsService lists the projects visible to the authenticated
// user.
func GetProjectsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	projects, err := svc.DB.GetProjects()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve projects from database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	visible := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.Visible(claims.Username, claims.IsStaff()) {
			visible = append(visible, p)
		}
	}

	WriteResponse(w, http.StatusOK, models.ProjectsResponse{Projects: visible})
}

func loadVisibleProject(svc *Service, w http.ResponseWriter, r *http.Request, claims authn.Claims) *models.Project {
	logger := zerolog.Ctx(r.Context())

	projectID, err := uuid.Parse(mux.Vars(r)["project-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid project id")
		WriteResponse(w, http.StatusBadRequest, nil)
		return nil
	}

	project, err := svc.DB.GetProject(projectID)
	if err != nil {
		logger.Error().Err(err).Str("project_id", projectID.String()).Msg("Database error retrieving project")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return nil
	}
	if project == nil {
		WriteResponse(w, http.StatusNotFound, nil)
		return nil
	}
	if !project.Visible(claims.Username, claims.IsStaff()) {
		// hidden projects do not exist for outsiders
		WriteResponse(w, http.StatusNotFound, nil)
		return nil
	}
	return project
}

// GetProjectService retrieves a project with its linked objects
// expanded.
func GetProjectService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	project := loadVisibleProject(svc, w, r, claims)
	if project == nil {
		return
	}

	contributors, err := svc.DB.GetProjectContributors(project.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving contributors")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	requests := make([]models.Request, 0, len(project.RequestIDs))
	for _, id := range project.RequestIDs {
		req, err := svc.DB.GetRequest(id)
		if err != nil {
			logger.Error().Err(err).Msg("Database error retrieving project request")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
		if req != nil && req.Viewable(claims.Username, claims.IsStaff()) {
			requests = append(requests, *req)
		}
	}

	articles, err := svc.DB.GetArticles(project.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving articles")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	crowdfunds, err := svc.DB.GetProjectCrowdfunds(project.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving project crowdfunds")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if contributors == nil {
		contributors = []models.User{}
	}
	if articles == nil {
		articles = []models.Article{}
	}
	if crowdfunds == nil {
		crowdfunds = []models.Crowdfund{}
	}

	WriteResponse(w, http.StatusOK, models.ProjectDetail{
		Project:      *project,
		Contributors: contributors,
		Requests:     requests,
		Articles:     articles,
		Crowdfunds:   crowdfunds,
	})
}

// UpdateProjectService updates a project's content and links. Only
// contributors and staff may edit.
func UpdateProjectService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	project := loadVisibleProject(svc, w, r, claims)
	if project == nil {
		return
	}
	if !project.HasContributor(claims.Username) && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	var payload models.Project
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn().Err(err).Msg("Invalid project update payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	project.Title = payload.Title
	project.Slug = Slugify(payload.Title)
	project.Summary = payload.Summary
	project.Description = payload.Description
	project.ImageURL = payload.ImageURL
	project.Contributors = payload.Contributors
	project.RequestIDs = payload.RequestIDs
	project.ArticleIDs = payload.ArticleIDs
	if !project.HasContributor(claims.Username) && !claims.IsStaff() {
		// editors cannot remove themselves by accident
		project.Contributors = append(project.Contributors, claims.Username)
	}

	updated, err := svc.DB.UpdateProject(project)
	if err != nil {
		logger.Error().Err(err).Str("project_id", project.ID.String()).Msg("Database error updating project")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("project_id", updated.ID.String()).Msg("Project updated successfully")
	WriteResponse(w, http.StatusOK, *updated)
}

// DeleteProjectService removes a project. Its requests and articles are
// untouched.
func DeleteProjectService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	project := loadVisibleProject(svc, w, r, claims)
	if project == nil {
		return
	}
	if !project.HasContributor(claims.Username) && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	if err := svc.DB.DeleteProject(project.ID); err != nil {
		logger.Error().Err(err).Str("project_id", project.ID.String()).Msg("Database error deleting project")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("project_id", project.ID.String()).Msg("Project deleted successfully")
	WriteResponse(w, http.StatusNoContent, nil)
}

// PublishProjectService asks staff to review a private project for
// public listing.
func PublishProjectService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	project := loadVisibleProject(svc, w, r, claims)
	if project == nil {
		return
	}
	if !project.HasContributor(claims.Username) && !claims.IsStaff() {
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}
	if project.Approved && !project.Private {
		// already public
		WriteResponse(w, http.StatusOK, *project)
		return
	}

	task, err := svc.DB.CreateTask(&models.Task{
		Type:      models.TaskProjectReview,
		ProjectID: &project.ID,
		Text:      fmt.Sprintf("Project %q submitted for review by %s", project.Title, claims.Username),
	})
	if err != nil {
		logger.Error().Err(err).Str("project_id", project.ID.String()).Msg("Failed to create project review task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("project_id", project.ID.String()).Str("task_id", task.ID.String()).Msg("Project submitted for review")
	WriteResponse(w, http.StatusAccepted, *project)
}

// reviewProject applies a staff review decision and notifies the
// contributors. The reviewer is recorded on the task resolution.
func (svc *Service) reviewProject(logger *zerolog.Logger, project *models.Project, approved bool) error {
	action := "rejected"
	if approved {
		action = "approved"
	}

	if err := svc.DB.SetProjectFlags(project.ID, approved, !approved); err != nil {
		return fmt.Errorf("error updating project flags: %w", err)
	}
	project.Approved = approved
	project.Private = !approved

	if svc.Publisher == nil {
		return nil
	}
	contributors, err := svc.DB.GetProjectContributors(project.ID)
	if err != nil {
		return fmt.Errorf("error retrieving contributors: %w", err)
	}
	for _, c := range contributors {
		if c.Email == "" {
			continue
		}
		if err := svc.Publisher.Notify(events.EventPayload{
			Type:      events.EventProjectReviewed,
			ObjectID:  project.ID.String(),
			Recipient: c.Email,
			Data:      map[string]string{"title": project.Title, "action": action},
		}); err != nil {
			logger.Error().Err(err).Str("project_id", project.ID.String()).Msg("Failed to publish project review event")
		}
	}
	return nil
}

// ApproveProjectService resolves a review task by making the project
// publicly visible.
func ApproveProjectService(svc *Service, w http.ResponseWriter, r *http.Request) {
	projectReviewService(svc, w, r, true)
}

// RejectProjectService resolves a review task by keeping the project
// private.
func RejectProjectService(svc *Service, w http.ResponseWriter, r *http.Request) {
	projectReviewService(svc, w, r, false)
}

func projectReviewService(svc *Service, w http.ResponseWriter, r *http.Request, approved bool) {

	logger := zerolog.Ctx(r.Context())

	claims, ok := r.Context().Value(middleware.ClaimsKey).(authn.Claims)
	if !ok {
		WriteResponse(w, http.StatusUnauthorized, nil)
		return
	}

	task := loadTask(svc, w, r)
	if task == nil {
		return
	}
	if task.Type != models.TaskProjectReview || task.ProjectID == nil {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	project, err := svc.DB.GetProject(*task.ProjectID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving project")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if project == nil {
		WriteResponse(w, http.StatusNotFound, nil)
		return
	}

	if err := svc.reviewProject(logger, project, approved); err != nil {
		logger.Error().Err(err).Str("project_id", project.ID.String()).Msg("Failed to review project")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if err := svc.DB.ResolveTask(task.ID, claims.Username); err != nil {
		logger.Error().Err(err).Str("task_id", task.ID.String()).Msg("Database error resolving review task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("project_id", project.ID.String()).Bool("approved", approved).Msg("Project reviewed")
	WriteResponse(w, http.StatusOK, *project)
}
