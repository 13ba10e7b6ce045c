package services

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// GetTasksService lists the staff work queue, optionally filtered by
// type and resolution via query parameters.
func GetTasksService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	taskType := r.URL.Query().Get("type")
	var resolved *bool
	if v := r.URL.Query().Get("resolved"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteResponse(w, http.StatusBadRequest, nil)
			return
		}
		resolved = &parsed
	}

	tasks, err := svc.DB.GetTasks(taskType, resolved)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve tasks from database")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	logger.Info().Int("task_count", len(tasks)).Msg("Successfully retrieved tasks")
	WriteResponse(w, http.StatusOK, models.TasksResponse{Tasks: tasks})
}

func loadTask(svc *Service, w http.ResponseWriter, r *http.Request) *models.Task {
	logger := zerolog.Ctx(r.Context())

	taskID, err := uuid.Parse(mux.Vars(r)["task-id"])
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid task id")
		WriteResponse(w, http.StatusBadRequest, nil)
		return nil
	}

	task, err := svc.DB.GetTask(taskID)
	if err != nil {
		logger.Error().Err(err).Str("task_id", taskID.String()).Msg("Database error retrieving task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return nil
	}
	if task == nil {
		WriteResponse(w, http.StatusNotFound, nil)
		return nil
	}
	return task
}

// GetTaskService retrieves a single task.
func GetTaskService(svc *Service, w http.ResponseWriter, r *http.Request) {
	task := loadTask(svc, w, r)
	if task == nil {
		return
	}
	WriteResponse(w, http.StatusOK, *task)
}

// ResolveTaskService marks a task done. Resolving a stale agency task
// also clears the agency's stale flag.
func ResolveTaskService(svc *Service, w http.ResponseWriter, r *http.Request) {

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
	if task.Resolved {
		WriteResponse(w, http.StatusOK, *task)
		return
	}

	if task.Type == models.TaskStaleAgency && task.AgencyID != nil {
		if err := svc.unmarkAgencyStale(*task.AgencyID, claims.Username); err != nil {
			logger.Error().Err(err).Str("task_id", task.ID.String()).Msg("Failed to unmark stale agency")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
	}

	if err := svc.DB.ResolveTask(task.ID, claims.Username); err != nil {
		logger.Error().Err(err).Str("task_id", task.ID.String()).Msg("Database error resolving task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	task.Resolved = true
	task.ResolvedBy = claims.Username
	logger.Info().Str("task_id", task.ID.String()).Str("resolved_by", claims.Username).Msg("Task resolved")
	WriteResponse(w, http.StatusOK, *task)
}

// StaleAgencyReviewService builds the review view for a stale agency
// task: the agency, its silent requests ordered by how long they have
// waited, and the last response it ever sent.
func StaleAgencyReviewService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	task := loadTask(svc, w, r)
	if task == nil {
		return
	}
	if task.Type != models.TaskStaleAgency || task.AgencyID == nil {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	agency, err := svc.DB.GetAgency(*task.AgencyID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving agency")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if agency == nil {
		WriteResponse(w, http.StatusNotFound, nil)
		return
	}

	staleRequests, err := svc.DB.GetStaleRequests(agency.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving stale requests")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if staleRequests == nil {
		staleRequests = []models.StaleRequest{}
	}

	latest, err := svc.DB.GetLatestAgencyResponse(agency.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving latest response")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	WriteResponse(w, http.StatusOK, models.StaleAgencyReview{
		Task:           *task,
		Agency:         *agency,
		StaleRequests:  staleRequests,
		LatestResponse: latest,
	})
}

// MoveOrphanService reattaches an orphaned communication to a request
// and processes it as a response.
func MoveOrphanService(svc *Service, w http.ResponseWriter, r *http.Request) {

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
	if task.Type != models.TaskOrphan || task.CommunicationID == nil {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	var payload struct {
		RequestID uuid.UUID `json:"request_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.RequestID == uuid.Nil {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	request, err := svc.DB.GetRequest(payload.RequestID)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if request == nil {
		WriteResponse(w, http.StatusNotFound, nil)
		return
	}

	comm, err := svc.DB.GetCommunication(*task.CommunicationID)
	if err != nil || comm == nil {
		logger.Error().Err(err).Msg("Database error retrieving orphaned communication")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if err := svc.DB.MoveCommunication(comm.ID, request.ID); err != nil {
		logger.Error().Err(err).Msg("Database error moving communication")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	// the moved mail counts as a fresh response
	now := time.Now().UTC()
	if _, err := svc.DB.CreateTask(&models.Task{
		Type:            models.TaskResponse,
		RequestID:       &request.ID,
		CommunicationID: &comm.ID,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to create response task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}
	if request.Status == models.StatusAck {
		request.Status = models.StatusProcessed
	}
	request.DateUpdated = &now
	if _, err := svc.DB.UpdateRequest(request); err != nil {
		logger.Error().Err(err).Msg("Database error updating request")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if err := svc.DB.ResolveTask(task.ID, claims.Username); err != nil {
		logger.Error().Err(err).Msg("Database error resolving orphan task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("task_id", task.ID.String()).Str("request_id", request.ID.String()).Msg("Orphan moved to request")
	WriteResponse(w, http.StatusOK, *task)
}

// RejectOrphanService discards an orphaned communication.
func RejectOrphanService(svc *Service, w http.ResponseWriter, r *http.Request) {

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
	if task.Type != models.TaskOrphan {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	if task.CommunicationID != nil {
		if err := svc.DB.DeleteCommunication(*task.CommunicationID); err != nil {
			logger.Error().Err(err).Msg("Database error deleting orphaned communication")
			WriteResponse(w, http.StatusInternalServerError, nil)
			return
		}
	}

	if err := svc.DB.ResolveTask(task.ID, claims.Username); err != nil {
		logger.Error().Err(err).Msg("Database error resolving orphan task")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	logger.Info().Str("task_id", task.ID.String()).Msg("Orphan rejected")
	WriteResponse(w, http.StatusNoContent, nil)
}
