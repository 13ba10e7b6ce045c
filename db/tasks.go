package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
)

const taskColumns = `id, type, resolved, assigned, resolved_by, created_at,
	date_done, agency_id, request_id, communication_id, project_id,
	crowdfund_id, reason, text, address, amount_cents`

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var dateDone sql.NullTime
	var agencyID, requestID, commID, projectID, crowdfundID uuid.NullUUID
	err := row.Scan(
		&task.ID,
		&task.Type,
		&task.Resolved,
		&task.Assigned,
		&task.ResolvedBy,
		&task.CreatedAt,
		&dateDone,
		&agencyID,
		&requestID,
		&commID,
		&projectID,
		&crowdfundID,
		&task.Reason,
		&task.Text,
		&task.Address,
		&task.AmountCents,
	)
	if err != nil {
		return nil, err
	}
	task.DateDone = nullTimePtr(dateDone)
	if agencyID.Valid {
		task.AgencyID = &agencyID.UUID
	}
	if requestID.Valid {
		task.RequestID = &requestID.UUID
	}
	if commID.Valid {
		task.CommunicationID = &commID.UUID
	}
	if projectID.Valid {
		task.ProjectID = &projectID.UUID
	}
	if crowdfundID.Valid {
		task.CrowdfundID = &crowdfundID.UUID
	}
	return &task, nil
}

// CreateTask opens a new staff task.
func (rdb *RequestsDB) CreateTask(task *models.Task) (*models.Task, error) {
	task.ID = uuid.New()
	task.CreatedAt = time.Now().UTC()

	_, err := rdb.DB.Exec(`
		INSERT INTO tasks (id, type, resolved, assigned, resolved_by,
			created_at, date_done, agency_id, request_id, communication_id,
			project_id, crowdfund_id, reason, text, address, amount_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16)`,
		task.ID, task.Type, task.Resolved, task.Assigned, task.ResolvedBy,
		task.CreatedAt, nullTime(task.DateDone), nullUUID(task.AgencyID),
		nullUUID(task.RequestID), nullUUID(task.CommunicationID),
		nullUUID(task.ProjectID), nullUUID(task.CrowdfundID), task.Reason,
		task.Text, task.Address, task.AmountCents)
	if err != nil {
		return nil, fmt.Errorf("error inserting task: %w", err)
	}

	return task, nil
}

// GetTask retrieves a single task by ID.
func (rdb *RequestsDB) GetTask(id uuid.UUID) (*models.Task, error) {
	row := rdb.DB.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving task: %w", err)
	}
	return task, nil
}

// GetTasks retrieves tasks, optionally filtered by type and resolution,
// oldest first.
func (rdb *RequestsDB) GetTasks(taskType string, resolved *bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []interface{}{}
	if taskType != "" {
		args = append(args, taskType)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if resolved != nil {
		args = append(args, *resolved)
		query += fmt.Sprintf(" AND resolved = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := rdb.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// ResolveTask marks a task resolved, recording who resolved it and when.
func (rdb *RequestsDB) ResolveTask(id uuid.UUID, resolvedBy string) error {
	_, err := rdb.DB.Exec(`UPDATE tasks
		SET resolved = TRUE, resolved_by = $1, date_done = $2
		WHERE id = $3`, resolvedBy, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error resolving task: %w", err)
	}
	return nil
}

// GetOrCreateStaleAgencyTask finds the unresolved stale agency task for
// an agency or opens one, reporting whether it was created. At most one
// unresolved stale agency task exists per agency.
func (rdb *RequestsDB) GetOrCreateStaleAgencyTask(agencyID uuid.UUID) (*models.Task, bool, error) {
	row := rdb.DB.QueryRow(`SELECT `+taskColumns+` FROM tasks
		WHERE type = $1 AND resolved = FALSE AND agency_id = $2
		ORDER BY created_at LIMIT 1`, models.TaskStaleAgency, agencyID)
	task, err := scanTask(row)
	if err == nil {
		return task, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("error retrieving stale agency task: %w", err)
	}

	created, err := rdb.CreateTask(&models.Task{
		Type:     models.TaskStaleAgency,
		AgencyID: &agencyID,
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// ResolveAgencyStaleTasks resolves all unresolved stale agency tasks for
// an agency.
func (rdb *RequestsDB) ResolveAgencyStaleTasks(agencyID uuid.UUID, resolvedBy string) error {
	_, err := rdb.DB.Exec(`UPDATE tasks
		SET resolved = TRUE, resolved_by = $1, date_done = $2
		WHERE type = $3 AND resolved = FALSE AND agency_id = $4`,
		resolvedBy, time.Now().UTC(), models.TaskStaleAgency, agencyID)
	if err != nil {
		return fmt.Errorf("error resolving stale agency tasks: %w", err)
	}
	return nil
}
