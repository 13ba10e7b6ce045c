package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
)

const communicationColumns = `id, request_id, from_addr, to_addr, subject,
	body, response, autogenerated, delivered_by, date`

func scanCommunication(row rowScanner) (*models.Communication, error) {
	var comm models.Communication
	var requestID uuid.NullUUID
	err := row.Scan(
		&comm.ID,
		&requestID,
		&comm.From,
		&comm.To,
		&comm.Subject,
		&comm.Body,
		&comm.Response,
		&comm.Autogenerated,
		&comm.DeliveredBy,
		&comm.Date,
	)
	if err != nil {
		return nil, err
	}
	if requestID.Valid {
		comm.RequestID = &requestID.UUID
	}
	return &comm, nil
}

// CreateCommunication appends a message to a request's thread.
func (rdb *RequestsDB) CreateCommunication(comm *models.Communication) (*models.Communication, error) {
	comm.ID = uuid.New()
	if comm.Date.IsZero() {
		comm.Date = time.Now().UTC()
	}

	_, err := rdb.DB.Exec(`
		INSERT INTO communications (id, request_id, from_addr, to_addr,
			subject, body, response, autogenerated, delivered_by, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		comm.ID, nullUUID(comm.RequestID), comm.From, comm.To, comm.Subject,
		comm.Body, comm.Response, comm.Autogenerated, comm.DeliveredBy, comm.Date)
	if err != nil {
		return nil, fmt.Errorf("error inserting communication: %w", err)
	}

	return comm, nil
}

// GetCommunication retrieves a single message.
func (rdb *RequestsDB) GetCommunication(id uuid.UUID) (*models.Communication, error) {
	row := rdb.DB.QueryRow(`SELECT `+communicationColumns+`
		FROM communications WHERE id = $1`, id)
	comm, err := scanCommunication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving communication: %w", err)
	}
	return comm, nil
}

// MoveCommunication reattaches an orphaned message to a request.
func (rdb *RequestsDB) MoveCommunication(id, requestID uuid.UUID) error {
	return rdb.execQuery(nil, `UPDATE communications SET request_id = $1 WHERE id = $2`,
		requestID, id)
}

// DeleteCommunication removes a message. Only orphans are ever deleted.
func (rdb *RequestsDB) DeleteCommunication(id uuid.UUID) error {
	return rdb.execQuery(nil, `DELETE FROM communications WHERE id = $1`, id)
}

// GetCommunications retrieves a request's thread in chronological order.
func (rdb *RequestsDB) GetCommunications(requestID uuid.UUID) ([]models.Communication, error) {
	rows, err := rdb.DB.Query(`SELECT `+communicationColumns+`
		FROM communications WHERE request_id = $1 ORDER BY date`, requestID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving communications: %w", err)
	}
	defer rows.Close()

	var comms []models.Communication
	for rows.Next() {
		comm, err := scanCommunication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning communication: %w", err)
		}
		comms = append(comms, *comm)
	}
	return comms, rows.Err()
}

// GetLatestCommunication retrieves the newest message on a request.
func (rdb *RequestsDB) GetLatestCommunication(requestID uuid.UUID) (*models.Communication, error) {
	row := rdb.DB.QueryRow(`SELECT `+communicationColumns+`
		FROM communications WHERE request_id = $1
		ORDER BY date DESC LIMIT 1`, requestID)
	comm, err := scanCommunication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving latest communication: %w", err)
	}
	return comm, nil
}

// GetLatestAgencyResponse retrieves the most recent response an agency has
// sent across all of its requests.
func (rdb *RequestsDB) GetLatestAgencyResponse(agencyID uuid.UUID) (*models.Communication, error) {
	row := rdb.DB.QueryRow(`SELECT `+communicationColumns+`
		FROM communications
		WHERE response = TRUE AND request_id IN (
			SELECT id FROM requests WHERE agency_id = $1
		)
		ORDER BY date DESC LIMIT 1`, agencyID)
	comm, err := scanCommunication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving latest agency response: %w", err)
	}
	return comm, nil
}
