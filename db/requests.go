package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const requestColumns = `id, username, title, slug, status, jurisdiction_name,
	jurisdiction_level, jurisdiction_days, agency_id, requested_docs,
	description, tracking_id, mail_id, email, cc_emails, date_submitted,
	date_updated, date_done, date_due, days_until_due, date_followup,
	date_estimate, embargo, permanent_embargo, date_embargo, price_cents,
	disable_autofollowups, block_incoming, crowdfund_id, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var req models.Request
	var jurisdictionDays, daysUntilDue sql.NullInt64
	var agencyID, crowdfundID uuid.NullUUID
	var submitted, updated, done, due, followup, estimate, embargo sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.Username,
		&req.Title,
		&req.Slug,
		&req.Status,
		&req.Jurisdiction.Name,
		&req.Jurisdiction.Level,
		&jurisdictionDays,
		&agencyID,
		&req.RequestedDocs,
		&req.Description,
		&req.TrackingID,
		&req.MailID,
		&req.Email,
		pq.Array(&req.CCEmails),
		&submitted,
		&updated,
		&done,
		&due,
		&daysUntilDue,
		&followup,
		&estimate,
		&req.Embargo,
		&req.PermanentEmbargo,
		&embargo,
		&req.PriceCents,
		&req.DisableAutofollowups,
		&req.BlockIncoming,
		&crowdfundID,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if jurisdictionDays.Valid {
		days := int(jurisdictionDays.Int64)
		req.Jurisdiction.Days = &days
	}
	if daysUntilDue.Valid {
		days := int(daysUntilDue.Int64)
		req.DaysUntilDue = &days
	}
	if agencyID.Valid {
		req.AgencyID = &agencyID.UUID
	}
	if crowdfundID.Valid {
		req.CrowdfundID = &crowdfundID.UUID
	}
	req.DateSubmitted = nullTimePtr(submitted)
	req.DateUpdated = nullTimePtr(updated)
	req.DateDone = nullTimePtr(done)
	req.DateDue = nullTimePtr(due)
	req.DateFollowup = nullTimePtr(followup)
	req.DateEstimate = nullTimePtr(estimate)
	req.DateEmbargo = nullTimePtr(embargo)

	return &req, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func nullInt(days *int) sql.NullInt64 {
	if days == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*days), Valid: true}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func collectRequests(rows *sql.Rows) ([]models.Request, error) {
	defer rows.Close()
	var requests []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// CreateRequest inserts a new request.
func (rdb *RequestsDB) CreateRequest(req *models.Request) (*models.Request, error) {
	tx, err := rdb.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	req.ID = uuid.New()
	req.CreatedAt = time.Now().UTC()

	err = rdb.execQuery(tx, `
		INSERT INTO requests (id, username, title, slug, status,
			jurisdiction_name, jurisdiction_level, jurisdiction_days,
			agency_id, requested_docs, description, tracking_id, mail_id,
			email, cc_emails, date_submitted, date_updated, date_done,
			date_due, days_until_due, date_followup, date_estimate, embargo,
			permanent_embargo, date_embargo, price_cents,
			disable_autofollowups, block_incoming, crowdfund_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
			$28, $29, $30)`,
		req.ID, req.Username, req.Title, req.Slug, req.Status,
		req.Jurisdiction.Name, req.Jurisdiction.Level,
		nullInt(req.Jurisdiction.Days), nullUUID(req.AgencyID),
		req.RequestedDocs, req.Description, req.TrackingID, req.MailID,
		req.Email, pq.Array(req.CCEmails), nullTime(req.DateSubmitted),
		nullTime(req.DateUpdated), nullTime(req.DateDone),
		nullTime(req.DateDue), nullInt(req.DaysUntilDue),
		nullTime(req.DateFollowup), nullTime(req.DateEstimate), req.Embargo,
		req.PermanentEmbargo, nullTime(req.DateEmbargo), req.PriceCents,
		req.DisableAutofollowups, req.BlockIncoming,
		nullUUID(req.CrowdfundID), req.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error inserting request: %w", err)
	}

	if err := rdb.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return req, nil
}

// GetRequest retrieves a single request by ID.
func (rdb *RequestsDB) GetRequest(id uuid.UUID) (*models.Request, error) {
	row := rdb.DB.QueryRow(`SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving request: %w", err)
	}
	return req, nil
}

// GetRequestByMailID retrieves a request by its inbound mail address local part.
func (rdb *RequestsDB) GetRequestByMailID(mailID string) (*models.Request, error) {
	row := rdb.DB.QueryRow(`SELECT `+requestColumns+` FROM requests WHERE mail_id = $1`, mailID)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving request by mail id: %w", err)
	}
	return req, nil
}

// GetViewableRequests retrieves the requests visible to the named user:
// their own, plus all non-draft, non-embargoed requests. Staff see
// everything.
func (rdb *RequestsDB) GetViewableRequests(username string, staff bool) ([]models.Request, error) {
	var rows *sql.Rows
	var err error
	if staff {
		rows, err = rdb.DB.Query(`SELECT ` + requestColumns + ` FROM requests ORDER BY created_at DESC`)
	} else {
		rows, err = rdb.DB.Query(`SELECT `+requestColumns+` FROM requests
			WHERE username = $1 OR (status != 'started' AND embargo = FALSE)
			ORDER BY created_at DESC`, username)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving requests: %w", err)
	}
	return collectRequests(rows)
}

// UpdateRequest persists all mutable fields of a request.
func (rdb *RequestsDB) UpdateRequest(req *models.Request) (*models.Request, error) {
	tx, err := rdb.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	err = rdb.execQuery(tx, `
		UPDATE requests SET title = $1, slug = $2, status = $3,
			jurisdiction_name = $4, jurisdiction_level = $5,
			jurisdiction_days = $6, agency_id = $7, requested_docs = $8,
			description = $9, tracking_id = $10, mail_id = $11, email = $12,
			cc_emails = $13, date_submitted = $14, date_updated = $15,
			date_done = $16, date_due = $17, days_until_due = $18,
			date_followup = $19, date_estimate = $20, embargo = $21,
			permanent_embargo = $22, date_embargo = $23, price_cents = $24,
			disable_autofollowups = $25, block_incoming = $26,
			crowdfund_id = $27
		WHERE id = $28`,
		req.Title, req.Slug, req.Status, req.Jurisdiction.Name,
		req.Jurisdiction.Level, nullInt(req.Jurisdiction.Days),
		nullUUID(req.AgencyID), req.RequestedDocs, req.Description,
		req.TrackingID, req.MailID, req.Email, pq.Array(req.CCEmails),
		nullTime(req.DateSubmitted), nullTime(req.DateUpdated),
		nullTime(req.DateDone), nullTime(req.DateDue),
		nullInt(req.DaysUntilDue), nullTime(req.DateFollowup),
		nullTime(req.DateEstimate), req.Embargo, req.PermanentEmbargo,
		nullTime(req.DateEmbargo), req.PriceCents, req.DisableAutofollowups,
		req.BlockIncoming, nullUUID(req.CrowdfundID), req.ID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error updating request: %w", err)
	}

	if err := rdb.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return req, nil
}

// DeleteRequest removes a request. Only drafts should reach this.
func (rdb *RequestsDB) DeleteRequest(id uuid.UUID) error {
	_, err := rdb.DB.Exec(`DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting request: %w", err)
	}
	return nil
}

// GetOpenRequests retrieves requests awaiting an agency response,
// optionally restricted to one agency, oldest submission first.
func (rdb *RequestsDB) GetOpenRequests(agencyID *uuid.UUID) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests
		WHERE status IN ('ack', 'processed', 'appealing')`
	var rows *sql.Rows
	var err error
	if agencyID != nil {
		rows, err = rdb.DB.Query(query+` AND agency_id = $1 ORDER BY date_submitted`, *agencyID)
	} else {
		rows, err = rdb.DB.Query(query + ` ORDER BY date_submitted`)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving open requests: %w", err)
	}
	return collectRequests(rows)
}

// GetAgencyRequestsByStatus retrieves an agency's requests in a given
// status, oldest first.
func (rdb *RequestsDB) GetAgencyRequestsByStatus(agencyID uuid.UUID, status string) ([]models.Request, error) {
	rows, err := rdb.DB.Query(`SELECT `+requestColumns+` FROM requests
		WHERE agency_id = $1 AND status = $2 ORDER BY created_at`, agencyID, status)
	if err != nil {
		return nil, fmt.Errorf("error retrieving agency requests: %w", err)
	}
	return collectRequests(rows)
}

// GetFollowupRequests retrieves open requests due for an automatic
// follow up.
func (rdb *RequestsDB) GetFollowupRequests() ([]models.Request, error) {
	rows, err := rdb.DB.Query(`SELECT ` + requestColumns + ` FROM requests
		WHERE status IN ('ack', 'processed')
		AND date_followup <= NOW()
		AND disable_autofollowups = FALSE`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving followup requests: %w", err)
	}
	return collectRequests(rows)
}

// GetOverdueRequests retrieves open requests whose statutory due date
// has passed, most overdue first.
func (rdb *RequestsDB) GetOverdueRequests() ([]models.Request, error) {
	rows, err := rdb.DB.Query(`SELECT ` + requestColumns + ` FROM requests
		WHERE status IN ('ack', 'processed', 'appealing')
		AND date_due < NOW()
		AND disable_autofollowups = FALSE
		ORDER BY date_due`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving overdue requests: %w", err)
	}
	return collectRequests(rows)
}

// GetStaleRequests retrieves an agency's open requests with the days
// since the latest agency response, most silent first.
func (rdb *RequestsDB) GetStaleRequests(agencyID uuid.UUID) ([]models.StaleRequest, error) {
	rows, err := rdb.DB.Query(`
		SELECT `+requestColumns+`,
			EXTRACT(DAY FROM NOW() - (
				SELECT MAX(c.date) FROM communications c
				WHERE c.request_id = requests.id AND c.response = TRUE
			))::int AS days_since_response
		FROM requests
		WHERE agency_id = $1 AND status IN ('ack', 'processed', 'appealing')
		ORDER BY days_since_response DESC NULLS LAST`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving stale requests: %w", err)
	}
	defer rows.Close()

	var stale []models.StaleRequest
	for rows.Next() {
		// scanRequest cannot be reused here since the row carries an
		// extra column
		var sr models.StaleRequest
		var jurisdictionDays, daysUntilDue, daysSince sql.NullInt64
		var agency, crowdfund uuid.NullUUID
		var submitted, updated, done, due, followup, estimate, embargoDate sql.NullTime
		err := rows.Scan(
			&sr.ID, &sr.Username, &sr.Title, &sr.Slug, &sr.Status,
			&sr.Jurisdiction.Name, &sr.Jurisdiction.Level, &jurisdictionDays,
			&agency, &sr.RequestedDocs, &sr.Description, &sr.TrackingID,
			&sr.MailID, &sr.Email, pq.Array(&sr.CCEmails), &submitted,
			&updated, &done, &due, &daysUntilDue, &followup, &estimate,
			&sr.Embargo, &sr.PermanentEmbargo, &embargoDate, &sr.PriceCents,
			&sr.DisableAutofollowups, &sr.BlockIncoming, &crowdfund,
			&sr.CreatedAt, &daysSince,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning stale request: %w", err)
		}
		if jurisdictionDays.Valid {
			days := int(jurisdictionDays.Int64)
			sr.Jurisdiction.Days = &days
		}
		if agency.Valid {
			sr.AgencyID = &agency.UUID
		}
		if crowdfund.Valid {
			sr.CrowdfundID = &crowdfund.UUID
		}
		sr.DateSubmitted = nullTimePtr(submitted)
		sr.DateUpdated = nullTimePtr(updated)
		sr.DateDone = nullTimePtr(done)
		sr.DateDue = nullTimePtr(due)
		sr.DateFollowup = nullTimePtr(followup)
		sr.DateEstimate = nullTimePtr(estimate)
		sr.DateEmbargo = nullTimePtr(embargoDate)
		if daysSince.Valid {
			days := int(daysSince.Int64)
			sr.DaysSinceResponse = &days
		}
		stale = append(stale, sr)
	}
	return stale, rows.Err()
}

// GetExpiredEmbargoes retrieves completed requests whose embargo date has
// passed and is not permanent.
func (rdb *RequestsDB) GetExpiredEmbargoes() ([]models.Request, error) {
	rows, err := rdb.DB.Query(`SELECT ` + requestColumns + ` FROM requests
		WHERE embargo = TRUE
		AND permanent_embargo = FALSE
		AND status IN ('rejected', 'no_docs', 'done', 'partial', 'abandoned')
		AND date_embargo <= NOW()`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving expired embargoes: %w", err)
	}
	return collectRequests(rows)
}

// ClearEmbargo lifts the embargo on a request.
func (rdb *RequestsDB) ClearEmbargo(id uuid.UUID) error {
	_, err := rdb.DB.Exec(`UPDATE requests
		SET embargo = FALSE, date_embargo = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error clearing embargo: %w", err)
	}
	return nil
}
