package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const agencyColumns = `id, name, slug, status, email, cc_emails, phone, fax,
	address, stale, manual_stale, appeal_agency_id, created_at`

func scanAgency(row rowScanner) (*models.Agency, error) {
	var agency models.Agency
	var appealAgency uuid.NullUUID
	err := row.Scan(
		&agency.ID,
		&agency.Name,
		&agency.Slug,
		&agency.Status,
		&agency.Email,
		pq.Array(&agency.CCEmails),
		&agency.Phone,
		&agency.Fax,
		&agency.Address,
		&agency.Stale,
		&agency.ManualStale,
		&appealAgency,
		&agency.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if appealAgency.Valid {
		agency.AppealAgencyID = &appealAgency.UUID
	}
	return &agency, nil
}

// CreateAgency inserts a new agency.
func (rdb *RequestsDB) CreateAgency(agency *models.Agency) (*models.Agency, error) {
	tx, err := rdb.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	agency.ID = uuid.New()
	agency.CreatedAt = time.Now().UTC()

	err = rdb.execQuery(tx, `
		INSERT INTO agencies (id, name, slug, status, email, cc_emails,
			phone, fax, address, stale, manual_stale, appeal_agency_id,
			created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		agency.ID, agency.Name, agency.Slug, agency.Status, agency.Email,
		pq.Array(agency.CCEmails), agency.Phone, agency.Fax, agency.Address,
		agency.Stale, agency.ManualStale, nullUUID(agency.AppealAgencyID),
		agency.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error inserting agency: %w", err)
	}

	if err := rdb.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return agency, nil
}

// GetAgency retrieves a single agency by ID.
func (rdb *RequestsDB) GetAgency(id uuid.UUID) (*models.Agency, error) {
	row := rdb.DB.QueryRow(`SELECT `+agencyColumns+` FROM agencies WHERE id = $1`, id)
	agency, err := scanAgency(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving agency: %w", err)
	}
	return agency, nil
}

// GetAgencies retrieves all agencies.
func (rdb *RequestsDB) GetAgencies() ([]models.Agency, error) {
	rows, err := rdb.DB.Query(`SELECT ` + agencyColumns + ` FROM agencies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving agencies: %w", err)
	}
	defer rows.Close()

	var agencies []models.Agency
	for rows.Next() {
		agency, err := scanAgency(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning agency: %w", err)
		}
		agencies = append(agencies, *agency)
	}
	return agencies, rows.Err()
}

// UpdateAgency persists agency contact and status fields.
func (rdb *RequestsDB) UpdateAgency(agency *models.Agency) (*models.Agency, error) {
	tx, err := rdb.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	err = rdb.execQuery(tx, `
		UPDATE agencies SET name = $1, slug = $2, status = $3, email = $4,
			cc_emails = $5, phone = $6, fax = $7, address = $8,
			stale = $9, manual_stale = $10, appeal_agency_id = $11
		WHERE id = $12`,
		agency.Name, agency.Slug, agency.Status, agency.Email,
		pq.Array(agency.CCEmails), agency.Phone, agency.Fax, agency.Address,
		agency.Stale, agency.ManualStale,
		nullUUID(agency.AppealAgencyID), agency.ID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error updating agency: %w", err)
	}

	if err := rdb.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return agency, nil
}

// SetAgencyStale marks or unmarks an agency as stale.
func (rdb *RequestsDB) SetAgencyStale(id uuid.UUID, stale, manual bool) error {
	_, err := rdb.DB.Exec(`UPDATE agencies
		SET stale = $1, manual_stale = $2 WHERE id = $3`, stale, manual, id)
	if err != nil {
		return fmt.Errorf("error updating agency stale flags: %w", err)
	}
	return nil
}
