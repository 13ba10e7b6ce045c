package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
)

const crowdfundColumns = `id, name, description, payment_capped,
	payment_required_cents, payment_received_cents, date_due, closed,
	request_id, project_id, created_at`

func scanCrowdfund(row rowScanner) (*models.Crowdfund, error) {
	var cf models.Crowdfund
	var dateDue sql.NullTime
	var requestID, projectID uuid.NullUUID
	err := row.Scan(
		&cf.ID,
		&cf.Name,
		&cf.Description,
		&cf.PaymentCapped,
		&cf.PaymentRequiredCents,
		&cf.PaymentReceivedCents,
		&dateDue,
		&cf.Closed,
		&requestID,
		&projectID,
		&cf.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	cf.DateDue = nullTimePtr(dateDue)
	if requestID.Valid {
		cf.RequestID = &requestID.UUID
	}
	if projectID.Valid {
		cf.ProjectID = &projectID.UUID
	}
	return &cf, nil
}

// CreateCrowdfund inserts a new campaign.
func (rdb *RequestsDB) CreateCrowdfund(cf *models.Crowdfund) (*models.Crowdfund, error) {
	cf.ID = uuid.New()
	cf.CreatedAt = time.Now().UTC()

	_, err := rdb.DB.Exec(`
		INSERT INTO crowdfunds (id, name, description, payment_capped,
			payment_required_cents, payment_received_cents, date_due, closed,
			request_id, project_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		cf.ID, cf.Name, cf.Description, cf.PaymentCapped,
		cf.PaymentRequiredCents, cf.PaymentReceivedCents,
		nullTime(cf.DateDue), cf.Closed, nullUUID(cf.RequestID),
		nullUUID(cf.ProjectID), cf.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting crowdfund: %w", err)
	}

	return cf, nil
}

// GetCrowdfund retrieves a single campaign by ID.
func (rdb *RequestsDB) GetCrowdfund(id uuid.UUID) (*models.Crowdfund, error) {
	row := rdb.DB.QueryRow(`SELECT `+crowdfundColumns+` FROM crowdfunds WHERE id = $1`, id)
	cf, err := scanCrowdfund(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving crowdfund: %w", err)
	}
	return cf, nil
}

// GetCrowdfunds retrieves all campaigns, newest first.
func (rdb *RequestsDB) GetCrowdfunds() ([]models.Crowdfund, error) {
	rows, err := rdb.DB.Query(`SELECT ` + crowdfundColumns + ` FROM crowdfunds ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving crowdfunds: %w", err)
	}
	defer rows.Close()

	var cfs []models.Crowdfund
	for rows.Next() {
		cf, err := scanCrowdfund(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning crowdfund: %w", err)
		}
		cfs = append(cfs, *cf)
	}
	return cfs, rows.Err()
}

// GetProjectCrowdfunds retrieves the campaigns attached to a project.
func (rdb *RequestsDB) GetProjectCrowdfunds(projectID uuid.UUID) ([]models.Crowdfund, error) {
	rows, err := rdb.DB.Query(`SELECT `+crowdfundColumns+`
		FROM crowdfunds WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving project crowdfunds: %w", err)
	}
	defer rows.Close()

	var cfs []models.Crowdfund
	for rows.Next() {
		cf, err := scanCrowdfund(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning crowdfund: %w", err)
		}
		cfs = append(cfs, *cf)
	}
	return cfs, rows.Err()
}

// CreatePayment records a contribution.
func (rdb *RequestsDB) CreatePayment(payment *models.CrowdfundPayment) (*models.CrowdfundPayment, error) {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now().UTC()

	_, err := rdb.DB.Exec(`
		INSERT INTO crowdfund_payments (id, crowdfund_id, username, name,
			amount_cents, show, charge_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.CrowdfundID, payment.Username, payment.Name,
		payment.AmountCents, payment.Show, payment.ChargeID,
		payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting payment: %w", err)
	}

	return payment, nil
}

// GetPayments retrieves a campaign's contributions, newest first.
func (rdb *RequestsDB) GetPayments(crowdfundID uuid.UUID) ([]models.CrowdfundPayment, error) {
	rows, err := rdb.DB.Query(`SELECT id, crowdfund_id, username, name,
		amount_cents, show, charge_id, created_at
		FROM crowdfund_payments WHERE crowdfund_id = $1
		ORDER BY created_at DESC`, crowdfundID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving payments: %w", err)
	}
	defer rows.Close()

	var payments []models.CrowdfundPayment
	for rows.Next() {
		var p models.CrowdfundPayment
		if err := rows.Scan(&p.ID, &p.CrowdfundID, &p.Username, &p.Name,
			&p.AmountCents, &p.Show, &p.ChargeID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// UpdateCrowdfundReceived recomputes the received total from payments and
// closes the campaign when asked.
func (rdb *RequestsDB) UpdateCrowdfundReceived(id uuid.UUID, receivedCents int64, closed bool) error {
	_, err := rdb.DB.Exec(`UPDATE crowdfunds
		SET payment_received_cents = $1, closed = $2 WHERE id = $3`,
		receivedCents, closed, id)
	if err != nil {
		return fmt.Errorf("error updating crowdfund: %w", err)
	}
	return nil
}
