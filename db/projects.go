package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/OpenRecords/foi-request-services/models"
	"github.com/google/uuid"
)

const projectColumns = `id, title, slug, summary, description, image_url,
	private, approved, created_at`

func (rdb *RequestsDB) scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Summary,
		&p.Description,
		&p.ImageURL,
		&p.Private,
		&p.Approved,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := rdb.loadProjectLinks(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (rdb *RequestsDB) loadProjectLinks(p *models.Project) error {
	rows, err := rdb.DB.Query(`SELECT username FROM project_contributors
		WHERE project_id = $1 ORDER BY username`, p.ID)
	if err != nil {
		return fmt.Errorf("error retrieving contributors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return fmt.Errorf("error scanning contributor: %w", err)
		}
		p.Contributors = append(p.Contributors, username)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	reqRows, err := rdb.DB.Query(`SELECT request_id FROM project_requests
		WHERE project_id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("error retrieving project requests: %w", err)
	}
	defer reqRows.Close()
	for reqRows.Next() {
		var id uuid.UUID
		if err := reqRows.Scan(&id); err != nil {
			return fmt.Errorf("error scanning project request: %w", err)
		}
		p.RequestIDs = append(p.RequestIDs, id)
	}
	if err := reqRows.Err(); err != nil {
		return err
	}

	artRows, err := rdb.DB.Query(`SELECT article_id FROM project_articles
		WHERE project_id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("error retrieving project articles: %w", err)
	}
	defer artRows.Close()
	for artRows.Next() {
		var id uuid.UUID
		if err := artRows.Scan(&id); err != nil {
			return fmt.Errorf("error scanning project article: %w", err)
		}
		p.ArticleIDs = append(p.ArticleIDs, id)
	}
	return artRows.Err()
}

// CreateProject inserts a project and its link tables in one transaction.
func (rdb *RequestsDB) CreateProject(p *models.Project) (*models.Project, error) {
	tx, err := rdb.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()

	err = rdb.execQuery(tx, `
		INSERT INTO projects (id, title, slug, summary, description,
			image_url, private, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Title, p.Slug, p.Summary, p.Description, p.ImageURL,
		p.Private, p.Approved, p.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error inserting project: %w", err)
	}

	if err := rdb.insertProjectLinks(tx, p); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := rdb.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return p, nil
}

func (rdb *RequestsDB) insertProjectLinks(tx *sql.Tx, p *models.Project) error {
	for _, username := range p.Contributors {
		if err := rdb.execQuery(tx, `
			INSERT INTO project_contributors (project_id, username)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, p.ID, username); err != nil {
			return fmt.Errorf("error inserting contributor: %w", err)
		}
	}
	for _, requestID := range p.RequestIDs {
		if err := rdb.execQuery(tx, `
			INSERT INTO project_requests (project_id, request_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, p.ID, requestID); err != nil {
			return fmt.Errorf("error inserting project request: %w", err)
		}
	}
	for _, articleID := range p.ArticleIDs {
		if err := rdb.execQuery(tx, `
			INSERT INTO project_articles (project_id, article_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, p.ID, articleID); err != nil {
			return fmt.Errorf("error inserting project article: %w", err)
		}
	}
	return nil
}

// GetProject retrieves a single project with its links.
func (rdb *RequestsDB) GetProject(id uuid.UUID) (*models.Project, error) {
	row := rdb.DB.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := rdb.scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving project: %w", err)
	}
	return p, nil
}

// GetProjects retrieves all projects, newest first.
func (rdb *RequestsDB) GetProjects() ([]models.Project, error) {
	rows, err := rdb.DB.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving projects: %w", err)
	}
	defer rows.Close()

	// collect the bare rows before loading links to avoid nested queries
	// on one result set
	var bare []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary,
			&p.Description, &p.ImageURL, &p.Private, &p.Approved,
			&p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning project: %w", err)
		}
		bare = append(bare, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var projects []models.Project
	for i := range bare {
		if err := rdb.loadProjectLinks(&bare[i]); err != nil {
			return nil, err
		}
		projects = append(projects, bare[i])
	}
	return projects, nil
}

// UpdateProject persists a project and replaces its link tables.
func (rdb *RequestsDB) UpdateProject(p *models.Project) (*models.Project, error) {
	tx, err := rdb.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	err = rdb.execQuery(tx, `
		UPDATE projects SET title = $1, slug = $2, summary = $3,
			description = $4, image_url = $5, private = $6, approved = $7
		WHERE id = $8`,
		p.Title, p.Slug, p.Summary, p.Description, p.ImageURL, p.Private,
		p.Approved, p.ID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("error updating project: %w", err)
	}

	for _, table := range []string{"project_contributors", "project_requests", "project_articles"} {
		if err := rdb.execQuery(tx, `DELETE FROM `+table+` WHERE project_id = $1`, p.ID); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	if err := rdb.insertProjectLinks(tx, p); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := rdb.CommitTransaction(tx); err != nil {
		return nil, err
	}

	return p, nil
}

// DeleteProject removes a project; link tables cascade.
func (rdb *RequestsDB) DeleteProject(id uuid.UUID) error {
	_, err := rdb.DB.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}
	return nil
}

// SetProjectFlags records the outcome of a staff review.
func (rdb *RequestsDB) SetProjectFlags(id uuid.UUID, approved, private bool) error {
	_, err := rdb.DB.Exec(`UPDATE projects
		SET approved = $1, private = $2 WHERE id = $3`, approved, private, id)
	if err != nil {
		return fmt.Errorf("error updating project flags: %w", err)
	}
	return nil
}

// GetProjectContributors retrieves the user profiles contributing to a
// project, for the contributor listing.
func (rdb *RequestsDB) GetProjectContributors(projectID uuid.UUID) ([]models.User, error) {
	rows, err := rdb.DB.Query(`
		SELECT u.id, u.username, u.full_name, u.email, u.avatar_url,
			u.organization, u.twitter, u.staff
		FROM users u
		JOIN project_contributors pc ON pc.username = u.username
		WHERE pc.project_id = $1
		ORDER BY u.username`, projectID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving contributors: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email,
			&u.AvatarURL, &u.Organization, &u.Twitter, &u.Staff); err != nil {
			return nil, fmt.Errorf("error scanning contributor: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetArticles retrieves the articles linked to a project.
func (rdb *RequestsDB) GetArticles(projectID uuid.UUID) ([]models.Article, error) {
	rows, err := rdb.DB.Query(`
		SELECT a.id, a.title, a.slug, a.summary, a.published_at
		FROM articles a
		JOIN project_articles pa ON pa.article_id = a.id
		WHERE pa.project_id = $1
		ORDER BY a.published_at DESC NULLS LAST`, projectID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		var published sql.NullTime
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.Summary, &published); err != nil {
			return nil, fmt.Errorf("error scanning article: %w", err)
		}
		a.PublishedAt = nullTimePtr(published)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
