package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a curated collection of requests, articles, and contributors.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	// Private hides the project from everyone but contributors; Approved
	// is set by staff review before a project is publicly listed.
	Private  bool `json:"private"`
	Approved bool `json:"approved"`

	Contributors []string    `json:"contributors,omitempty"`
	RequestIDs   []uuid.UUID `json:"request_ids,omitempty"`
	ArticleIDs   []uuid.UUID `json:"article_ids,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Visible reports whether the named user may view this project.
func (p *Project) Visible(username string, staff bool) bool {
	if staff {
		return true
	}
	if !p.Private && p.Approved {
		return true
	}
	for _, c := range p.Contributors {
		if c == username {
			return true
		}
	}
	return false
}

// HasContributor reports whether the named user contributes to the project.
func (p *Project) HasContributor(username string) bool {
	for _, c := range p.Contributors {
		if c == username {
			return true
		}
	}
	return false
}

// Article is a news story linked to one or more projects.
type Article struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ProjectsResponse holds a list of projects.
type ProjectsResponse struct {
	Projects []Project `json:"projects"`
}

// ProjectDetail is a project with its linked objects expanded.
type ProjectDetail struct {
	Project      Project     `json:"project"`
	Contributors []User      `json:"contributors"`
	Requests     []Request   `json:"requests"`
	Articles     []Article   `json:"articles"`
	Crowdfunds   []Crowdfund `json:"crowdfunds"`
}
