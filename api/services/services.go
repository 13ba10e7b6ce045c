package services

import (
	"context"

	"github.com/OpenRecords/foi-request-services/internal/appconfig"
	"github.com/OpenRecords/foi-request-services/internal/authn"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"
)

// Store is the persistence surface the services depend on. Implemented by
// db.RequestsDB and mocked in tests.
type Store interface {
	CreateRequest(req *models.Request) (*models.Request, error)
	GetRequest(id uuid.UUID) (*models.Request, error)
	GetRequestByMailID(mailID string) (*models.Request, error)
	GetViewableRequests(username string, staff bool) ([]models.Request, error)
	UpdateRequest(req *models.Request) (*models.Request, error)
	DeleteRequest(id uuid.UUID) error
	GetOpenRequests(agencyID *uuid.UUID) ([]models.Request, error)
	GetAgencyRequestsByStatus(agencyID uuid.UUID, status string) ([]models.Request, error)
	GetFollowupRequests() ([]models.Request, error)
	GetOverdueRequests() ([]models.Request, error)
	GetStaleRequests(agencyID uuid.UUID) ([]models.StaleRequest, error)
	GetExpiredEmbargoes() ([]models.Request, error)
	ClearEmbargo(id uuid.UUID) error

	CreateAgency(agency *models.Agency) (*models.Agency, error)
	GetAgency(id uuid.UUID) (*models.Agency, error)
	GetAgencies() ([]models.Agency, error)
	UpdateAgency(agency *models.Agency) (*models.Agency, error)
	SetAgencyStale(id uuid.UUID, stale, manual bool) error

	CreateCommunication(comm *models.Communication) (*models.Communication, error)
	GetCommunications(requestID uuid.UUID) ([]models.Communication, error)
	GetLatestCommunication(requestID uuid.UUID) (*models.Communication, error)
	GetLatestAgencyResponse(agencyID uuid.UUID) (*models.Communication, error)
	GetCommunication(id uuid.UUID) (*models.Communication, error)
	MoveCommunication(id, requestID uuid.UUID) error
	DeleteCommunication(id uuid.UUID) error

	CreateTask(task *models.Task) (*models.Task, error)
	GetTask(id uuid.UUID) (*models.Task, error)
	GetTasks(taskType string, resolved *bool) ([]models.Task, error)
	ResolveTask(id uuid.UUID, resolvedBy string) error
	GetOrCreateStaleAgencyTask(agencyID uuid.UUID) (*models.Task, bool, error)
	ResolveAgencyStaleTasks(agencyID uuid.UUID, resolvedBy string) error

	CreateCrowdfund(cf *models.Crowdfund) (*models.Crowdfund, error)
	GetCrowdfund(id uuid.UUID) (*models.Crowdfund, error)
	GetCrowdfunds() ([]models.Crowdfund, error)
	GetProjectCrowdfunds(projectID uuid.UUID) ([]models.Crowdfund, error)
	CreatePayment(payment *models.CrowdfundPayment) (*models.CrowdfundPayment, error)
	GetPayments(crowdfundID uuid.UUID) ([]models.CrowdfundPayment, error)
	UpdateCrowdfundReceived(id uuid.UUID, receivedCents int64, closed bool) error

	CreateProject(p *models.Project) (*models.Project, error)
	GetProject(id uuid.UUID) (*models.Project, error)
	GetProjects() ([]models.Project, error)
	UpdateProject(p *models.Project) (*models.Project, error)
	DeleteProject(id uuid.UUID) error
	SetProjectFlags(id uuid.UUID, approved, private bool) error
	GetProjectContributors(projectID uuid.UUID) ([]models.User, error)
	GetArticles(projectID uuid.UUID) ([]models.Article, error)

	UpsertUser(user *models.User) (*models.User, error)
	GetUser(username string) (*models.User, error)
}

// EmailClient is the slice of the SESv2 API the services use.
type EmailClient interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ChargeClient is the slice of the Stripe charges API the services use.
type ChargeClient interface {
	New(params *stripe.ChargeParams) (*stripe.Charge, error)
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config    *appconfig.Config
	DB        Store
	Publisher events.Notifier
	Email     EmailClient
	Charges   ChargeClient
}

// syncUser refreshes the caller's profile from their token claims so
// notification recipients can be resolved later. Profile sync is best
// effort and never fails the request.
func (svc *Service) syncUser(logger *zerolog.Logger, claims authn.Claims) {
	if claims.Username == "" || claims.Email == "" {
		return
	}
	if _, err := svc.DB.UpsertUser(&models.User{
		Username: claims.Username,
		FullName: claims.FullName,
		Email:    claims.Email,
		Staff:    claims.IsStaff(),
	}); err != nil {
		logger.Error().Err(err).Str("username", claims.Username).Msg("Failed to sync user profile")
	}
}

// requestOwnerEmail looks up the notification address for a request's
// owner. It returns "" when the owner has no profile on record.
func (svc *Service) requestOwnerEmail(request *models.Request) string {
	if request == nil {
		return ""
	}
	owner, err := svc.DB.GetUser(request.Username)
	if err != nil || owner == nil {
		return ""
	}
	return owner.Email
}
