package services

import (
	"context"

	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v84"
)

// MockStore is a testify mock of the Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateRequest(req *models.Request) (*models.Request, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockStore) GetRequest(id uuid.UUID) (*models.Request, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockStore) GetRequestByMailID(mailID string) (*models.Request, error) {
	args := m.Called(mailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockStore) GetViewableRequests(username string, staff bool) ([]models.Request, error) {
	args := m.Called(username, staff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockStore) UpdateRequest(req *models.Request) (*models.Request, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockStore) DeleteRequest(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) GetOpenRequests(agencyID *uuid.UUID) ([]models.Request, error) {
	args := m.Called(agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockStore) GetAgencyRequestsByStatus(agencyID uuid.UUID, status string) ([]models.Request, error) {
	args := m.Called(agencyID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockStore) GetFollowupRequests() ([]models.Request, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockStore) GetOverdueRequests() ([]models.Request, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockStore) GetStaleRequests(agencyID uuid.UUID) ([]models.StaleRequest, error) {
	args := m.Called(agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StaleRequest), args.Error(1)
}

func (m *MockStore) GetExpiredEmbargoes() ([]models.Request, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Request), args.Error(1)
}

func (m *MockStore) ClearEmbargo(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) CreateAgency(agency *models.Agency) (*models.Agency, error) {
	args := m.Called(agency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *MockStore) GetAgency(id uuid.UUID) (*models.Agency, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *MockStore) GetAgencies() ([]models.Agency, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Agency), args.Error(1)
}

func (m *MockStore) UpdateAgency(agency *models.Agency) (*models.Agency, error) {
	args := m.Called(agency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *MockStore) SetAgencyStale(id uuid.UUID, stale, manual bool) error {
	args := m.Called(id, stale, manual)
	return args.Error(0)
}

func (m *MockStore) CreateCommunication(comm *models.Communication) (*models.Communication, error) {
	args := m.Called(comm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Communication), args.Error(1)
}

func (m *MockStore) GetCommunications(requestID uuid.UUID) ([]models.Communication, error) {
	args := m.Called(requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Communication), args.Error(1)
}

func (m *MockStore) GetLatestCommunication(requestID uuid.UUID) (*models.Communication, error) {
	args := m.Called(requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Communication), args.Error(1)
}

func (m *MockStore) GetLatestAgencyResponse(agencyID uuid.UUID) (*models.Communication, error) {
	args := m.Called(agencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Communication), args.Error(1)
}

func (m *MockStore) GetCommunication(id uuid.UUID) (*models.Communication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Communication), args.Error(1)
}

func (m *MockStore) MoveCommunication(id, requestID uuid.UUID) error {
	args := m.Called(id, requestID)
	return args.Error(0)
}

func (m *MockStore) DeleteCommunication(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) CreateTask(task *models.Task) (*models.Task, error) {
	args := m.Called(task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockStore) GetTask(id uuid.UUID) (*models.Task, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockStore) GetTasks(taskType string, resolved *bool) ([]models.Task, error) {
	args := m.Called(taskType, resolved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockStore) ResolveTask(id uuid.UUID, resolvedBy string) error {
	args := m.Called(id, resolvedBy)
	return args.Error(0)
}

func (m *MockStore) GetOrCreateStaleAgencyTask(agencyID uuid.UUID) (*models.Task, bool, error) {
	args := m.Called(agencyID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Task), args.Bool(1), args.Error(2)
}

func (m *MockStore) ResolveAgencyStaleTasks(agencyID uuid.UUID, resolvedBy string) error {
	args := m.Called(agencyID, resolvedBy)
	return args.Error(0)
}

func (m *MockStore) CreateCrowdfund(cf *models.Crowdfund) (*models.Crowdfund, error) {
	args := m.Called(cf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Crowdfund), args.Error(1)
}

func (m *MockStore) GetCrowdfund(id uuid.UUID) (*models.Crowdfund, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Crowdfund), args.Error(1)
}

func (m *MockStore) GetCrowdfunds() ([]models.Crowdfund, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Crowdfund), args.Error(1)
}

func (m *MockStore) GetProjectCrowdfunds(projectID uuid.UUID) ([]models.Crowdfund, error) {
	args := m.Called(projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Crowdfund), args.Error(1)
}

func (m *MockStore) CreatePayment(payment *models.CrowdfundPayment) (*models.CrowdfundPayment, error) {
	args := m.Called(payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CrowdfundPayment), args.Error(1)
}

func (m *MockStore) GetPayments(crowdfundID uuid.UUID) ([]models.CrowdfundPayment, error) {
	args := m.Called(crowdfundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CrowdfundPayment), args.Error(1)
}

func (m *MockStore) UpdateCrowdfundReceived(id uuid.UUID, receivedCents int64, closed bool) error {
	args := m.Called(id, receivedCents, closed)
	return args.Error(0)
}

func (m *MockStore) CreateProject(p *models.Project) (*models.Project, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockStore) GetProject(id uuid.UUID) (*models.Project, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockStore) GetProjects() ([]models.Project, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockStore) UpdateProject(p *models.Project) (*models.Project, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockStore) DeleteProject(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) SetProjectFlags(id uuid.UUID, approved, private bool) error {
	args := m.Called(id, approved, private)
	return args.Error(0)
}

func (m *MockStore) GetProjectContributors(projectID uuid.UUID) ([]models.User, error) {
	args := m.Called(projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStore) GetArticles(projectID uuid.UUID) ([]models.Article, error) {
	args := m.Called(projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Article), args.Error(1)
}

func (m *MockStore) UpsertUser(user *models.User) (*models.User, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUser(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockNotifier is a testify mock of the events.Notifier interface.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(event events.EventPayload) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockNotifier) Close() {
	m.Called()
}

// MockEmailClient is a testify mock of the EmailClient interface.
type MockEmailClient struct {
	mock.Mock
}

func (m *MockEmailClient) SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sesv2.SendEmailOutput), args.Error(1)
}

// MockChargeClient is a testify mock of the ChargeClient interface.
type MockChargeClient struct {
	mock.Mock
}

func (m *MockChargeClient) New(params *stripe.ChargeParams) (*stripe.Charge, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Charge), args.Error(1)
}
