package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/OpenRecords/foi-request-services/api/handlers"
	"github.com/OpenRecords/foi-request-services/api/middleware"
	"github.com/OpenRecords/foi-request-services/api/services"
	docs "github.com/OpenRecords/foi-request-services/docs"
	awsclient "github.com/OpenRecords/foi-request-services/internal/aws"
	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/charge"

	httpSwagger "github.com/swaggo/http-swagger"
)

// stripeChargeClient adapts the package level Stripe charge API to the
// services.ChargeClient interface.
type stripeChargeClient struct{}

func (stripeChargeClient) New(params *stripe.ChargeParams) (*stripe.Charge, error) {
	return charge.New(params)
}

// @title Public Records Request Services API
// @version v1
// @description This is the API for tracking public records requests.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()

		// Initialize event publisher
		publisher, err := events.NewEventPublisher(appCfg.Pulsar.URL, appCfg.Pulsar.TopicProducer)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer publisher.Close()

		awsCfg, err := awsclient.LoadAWSConfig(appCfg.AWS.Region)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load AWS config")
		}
		sesClient := awsclient.NewSESClient(awsCfg)

		// The Stripe key comes from Secrets Manager when configured,
		// otherwise straight from the config
		stripeKey := appCfg.Stripe.APIKey
		if appCfg.Stripe.SecretName != "" {
			secretsClient := awsclient.NewSecretsManagerClient(awsCfg)
			stripeKey, err = awsclient.GetSecretString(context.Background(),
				secretsClient, appCfg.Stripe.SecretName)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to fetch Stripe API key")
			}
		}
		stripe.Key = stripeKey

		// Create routes
		r := mux.NewRouter()

		service := &services.Service{
			Config:    appCfg,
			DB:        requestsDB,
			Publisher: publisher,
			Email:     sesClient,
			Charges:   stripeChargeClient{},
		}

		// Register the routes
		api := r.PathPrefix(appCfg.BasePath).Subrouter()

		// Apply the middleware to the API routes
		api.Use(middleware.WithLogger)
		api.Use(middleware.JWTMiddleware)

		// Request routes
		api.HandleFunc("/requests", handlers.CreateRequest(service)).Methods(http.MethodPost)
		api.HandleFunc("/requests", handlers.GetRequests(service)).Methods(http.MethodGet)
		api.HandleFunc("/requests/{request-id}", handlers.GetRequest(service)).Methods(http.MethodGet)
		api.HandleFunc("/requests/{request-id}", handlers.UpdateRequest(service)).Methods(http.MethodPut)
		api.HandleFunc("/requests/{request-id}", handlers.DeleteRequest(service)).Methods(http.MethodDelete)
		api.HandleFunc("/requests/{request-id}/submit", handlers.SubmitRequest(service)).Methods(http.MethodPost)
		api.HandleFunc("/requests/{request-id}/followup", handlers.FollowupRequest(service)).Methods(http.MethodPost)
		api.HandleFunc("/requests/{request-id}/appeal", handlers.AppealRequest(service)).Methods(http.MethodPost)
		api.HandleFunc("/requests/{request-id}/embargo", handlers.EmbargoRequest(service)).Methods(http.MethodPost)
		api.HandleFunc("/requests/{request-id}/flag", handlers.FlagRequest(service)).Methods(http.MethodPost)
		api.HandleFunc("/requests/{request-id}/pay", handlers.PayRequest(service)).Methods(http.MethodPost)

		// Agency routes
		api.HandleFunc("/agencies", handlers.CreateAgency(service)).Methods(http.MethodPost)
		api.HandleFunc("/agencies", handlers.GetAgencies(service)).Methods(http.MethodGet)
		api.HandleFunc("/agencies/{agency-id}", handlers.GetAgency(service)).Methods(http.MethodGet)
		api.Handle("/agencies/{agency-id}", middleware.StaffOnly(handlers.UpdateAgency(service))).Methods(http.MethodPut)
		api.Handle("/agencies/{agency-id}/approve", middleware.StaffOnly(handlers.ApproveAgency(service))).Methods(http.MethodPost)
		api.Handle("/agencies/{agency-id}/reject", middleware.StaffOnly(handlers.RejectAgency(service))).Methods(http.MethodPost)

		// Task routes (staff work queue)
		api.Handle("/tasks", middleware.StaffOnly(handlers.GetTasks(service))).Methods(http.MethodGet)
		api.Handle("/tasks/{task-id}", middleware.StaffOnly(handlers.GetTask(service))).Methods(http.MethodGet)
		api.Handle("/tasks/{task-id}/resolve", middleware.StaffOnly(handlers.ResolveTask(service))).Methods(http.MethodPost)
		api.Handle("/tasks/{task-id}/stale-requests", middleware.StaffOnly(handlers.StaleAgencyReview(service))).Methods(http.MethodGet)
		api.Handle("/tasks/{task-id}/orphan/move", middleware.StaffOnly(handlers.MoveOrphan(service))).Methods(http.MethodPost)
		api.Handle("/tasks/{task-id}/orphan/reject", middleware.StaffOnly(handlers.RejectOrphan(service))).Methods(http.MethodPost)
		api.Handle("/tasks/{task-id}/project/approve", middleware.StaffOnly(handlers.ApproveProject(service))).Methods(http.MethodPost)
		api.Handle("/tasks/{task-id}/project/reject", middleware.StaffOnly(handlers.RejectProject(service))).Methods(http.MethodPost)

		// Project routes
		api.HandleFunc("/projects", handlers.CreateProject(service)).Methods(http.MethodPost)
		api.HandleFunc("/projects", handlers.GetProjects(service)).Methods(http.MethodGet)
		api.HandleFunc("/projects/{project-id}", handlers.GetProject(service)).Methods(http.MethodGet)
		api.HandleFunc("/projects/{project-id}", handlers.UpdateProject(service)).Methods(http.MethodPut)
		api.HandleFunc("/projects/{project-id}", handlers.DeleteProject(service)).Methods(http.MethodDelete)
		api.HandleFunc("/projects/{project-id}/publish", handlers.PublishProject(service)).Methods(http.MethodPost)

		// Crowdfund routes
		api.HandleFunc("/crowdfunds", handlers.CreateCrowdfund(service)).Methods(http.MethodPost)
		api.HandleFunc("/crowdfunds", handlers.GetCrowdfunds(service)).Methods(http.MethodGet)
		api.HandleFunc("/crowdfunds/{crowdfund-id}", handlers.GetCrowdfund(service)).Methods(http.MethodGet)
		api.HandleFunc("/crowdfunds/{crowdfund-id}/payments", handlers.MakePayment(service)).Methods(http.MethodPost)

		// Inbound mail webhook is signed by the mail provider, not a JWT
		mail := r.PathPrefix(appCfg.BasePath).Subrouter()
		mail.Use(middleware.WithLogger)
		mail.HandleFunc("/mail/inbound", handlers.InboundMail(service)).Methods(http.MethodPost)

		r.HandleFunc("/healthz", handlers.Healthz(requestsDB)).Methods(http.MethodGet)

		// Docs
		docs.SwaggerInfo.Host = appCfg.Host
		docs.SwaggerInfo.BasePath = appCfg.BasePath
		r.PathPrefix(appCfg.DocsPath).Handler(httpSwagger.Handler(
			httpSwagger.URL(path.Join(appCfg.DocsPath, "/doc.json")),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
			httpSwagger.DomID("swagger-ui"),
		)).Methods(http.MethodGet)

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", host, port),
			r); err != nil {

			log.Error().Err(err).Msg("could not start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")

}
