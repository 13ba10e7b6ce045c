package handlers

import (
	"net/http"

	services "github.com/OpenRecords/foi-request-services/api/services"
)

// @Summary Create a draft records request
// @Description Create a new public records request in draft status, owned by the authenticated user.
// @Tags requests
// @Accept json
// @Produce json
// @Success 201 {object} models.Request
// @Failure 400 {object} string
// @Failure 401 {object} string
// @Failure 500 {object} string
// @Router /requests [post]
func CreateRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateRequestService(svc, w, r)
	}
}

// @Summary List requests
// @Description List all requests viewable by the authenticated user. Drafts and embargoed requests are only visible to their owner and staff.
// @Tags requests
// @Produce json
// @Success 200 {object} models.RequestsResponse
// @Failure 401 {object} string
// @Failure 500 {object} string
// @Router /requests [get]
func GetRequests(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetRequestsService(svc, w, r)
	}
}

// @Summary Get a request
// @Description Get a single request with its communication thread.
// @Tags requests
// @Produce json
// @Param request-id path string true "Request ID"
// @Success 200 {object} services.RequestDetail
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Failure 404 {object} string
// @Router /requests/{request-id} [get]
func GetRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetRequestService(svc, w, r)
	}
}

func UpdateRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.UpdateRequestService(svc, w, r)
	}
}

func DeleteRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteRequestService(svc, w, r)
	}
}

// @Summary Submit a request
// @Description Submit a draft request to its agency. Requests to agencies pending review stay in the submitted status until the agency is approved.
// @Tags requests
// @Produce json
// @Param request-id path string true "Request ID"
// @Success 200 {object} models.Request
// @Failure 400 {object} string
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Router /requests/{request-id}/submit [post]
func SubmitRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.SubmitRequestService(svc, w, r)
	}
}

func FollowupRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.FollowupRequestService(svc, w, r)
	}
}

func AppealRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.AppealRequestService(svc, w, r)
	}
}

func EmbargoRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.EmbargoRequestService(svc, w, r)
	}
}

// @Summary Flag a request
// @Description Flag a request for staff attention with a short description of the problem.
// @Tags requests
// @Accept json
// @Produce json
// @Param request-id path string true "Request ID"
// @Success 201 {object} models.Task
// @Failure 400 {object} string
// @Failure 401 {object} string
// @Failure 403 {object} string
// @Router /requests/{request-id}/flag [post]
func FlagRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.FlagRequestService(svc, w, r)
	}
}

// @Summary Pay request fees
// @Description Charge the authenticated user's card for the agency's fee. Only valid for requests awaiting payment without an open crowdfund.
// @Tags requests
// @Accept json
// @Produce json
// @Param request-id path string true "Request ID"
// @Success 200 {object} models.Request
// @Failure 400 {object} string
// @Failure 402 {object} string
// @Router /requests/{request-id}/pay [post]
func PayRequest(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.PayRequestService(svc, w, r)
	}
}
