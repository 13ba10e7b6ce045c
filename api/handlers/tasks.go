package handlers

import (
	"net/http"

	services "github.com/OpenRecords/foi-request-services/api/services"
)

func GetTasks(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetTasksService(svc, w, r)
	}
}

func GetTask(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetTaskService(svc, w, r)
	}
}

func ResolveTask(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ResolveTaskService(svc, w, r)
	}
}

func StaleAgencyReview(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.StaleAgencyReviewService(svc, w, r)
	}
}

func MoveOrphan(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.MoveOrphanService(svc, w, r)
	}
}

func RejectOrphan(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RejectOrphanService(svc, w, r)
	}
}

func ApproveProject(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ApproveProjectService(svc, w, r)
	}
}

func RejectProject(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RejectProjectService(svc, w, r)
	}
}
