package handlers

import (
	"net/http"

	services "github.com/OpenRecords/foi-request-services/api/services"
)

func CreateProject(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateProjectService(svc, w, r)
	}
}

func GetProjects(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetProjectsService(svc, w, r)
	}
}

func GetProject(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetProjectService(svc, w, r)
	}
}

func UpdateProject(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.UpdateProjectService(svc, w, r)
	}
}

func DeleteProject(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteProjectService(svc, w, r)
	}
}

func PublishProject(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.PublishProjectService(svc, w, r)
	}
}
