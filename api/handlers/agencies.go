package handlers

import (
	"net/http"

	services "github.com/OpenRecords/foi-request-services/api/services"
)

func CreateAgency(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateAgencyService(svc, w, r)
	}
}

func GetAgencies(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetAgenciesService(svc, w, r)
	}
}

func GetAgency(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetAgencyService(svc, w, r)
	}
}

func UpdateAgency(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.UpdateAgencyService(svc, w, r)
	}
}

func ApproveAgency(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ApproveAgencyService(svc, w, r)
	}
}

func RejectAgency(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RejectAgencyService(svc, w, r)
	}
}
