package handlers

import (
	"net/http"

	services "github.com/OpenRecords/foi-request-services/api/services"
)

func CreateCrowdfund(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateCrowdfundService(svc, w, r)
	}
}

func GetCrowdfunds(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetCrowdfundsService(svc, w, r)
	}
}

func GetCrowdfund(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetCrowdfundService(svc, w, r)
	}
}

func MakePayment(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.MakePaymentService(svc, w, r)
	}
}
