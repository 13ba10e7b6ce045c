package handlers

import (
	"net/http"

	services "github.com/OpenRecords/foi-request-services/api/services"
)

// InboundMail is the webhook endpoint for the inbound mail provider. It
// is mounted outside the JWT middleware and authenticated by an HMAC
// signature over the body.
func InboundMail(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.InboundMailService(svc, w, r)
	}
}
