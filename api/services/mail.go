package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/OpenRecords/foi-request-services/internal/events"
	"github.com/OpenRecords/foi-request-services/models"
	"github.com/rs/zerolog"
)

// mailSignatureHeader carries the hex HMAC-SHA256 of the raw body.
const mailSignatureHeader = "X-Mail-Signature"

// messageIDTTL is how long a Message-ID is remembered for duplicate
// delivery suppression.
const messageIDTTL = 5 * time.Minute

var mailLocalPartPattern = regexp.MustCompile(`([a-zA-Z0-9-]+)$`)

// InboundMail is the webhook payload from the mail provider.
type InboundMail struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// seenMessages remembers recently delivered Message-IDs. Mail providers
// retry webhooks, so duplicates within the TTL are dropped.
type seenMessages struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newSeenMessages() *seenMessages {
	return &seenMessages{entries: make(map[string]time.Time)}
}

// Seen records the id and reports whether it was already delivered
// within the TTL.
func (s *seenMessages) Seen(id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range s.entries {
		if now.Sub(v) > messageIDTTL {
			delete(s.entries, k)
		}
	}

	if _, ok := s.entries[id]; ok {
		return true
	}
	s.entries[id] = now
	return false
}

var recentMessages = newSeenMessages()

// InboundMailService receives agency replies from the mail provider and
// routes them onto request threads. Unroutable mail becomes an orphan
// task for staff. The webhook is authenticated by an HMAC signature
// rather than a JWT.
func InboundMailService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	if !verifyMailSignature(body, r.Header.Get(mailSignatureHeader), svc.Config.Mail.SigningKey) {
		logger.Warn().Msg("Inbound mail rejected: bad signature")
		WriteResponse(w, http.StatusForbidden, nil)
		return
	}

	var mail InboundMail
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&mail); err != nil {
		logger.Warn().Err(err).Msg("Invalid inbound mail payload")
		WriteResponse(w, http.StatusBadRequest, nil)
		return
	}

	now := time.Now().UTC()
	if mail.MessageID != "" && recentMessages.Seen(mail.MessageID, now) {
		logger.Info().Str("message_id", mail.MessageID).Msg("Duplicate inbound mail dropped")
		WriteResponse(w, http.StatusOK, nil)
		return
	}

	warning, err := svc.routeInboundMail(logger, &mail, now)
	if err != nil {
		logger.Error().Err(err).Str("message_id", mail.MessageID).Msg("Failed to route inbound mail")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if warning != "" {
		WriteResponse(w, http.StatusOK, map[string]string{"warning": warning})
		return
	}
	WriteResponse(w, http.StatusOK, nil)
}

func verifyMailSignature(body []byte, signature, key string) bool {
	if signature == "" || key == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// routeInboundMail matches the mail to a request by its unique inbound
// address and records it as a response, or orphans it. Orphaned mail
// returns a warning for the webhook response.
func (svc *Service) routeInboundMail(logger *zerolog.Logger, mail *InboundMail, now time.Time) (string, error) {
	mailID := parseMailID(mail.To, svc.Config.Mail.InboundDomain)
	if mailID == "" {
		logger.Warn().Str("to", mail.To).Msg("Inbound mail has no routable address")
		return "no routable address", svc.orphanMail(mail, models.OrphanInvalidAddress, now)
	}

	request, err := svc.DB.GetRequestByMailID(mailID)
	if err != nil {
		return "", fmt.Errorf("error looking up request by mail id: %w", err)
	}
	if request == nil {
		logger.Warn().Str("mail_id", mailID).Msg("Inbound mail for unknown request")
		return "no request for address", svc.orphanMail(mail, models.OrphanInvalidAddress, now)
	}

	if request.BlockIncoming {
		logger.Warn().Str("request_id", request.ID.String()).Msg("Inbound mail blocked on request")
		return "incoming mail blocked", svc.orphanMail(mail, models.OrphanIncomingBlocked, now)
	}

	if !svc.senderIsKnown(request, mail.From) {
		logger.Warn().Str("request_id", request.ID.String()).Str("from", mail.From).Msg("Inbound mail from unknown sender")
		return "sender not recognized", svc.orphanMail(mail, models.OrphanBadSender, now)
	}

	return "", svc.recordResponse(logger, request, mail, now)
}

// parseMailID extracts the request's inbound mail id from an address on
// the inbound domain. The header may list several recipients or use a
// display name form, so the id is the local part immediately before the
// inbound domain.
func parseMailID(to, inboundDomain string) string {
	to = strings.ToLower(strings.TrimSpace(to))
	idx := strings.Index(to, "@"+strings.ToLower(inboundDomain))
	if idx < 0 {
		return ""
	}
	match := mailLocalPartPattern.FindStringSubmatch(to[:idx])
	if match == nil {
		return ""
	}
	return match[1]
}

// senderIsKnown reports whether the from address belongs to the
// request's agency.
func (svc *Service) senderIsKnown(request *models.Request, from string) bool {
	from = strings.ToLower(extractAddress(from))
	if from == "" {
		return false
	}
	if from == strings.ToLower(request.Email) {
		return true
	}
	for _, cc := range request.CCEmails {
		if from == strings.ToLower(cc) {
			return true
		}
	}
	if request.AgencyID != nil {
		agency, err := svc.DB.GetAgency(*request.AgencyID)
		if err == nil && agency != nil {
			if from == strings.ToLower(agency.Email) {
				return true
			}
			for _, cc := range agency.CCEmails {
				if from == strings.ToLower(cc) {
					return true
				}
			}
		}
	}
	return false
}

// extractAddress pulls the bare address out of a "Name <addr>" header.
func extractAddress(from string) string {
	if open := strings.Index(from, "<"); open >= 0 {
		if end := strings.Index(from[open:], ">"); end > 0 {
			return strings.TrimSpace(from[open+1 : open+end])
		}
	}
	return strings.TrimSpace(from)
}

// orphanMail stores the mail as an unattached communication and opens an
// orphan task so staff can triage it.
func (svc *Service) orphanMail(mail *InboundMail, reason string, now time.Time) error {
	comm, err := svc.DB.CreateCommunication(&models.Communication{
		From:        mail.From,
		To:          mail.To,
		Subject:     mail.Subject,
		Body:        mail.Body,
		Response:    true,
		DeliveredBy: models.DeliveredEmail,
		Date:        now,
	})
	if err != nil {
		return fmt.Errorf("error storing orphaned mail: %w", err)
	}

	if _, err := svc.DB.CreateTask(&models.Task{
		Type:            models.TaskOrphan,
		CommunicationID: &comm.ID,
		Reason:          reason,
		Address:         mail.To,
	}); err != nil {
		return fmt.Errorf("error creating orphan task: %w", err)
	}
	return nil
}

// recordResponse attaches the mail to the request's thread, opens a
// response task, and updates the request's state.
func (svc *Service) recordResponse(logger *zerolog.Logger, request *models.Request, mail *InboundMail, now time.Time) error {
	comm, err := svc.DB.CreateCommunication(&models.Communication{
		RequestID:   &request.ID,
		From:        mail.From,
		To:          mail.To,
		Subject:     mail.Subject,
		Body:        mail.Body,
		Response:    true,
		DeliveredBy: models.DeliveredEmail,
		Date:        now,
	})
	if err != nil {
		return fmt.Errorf("error storing response: %w", err)
	}

	if _, err := svc.DB.CreateTask(&models.Task{
		Type:            models.TaskResponse,
		RequestID:       &request.ID,
		CommunicationID: &comm.ID,
	}); err != nil {
		return fmt.Errorf("error creating response task: %w", err)
	}

	if request.Status == models.StatusAck {
		request.Status = models.StatusProcessed
	}
	request.DateUpdated = &now
	updateDates(request, now, now)
	if _, err := svc.DB.UpdateRequest(request); err != nil {
		return fmt.Errorf("error updating request after response: %w", err)
	}

	// a response proves the agency is alive again
	if request.AgencyID != nil {
		agency, err := svc.DB.GetAgency(*request.AgencyID)
		if err != nil {
			return fmt.Errorf("error retrieving agency: %w", err)
		}
		if agency != nil && agency.Stale && !agency.ManualStale {
			if err := svc.unmarkAgencyStale(agency.ID, "system"); err != nil {
				return err
			}
			logger.Info().Str("agency_id", agency.ID.String()).Msg("Agency unmarked stale after response")
		}
	}

	if svc.Publisher != nil {
		if err := svc.Publisher.Notify(events.EventPayload{
			Type:      events.EventRequestUpdated,
			ObjectID:  request.ID.String(),
			Recipient: svc.requestOwnerEmail(request),
			Data: map[string]string{
				"title":  request.Title,
				"action": "received a response",
				"status": request.Status,
			},
		}); err != nil {
			return fmt.Errorf("error publishing response event: %w", err)
		}
	}

	logger.Info().Str("request_id", request.ID.String()).Str("communication_id", comm.ID.String()).Msg("Response recorded")
	return nil
}
