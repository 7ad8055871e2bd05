package cashier

import (
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/gateway"
)

// GatewayWebhook acknowledges every well-formed, correctly signed callback
// with 200 so the gateway does not retry. Failures that stay retryable on our
// side are logged at error level.
func (h *Handler) GatewayWebhook(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GatewayWebhook")
	defer finish()

	log := h.log(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := gateway.ParseFields(body)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if len(h.secret) == 0 {
		log.Error("gateway secret not configured, rejecting callback")
		apt.RespondError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}
	if err := gateway.Verify(h.secret, fields); err != nil {
		log.Info("gateway callback rejected", "error", err)
		apt.RespondError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	cb, err := CallbackFromFields(fields)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	log = log.With("gateway_request_id", cb.RequestID)

	if h.service == nil {
		log.Error("cashier service not configured, dropping callback")
		apt.Respond(w, http.StatusOK, map[string]interface{}{"received": true}, nil)
		return
	}

	outcome, err := h.service.HandleGatewayCallback(r.Context(), cb)
	switch {
	case err == nil:
		log.Info("gateway callback applied", "outcome", outcome)
	case apperr.KindOf(err) == apperr.Internal, apperr.IsNotFound(err):
		log.Error("gateway callback not applied", "error", err)
	default:
		log.Info("gateway callback ignored", "error", err)
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{"received": true}, nil)
}
