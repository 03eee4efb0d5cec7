package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/notifier"
	"github.com/mauv0809/rally/internal/pubsub"
)

// MatchEventHandler receives Pub/Sub push deliveries of match events and announces them.
func MatchEventHandler(n notifier.Notifier, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match event message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data      string `json:"data"`
				MessageID string `json:"messageId"`
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.MatchEvent
		if err := pubsubClient.ProcessMessage(rawData, &event); err != nil {
			// Acknowledge anyway; redelivering an undecodable message cannot succeed.
			log.Error("Dropping undecodable match event", "messageID", pubsubMsg.Message.MessageID, "error", err)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if n == nil {
			log.Debug("Notifications disabled, ignoring match event", "event", event.Type, "matchID", event.MatchID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := n.SendMatchEvent(r.Context(), event, IsDryRunFromContext(r)); err != nil {
			// A non-2xx answer makes Pub/Sub redeliver.
			http.Error(w, "Failed to announce match event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
