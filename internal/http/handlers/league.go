package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally/internal/dashboard"
	"github.com/mauv0809/rally/internal/league"
	"github.com/mauv0809/rally/internal/session"
)

func ListLeaguesHandler(leagues league.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := leagues.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, list)
	}
}

func CreateLeagueHandler(leagues league.Service, sessions session.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := sessions.UserID()
		if err != nil {
			WriteError(w, r, err)
			return
		}
		var body struct {
			Name        string `json:"league_name"`
			Description string `json:"description"`
		}
		if err := DecodeJSON(r, &body); err != nil {
			WriteError(w, r, err)
			return
		}
		created, err := leagues.Create(r.Context(), userID, body.Name, body.Description)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	}
}

func GetLeagueHandler(leagues league.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := leagues.Get(r.Context(), PathVar(r, "id"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, l)
	}
}

func JoinLeagueHandler(leagues league.Service, sessions session.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := sessions.UserID()
		if err != nil {
			WriteError(w, r, err)
			return
		}
		jr, err := leagues.Join(r.Context(), PathVar(r, "id"), userID)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, jr)
	}
}

func LeagueMatchesHandler(dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := dash.LeagueUpcoming(r.Context(), PathVar(r, "id"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, matches)
	}
}

func LeaderboardHandler(leagues league.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := leagues.Leaderboard(r.Context(), PathVar(r, "id"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, standings)
	}
}

func ListJoinRequestsHandler(leagues league.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := leagues.JoinRequests(r.Context(), PathVar(r, "id"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, requests)
	}
}

func RespondJoinRequestHandler(leagues league.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID, requestID := PathVar(r, "id"), PathVar(r, "rid")
		approve := PathVar(r, "action") == "approve"
		if err := leagues.RespondJoinRequest(r.Context(), leagueID, requestID, approve); err != nil {
			WriteError(w, r, err)
			return
		}
		log.Debug("Join request handled", "leagueID", leagueID, "requestID", requestID, "approve", approve)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListPlayersHandler(leagues league.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := leagues.Players(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, players)
	}
}

// UpdatePlayerRoleHandler sets the role from the body, or toggles it when none is given.
func UpdatePlayerRoleHandler(leagues league.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := PathVar(r, "id")
		var body struct {
			Role string `json:"role"`
		}
		if r.ContentLength != 0 {
			if err := DecodeJSON(r, &body); err != nil {
				WriteError(w, r, err)
				return
			}
		}

		role := body.Role
		var err error
		if role == "" {
			role, err = leagues.ToggleRole(r.Context(), playerID)
		} else {
			err = leagues.SetRole(r.Context(), playerID, role)
		}
		if err != nil {
			WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"user_id": playerID, "role": role})
	}
}
