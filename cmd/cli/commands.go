package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	weekDate        string
	pendingOnly     bool
	includeRejected bool
	leagueSearch    string
	playerQuery     string

	opponent    string
	scheduledAt string
	location    string
	matchType   string
	notes       string
	practice    bool
	leagueID    string

	email    string
	password string
)

func init() {
	weekCmd.Flags().StringVar(&weekDate, "date", "", "Any day of the week to show (YYYY-MM-DD), defaults to today")
	weekCmd.Flags().BoolVar(&pendingOnly, "pending-only", false, "Only show matches waiting for an answer")
	weekCmd.Flags().BoolVar(&includeRejected, "include-rejected", false, "Also show rejected and cancelled matches")

	availabilityCmd.Flags().StringVar(&weekDate, "date", "", "The day to check (YYYY-MM-DD)")
	_ = availabilityCmd.MarkFlagRequired("date")

	scheduleCmd.Flags().StringVar(&opponent, "opponent", "", "Player id of the opponent")
	scheduleCmd.Flags().StringVar(&scheduledAt, "at", "", "Start time, e.g. 2025-03-04T14:00:00")
	scheduleCmd.Flags().StringVar(&location, "location", "", "Where the match is played")
	scheduleCmd.Flags().StringVar(&matchType, "type", "Singles", "Singles or Doubles")
	scheduleCmd.Flags().StringVar(&notes, "notes", "", "Free text for the opponent")
	scheduleCmd.Flags().BoolVar(&practice, "practice", false, "Mark the match as practice")
	scheduleCmd.Flags().StringVar(&leagueID, "league", "", "League the match counts for")
	_ = scheduleCmd.MarkFlagRequired("opponent")
	_ = scheduleCmd.MarkFlagRequired("at")
	_ = scheduleCmd.MarkFlagRequired("location")

	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	leaguesCmd.Flags().StringVar(&leagueSearch, "search", "", "Filter leagues by name")
	playersCmd.Flags().StringVar(&playerQuery, "query", "", "Filter players by name or email")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(availabilityCmd)
	rootCmd.AddCommand(leaguesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil, nil)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the league backend through the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/login", nil, map[string]string{"email": email, "password": password})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/logout", nil, nil)
	},
}

var sessionCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who the server is logged in as",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/session", nil, nil)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the weekly schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if weekDate != "" {
			query.Set("date", weekDate)
		}
		if pendingOnly {
			query.Set("pending_only", "true")
		}
		if includeRejected {
			query.Set("include_rejected", "true")
		}
		return performRequest(http.MethodGet, "/week", query, nil)
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List matches waiting for an answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches/pending", nil, nil)
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept [match id]",
	Short: "Accept a match invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/matches/"+url.PathEscape(args[0])+"/accept", nil, nil)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [match id]",
	Short: "Reject a match invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/matches/"+url.PathEscape(args[0])+"/reject", nil, nil)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Propose a match to another player",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"opponent":     opponent,
			"scheduled_at": scheduledAt,
			"location":     location,
			"match_type":   matchType,
			"notes":        notes,
			"is_practice":  practice,
			"league_id":    leagueID,
		}
		return performRequest(http.MethodPost, "/matches", nil, body)
	},
}

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Show which start times are free on a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/availability", url.Values{"date": {weekDate}}, nil)
	},
}

var leaguesCmd = &cobra.Command{
	Use:   "leagues",
	Short: "List leagues",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if leagueSearch != "" {
			query.Set("search", leagueSearch)
		}
		return performRequest(http.MethodGet, "/leagues", query, nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard [league id]",
	Short: "Show the standings of a league",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/leagues/"+url.PathEscape(args[0])+"/leaderboard", nil, nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List players for administration",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if playerQuery != "" {
			query.Set("q", playerQuery)
		}
		return performRequest(http.MethodGet, "/players", query, nil)
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send the weekly digest to Slack now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/digest", nil, nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil, nil)
	},
}

func performRequest(method, endpoint string, query url.Values, body any) error {
	if query == nil {
		query = url.Values{}
	}
	if dryRun {
		query.Set("dry_run", "true")
	}
	target := strings.TrimRight(host, "/") + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	fmt.Printf("Making %s request to %s\n", method, target)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
