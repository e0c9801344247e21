package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/analysis"
	"github.com/abhisek/neuroscreen/internal/assessment"
	"github.com/abhisek/neuroscreen/internal/session"
	"github.com/abhisek/neuroscreen/internal/store"
	"github.com/abhisek/neuroscreen/internal/ui/components"
	"github.com/abhisek/neuroscreen/internal/ui/theme"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect persisted screening sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := session.Filter{Status: session.Status(status), Limit: limit}
		if status != "" && !filter.Status.Valid() {
			return fmt.Errorf("unknown status %q", status)
		}

		be, err := openPersistentBackend(cmd)
		if err != nil {
			return err
		}
		defer be.close()

		sessions, err := be.sessions.List(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %-4s  %-12s  %-16s  %5s  %s\n",
			"ID", "Patient", "Age", "Status", "Started", "Resp", "Risk")
		fmt.Println(strings.Repeat("─", 110))
		for _, s := range sessions {
			risk := "-"
			if s.Analysis != nil {
				risk = s.Analysis.RiskLevel
			}
			fmt.Printf("%-36s  %-20s  %-4d  %-12s  %-16s  %5d  %s\n",
				s.ID,
				truncate(s.Patient.Name, 20),
				s.Patient.Age,
				s.Status,
				s.StartTime.Local().Format("2006-01-02 15:04"),
				len(s.Responses),
				risk,
			)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session with its current analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := openPersistentBackend(cmd)
		if err != nil {
			return err
		}
		defer be.close()

		s, err := be.sessions.Get(cmd.Context(), args[0])
		if err != nil {
			var nf *session.ErrNotFound
			if errors.As(err, &nf) {
				return fmt.Errorf("session %s not found", args[0])
			}
			return fmt.Errorf("load session: %w", err)
		}

		a := assessment.Aggregate(analysis.Analyze(s).Clamped())

		fmt.Println(theme.Title.Render("Session " + s.ID))
		fmt.Printf("Patient:    %s (age %d)\n", s.Patient.Name, s.Patient.Age)
		fmt.Printf("Status:     %s / %s\n", s.Status, s.Phase)
		fmt.Printf("Started:    %s\n", s.StartTime.Local().Format("2006-01-02 15:04:05"))
		if !s.EndTime.IsZero() {
			fmt.Printf("Ended:      %s\n", s.EndTime.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("Updated:    %s\n", s.LastUpdated.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Answers:    %d of %d\n", len(s.Responses), s.TotalQuestions)
		fmt.Printf("Samples:    emotion %d/%d, motion %d/%d, voice %d/%d (buffered/total)\n",
			s.Emotion.Len(), s.Emotion.Total, s.Motion.Len(), s.Motion.Total, s.Voice.Len(), s.Voice.Total)
		fmt.Printf("Adaptive:   %s difficulty, focus %s\n", s.Adaptive.DifficultyLevel, s.Adaptive.CategoryFocus)

		fmt.Println(theme.Heading.Render("Analysis"))
		fmt.Println(theme.Risk(a.RiskLevel).Render(strings.ToUpper(string(a.RiskLevel))+" RISK") +
			theme.Body.Render(fmt.Sprintf("  overall %.2f", a.OverallScore)))
		for _, d := range assessment.AllDomains() {
			bar := components.NewScoreBar(string(d), a.Domains.Get(d), 60)
			fmt.Println(bar.View())
		}
		return nil
	},
}

var sessionsEventsCmd = &cobra.Command{
	Use:   "events <id>",
	Short: "Show the lifecycle events recorded for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QuerySessionEvents(cmd.Context(), store.QueryOpts{SessionID: args[0]})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No events recorded for this session.")
			return nil
		}
		fmt.Printf("%-6s  %-19s  %-8s  %-10s  %-10s  %s\n", "Seq", "Timestamp", "Action", "Status", "Phase", "Detail")
		fmt.Println(strings.Repeat("─", 90))
		for _, e := range events {
			fmt.Printf("%-6d  %-19s  %-8s  %-10s  %-10s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Action,
				e.Status,
				e.Phase,
				e.Detail,
			)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := openPersistentBackend(cmd)
		if err != nil {
			return err
		}
		defer be.close()

		if err := be.sessions.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		fmt.Printf("Deleted session %s.\n", args[0])
		return nil
	},
}

// openPersistentBackend opens the configured store and rejects the
// in-memory one, which holds nothing outside a running server.
func openPersistentBackend(cmd *cobra.Command) (*backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	be, err := openBackend(cmd.Context(), cfg, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if !be.persistent() {
		be.close()
		return nil, errors.New("the memory store does not persist sessions; use --store sqlite or --store redis")
	}
	return be, nil
}

func init() {
	sessionsListCmd.Flags().String("status", "", "Filter by status (initializing, active, completed, ended)")
	sessionsListCmd.Flags().IntP("limit", "n", 50, "Maximum number of sessions to show")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsEventsCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
