package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/neuroscreen/internal/llm"
	"github.com/abhisek/neuroscreen/internal/store"
	"github.com/abhisek/neuroscreen/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect calls made to the external reasoning service",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent scoring, advice and insight calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := llmQueryOpts(cmd)
		if err != nil {
			return err
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println(theme.Hint.Render("No calls recorded."))
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("01-02 15:04:05"),
				shortID(e.SessionID),
				e.Purpose,
				e.Provider + "/" + truncate(e.Model, 24),
				fmt.Sprintf("%d/%d", e.InputTokens, e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				outcome(e.LLMRequestEventData),
			})
		}
		fmt.Println(eventTable(
			[]string{"ID", "Time", "Session", "Purpose", "Model", "Tokens", "Ms", "Outcome"},
			rows, 7))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fields := [][2]string{
			{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
			{"Purpose", e.Purpose},
			{"Session", orDash(e.SessionID)},
			{"Model", e.Provider + "/" + e.Model},
			{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Outcome", outcome(e.LLMRequestEventData)},
		}
		if usd, ok := llm.EstimateCost(e.Model, llm.Usage{InputTokens: e.InputTokens, OutputTokens: e.OutputTokens}); ok {
			fields = append(fields, [2]string{"Cost", formatCost(usd)})
		}

		var header strings.Builder
		for _, f := range fields {
			fmt.Fprintf(&header, "%s %s\n", theme.Hint.Render(fmt.Sprintf("%-8s", f[0])), f[1])
		}
		fmt.Println(theme.Title.Render(fmt.Sprintf("Call #%d", e.ID)))
		fmt.Print(header.String())
		if e.ErrorMessage != "" {
			fmt.Println(lipgloss.NewStyle().Foreground(theme.Error).Render(e.ErrorMessage))
		}

		fmt.Println(theme.Heading.Render("Prompt"))
		fmt.Println(theme.Card.Render(orNotCaptured(e.RequestBody)))
		fmt.Println(theme.Heading.Render("Reply"))
		fmt.Println(theme.Card.Render(orNotCaptured(e.ResponseBody)))
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage, failure kinds and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println(theme.Hint.Render("No calls recorded."))
			return nil
		}

		rows := make([][]string, 0, len(byPurpose)+1)
		var calls, in, out int
		for _, u := range byPurpose {
			rows = append(rows, []string{u.Purpose, strconv.Itoa(u.Calls),
				strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10)})
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		rows = append(rows, []string{"all", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), ""})
		fmt.Println(theme.Heading.Render("Usage by purpose"))
		fmt.Println(eventTable([]string{"Purpose", "Calls", "Input", "Output", "Avg ms"}, rows, -1))

		recent, _ := cmd.Flags().GetInt("window")
		events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{Limit: recent})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if kinds := failureCounts(events); len(kinds) > 0 {
			fmt.Println(theme.Heading.Render(fmt.Sprintf("Failures in the last %d calls", len(events))))
			fmt.Println(eventTable([]string{"Purpose", "Kind", "Count"}, kinds, -1))
		}

		byModel, err := repo.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		var total float64
		var unpriced []string
		rows = make([][]string, 0, len(byModel))
		for _, m := range byModel {
			usd, ok := llm.EstimateCost(m.Model, llm.Usage{InputTokens: m.InputTokens, OutputTokens: m.OutputTokens})
			cost := "?"
			if ok {
				cost = formatCost(usd)
				total += usd
			} else {
				unpriced = append(unpriced, m.Model)
			}
			rows = append(rows, []string{truncate(m.Model, 40), strconv.Itoa(m.Calls), cost})
		}
		fmt.Println(theme.Heading.Render("Estimated cost (USD)"))
		fmt.Println(eventTable([]string{"Model", "Calls", "Cost"}, rows, -1))
		fmt.Printf("Total %s\n", formatCost(total))
		if len(unpriced) > 0 {
			fmt.Println(theme.Hint.Render("No price known for " + strings.Join(unpriced, ", ")))
		}
		return nil
	},
}

func llmQueryOpts(cmd *cobra.Command) (store.QueryOpts, error) {
	limit, _ := cmd.Flags().GetInt("limit")
	purpose, _ := cmd.Flags().GetString("purpose")
	sessionID, _ := cmd.Flags().GetString("session")
	switch purpose {
	case "", llm.PurposeAnswerScore, llm.PurposeNextAction, llm.PurposeReportInsight:
	default:
		return store.QueryOpts{}, fmt.Errorf("unknown purpose %q", purpose)
	}
	return store.QueryOpts{Limit: limit, Purpose: purpose, SessionID: sessionID}, nil
}

// outcome is "ok" or the recorded failure kind.
func outcome(e store.LLMRequestEventData) string {
	if e.Success {
		return "ok"
	}
	if kind, ok := llm.ParseFailureKind(e.ErrorMessage); ok {
		return string(kind)
	}
	return "failed"
}

func failureCounts(events []store.LLMEventRecord) [][]string {
	counts := map[[2]string]int{}
	for _, e := range events {
		if !e.Success {
			counts[[2]string{e.Purpose, outcome(e.LLMRequestEventData)}]++
		}
	}
	rows := make([][]string, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, []string{k[0], k[1], strconv.Itoa(n)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i][0] != rows[j][0] {
			return rows[i][0] < rows[j][0]
		}
		return rows[i][1] < rows[j][1]
	})
	return rows
}

// eventTable renders rows with the report theme. Cells in statusCol are
// coloured by outcome; pass -1 to disable.
func eventTable(headers []string, rows [][]string, statusCol int) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Bold(true).Foreground(theme.Secondary)
			case col == statusCol && row >= 0 && row < len(rows):
				if rows[row][col] == "ok" {
					return cell.Foreground(theme.Success)
				}
				return cell.Foreground(theme.Warning)
			}
			return cell
		}).
		String()
}

func shortID(id string) string {
	if id == "" {
		return "-"
	}
	return truncate(id, 8)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orNotCaptured(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not captured)"
	}
	return strings.TrimRight(s, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (answer-score, next-action, report-insight)")
	llmListCmd.Flags().String("session", "", "Filter by session ID")
	llmStatsCmd.Flags().Int("window", 500, "Number of recent calls to classify failures over")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
