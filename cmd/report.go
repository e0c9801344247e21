package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroscreen/internal/analysis"
	"github.com/abhisek/neuroscreen/internal/report"
	"github.com/abhisek/neuroscreen/internal/session"
)

var reportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Render the screening report of a stored session",
	Long: "Render the screening report of a stored session. The session is read only;\n" +
		"use the HTTP API to complete a session.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		width, _ := cmd.Flags().GetInt("width")

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

		results := analysis.Analyze(s).Clamped()
		r := report.Synthesize(report.Input{
			Session:     s,
			Results:     &results,
			GeneratedAt: time.Now(),
		})

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}
		fmt.Print(report.Render(r, width))
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("json", false, "Print the report as JSON")
	reportCmd.Flags().Int("width", 80, "Render width in columns")
}
