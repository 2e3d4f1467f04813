// Copyright © 2018 One Concern

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oneconcern/vcsmigrate/pkg/migration"
)

// Exit codes of the migrate command
const (
	exitCompleted = 0
	exitFailed    = 1
	exitCancelled = 2
)

var (
	pollInterval = 500 * time.Millisecond

	// stdin is patched by tests
	stdin io.Reader = os.Stdin
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the source history to the target",
	Long: `Migrate analyzes the source history, groups revisions into changesets, then commits them to the target.

Unless --batch is set, the run must be confirmed first and its progress is displayed until it is over.
Hit Ctrl-C to stop after the changeset being committed: running migrate again resumes from there.

Exit codes: 0 when completed, 1 when failed, 2 when cancelled.
`,
	Example: `vcsmigrate migrate --config project.cfg --batch`,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runMigrate(context.Background(), !migrateFlags.migrate.batch); code != exitCompleted {
			osExit(code)
		}
	},
}

// runMigrate yields the exit code of the migration. Resources are released before returning.
func runMigrate(ctx context.Context, interactive bool) int {
	s, err := newSession(ctx, interactive)
	if err != nil {
		wrapFatalln("migration setup", err)
		return exitFailed
	}
	defer s.Close()

	if interactive && !confirm(fmt.Sprintf("Migrate %s%s to %s target %s?", s.cfg.Source, s.cfg.SourcePath, s.cfg.Backend, s.cfg.Target)) {
		infoLogger.Println("Nothing done")
		return exitCompleted
	}

	stop := registerSIGINTHandlerAbort(s.migration.Abort)
	defer stop()

	if err = s.migration.Start(); err != nil {
		wrapFatalln("start migration", err)
		return exitFailed
	}

	outcome := follow(s.migration, interactive)
	report(s.migration.Status())

	switch outcome {
	case migration.OutcomeCompleted:
		return exitCompleted
	case migration.OutcomeCancelled:
		return exitCancelled
	default:
		return exitFailed
	}
}

// follow polls the migration status until the run is over
func follow(m *migration.Migration, interactive bool) migration.Outcome {
	done := make(chan migration.Outcome, 1)
	go func() {
		done <- m.Wait()
	}()

	if !interactive {
		return <-done
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case outcome := <-done:
			return outcome
		case <-ticker.C:
			line := progressLine(m.Status())
			if line != last {
				infoLogger.Println(line)
				last = line
			}
		}
	}
}

func progressLine(p migration.Progress) string {
	var b strings.Builder
	b.WriteString(color.CyanString("[%s]", p.Stage))
	fmt.Fprintf(&b, " files: %d revisions: %d changesets: %d", p.Files, p.Revisions, p.Changesets)
	if p.Exported > 0 {
		fmt.Fprintf(&b, " exported: %d", p.Exported)
	}
	if p.LastStatus != "" {
		b.WriteString(" ")
		b.WriteString(color.HiBlackString(p.LastStatus))
	}
	if p.Aborting {
		b.WriteString(color.YellowString(" (aborting)"))
	}
	return b.String()
}

func report(p migration.Progress) {
	var outcome string
	switch p.Outcome {
	case migration.OutcomeCompleted:
		outcome = color.GreenString(p.Outcome.String())
	case migration.OutcomeCancelled:
		outcome = color.YellowString(p.Outcome.String())
	default:
		outcome = color.RedString(p.Outcome.String())
	}
	infoLogger.Printf("Migration %s after %s", outcome, units.HumanDuration(p.ActiveTime))
	infoLogger.Printf("  files: %d, revisions: %d, skipped records: %d", p.Files, p.Revisions, p.SkippedRecords)
	infoLogger.Printf("  changesets: %d, commits: %d, tags: %d, replayed: %d", p.Changesets, p.Commits, p.Tags, p.SkippedExported)
	for _, err := range p.Failures {
		infoLogger.Println(color.RedString("  error: %v", err))
	}
}

func confirm(question string) bool {
	infoLogger.Printf("%s [y/N] ", question)
	answer, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	addBatchFlag(migrateCmd)
	rootCmd.AddCommand(migrateCmd)
}
