package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"telegram-nuke/internal/domain/cleanup"
	"telegram-nuke/internal/infra/config"
	"telegram-nuke/internal/infra/journal"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

// newJournalCmd — просмотр журнала: без аргументов список прогонов, с ключом
// прогона — его попытки по порядку.
func newJournalCmd(envPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "journal [run]",
		Short: "Show recorded cleanup runs, or the attempts of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(file)
			if path == "" {
				cfg, err := config.Load(*envPath)
				if err != nil {
					return err
				}
				path = cfg.GetEnv().JournalFile
			}
			if path == "" {
				return errors.New("journal file is not configured: set JOURNAL_FILE or pass --file")
			}

			j, err := journal.OpenReadOnly(path)
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()

			if len(args) == 0 {
				return printRuns(cmd.OutOrStdout(), j)
			}
			return printAttempts(cmd.OutOrStdout(), j, args[0])
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "journal file (default: JOURNAL_FILE from .env)")
	return cmd
}

func printRuns(w io.Writer, j *journal.Journal) error {
	runs, err := j.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err = fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	for _, run := range runs {
		attempts, attemptsErr := j.Attempts(run)
		if attemptsErr != nil {
			return attemptsErr
		}
		if _, err = fmt.Fprintf(w, "%s  attempts=%d failed=%d\n", run, len(attempts), countFailed(attempts)); err != nil {
			return err
		}
	}
	return nil
}

func printAttempts(w io.Writer, j *journal.Journal, run string) error {
	runs, err := j.Runs()
	if err != nil {
		return err
	}
	if !slices.Contains(runs, run) {
		return errors.Errorf("run %q not found", run)
	}
	attempts, err := j.Attempts(run)
	if err != nil {
		return err
	}
	for _, a := range attempts {
		status := "ok"
		if a.Error != "" {
			status = "FAILED: " + a.Error
		}
		key := cleanup.PeerKey{Kind: a.Kind, ID: a.ID}
		if _, err = fmt.Fprintf(w, "%s  %-15s  %-20s  %s  %s\n",
			a.At.UTC().Format(time.RFC3339), a.Partition, key, a.Name, status); err != nil {
			return err
		}
	}
	return nil
}

func countFailed(attempts []cleanup.Attempt) int {
	n := 0
	for _, a := range attempts {
		if a.Error != "" {
			n++
		}
	}
	return n
}
