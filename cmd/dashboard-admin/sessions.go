package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vv-events/dashboard/internal/bootstrap"
	"github.com/vv-events/dashboard/internal/ports"
)

type listOptions struct {
	JSON bool
}

func parseListFlags(args []string) (listOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts listOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print sessions as JSON")
	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	return opts, nil
}

// withBackend opens the session cache for the duration of fn.
func (cmdCtx *commandContext) withBackend(fn func(store bootstrap.SessionStore) error) error {
	backend, err := cmdCtx.OpenBackend(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("open session backend: %w", err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("close session backend failed", "error", closeErr)
		}
	}()
	return fn(backend.Cache)
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags(args)
	if err != nil {
		return err
	}
	return cmdCtx.withBackend(func(store bootstrap.SessionStore) error {
		sessions, err := store.ListSessions(cmdCtx.Ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		sort.Slice(sessions, func(i, j int) bool { return sessions[i].Key < sessions[j].Key })

		if opts.JSON {
			enc := json.NewEncoder(cmdCtx.Out)
			enc.SetIndent("", "  ")
			if sessions == nil {
				sessions = []ports.CachedSession{}
			}
			return enc.Encode(sessions)
		}
		return printSessions(cmdCtx, sessions)
	})
}

func printSessions(cmdCtx *commandContext, sessions []ports.CachedSession) error {
	if len(sessions) == 0 {
		return writeln(cmdCtx.Out, "No cached sessions.")
	}
	w := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "KEY\tUSER\tROLE\tTTL\tPREFS"); err != nil {
		return fmt.Errorf("write sessions header: %w", err)
	}
	for _, s := range sessions {
		email, role := "-", "-"
		if s.User != nil {
			email, role = s.User.Email, strings.ToLower(s.User.Role)
		}
		prefs := "-"
		if len(s.Prefs) > 0 {
			prefs = strings.Join(s.Prefs, ",")
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\n", s.Key, email, role, formatTTL(s.TTL), prefs); err != nil {
			return fmt.Errorf("write session %q: %w", s.Key, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush sessions table: %w", err)
	}
	return nil
}

func formatTTL(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.Round(time.Second).String()
}

type clearOptions struct {
	Yes    bool
	DryRun bool
}

func parseClearFlags(args []string) (clearOptions, error) {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts clearOptions
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be cleared without deleting")
	if err := fs.Parse(args); err != nil {
		return clearOptions{}, err
	}
	return opts, nil
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearFlags(args)
	if err != nil {
		return err
	}
	return cmdCtx.withBackend(func(store bootstrap.SessionStore) error {
		sessions, err := store.ListSessions(cmdCtx.Ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if opts.DryRun {
			return writef(cmdCtx.Out, "Would clear %d session(s); theme preferences are kept.\n", len(sessions))
		}
		if len(sessions) == 0 {
			return writeln(cmdCtx.Out, "No cached sessions.")
		}
		if !opts.Yes {
			if err := cmdCtx.confirmAction(fmt.Sprintf("clear %d cached session(s)", len(sessions))); err != nil {
				return err
			}
		}

		n, err := store.ClearAll(cmdCtx.Ctx)
		if err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
		cmdCtx.Logger.Info("sessions cleared", "count", n)
		return writef(cmdCtx.Out, "Cleared %d session(s).\n", n)
	})
}

var errAborted = errors.New("aborted by user")

func (cmdCtx *commandContext) confirmAction(action string) error {
	if err := writef(cmdCtx.Out, "About to %s.\nContinue? [y/N]: ", action); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && resp == "" {
		if writeErr := writef(cmdCtx.Out, "\nFailed to read confirmation input: %v\n", err); writeErr != nil {
			return fmt.Errorf("%w: report write failed: %w", errAborted, writeErr)
		}
		return errAborted
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errAborted
}
