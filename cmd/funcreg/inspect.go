package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
	"github.com/randalmurphal/funcreg/pkg/funcreg/catalog"
	"github.com/randalmurphal/funcreg/pkg/funcreg/config"
	"github.com/randalmurphal/funcreg/pkg/funcreg/httpdispatch"
	"github.com/randalmurphal/funcreg/pkg/funcreg/tmplctx"
)

func newModulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the modules compiled into this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, path := range funcreg.DefaultModules.Modules() {
				for _, attr := range funcreg.DefaultModules.Attrs(path) {
					if _, err := fmt.Fprintf(w, "%s:%s\n", path, attr); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

// loadManifests imports the configured modules into fresh registries and
// returns their manifests keyed by snapshot source.
func loadManifests(ctx context.Context, settings config.Config, logger *slog.Logger) (map[string][]catalog.Entry, error) {
	requests := funcreg.New[http.HandlerFunc](funcreg.WithLogger(logger))
	if err := httpdispatch.Setup(ctx, requests, settings); err != nil {
		return nil, fmt.Errorf("load request handlers: %w", err)
	}

	processors := funcreg.New[tmplctx.Processor](funcreg.WithLogger(logger))
	if err := tmplctx.Setup(ctx, processors, settings); err != nil {
		return nil, fmt.Errorf("load context processors: %w", err)
	}

	return map[string][]catalog.Entry{
		httpdispatch.TypeKey: requests.Manifest(),
		tmplctx.TypeKey:      processors.Manifest(),
	}, nil
}

var sources = []string{httpdispatch.TypeKey, tmplctx.TypeKey}

func newManifestCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Print the handlers the configured modules register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, logger, err := global.load(cmd)
			if err != nil {
				return err
			}
			manifests, err := loadManifests(cmd.Context(), settings, logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, source := range sources {
				if _, err := fmt.Fprintf(w, "[%s]\n", source); err != nil {
					return err
				}
				if err := writeEntries(w, manifests[source]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSnapshotCmd(global *globalOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record the manifests of the configured modules in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, logger, err := global.load(cmd)
			if err != nil {
				return err
			}
			manifests, err := loadManifests(cmd.Context(), settings, logger)
			if err != nil {
				return err
			}

			store, err := catalog.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, source := range sources {
				snap := catalog.NewSnapshot(source, manifests[source])
				if err := store.Save(snap); err != nil {
					return fmt.Errorf("save %s snapshot: %w", source, err)
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", source, snap.ID, len(snap.Entries)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "funcreg.db", "SQLite catalog path")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect recorded manifests",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "funcreg.db", "SQLite catalog path")

	open := func() (catalog.Store, error) {
		return catalog.NewSQLiteStore(dbPath)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SEQ\tID\tSOURCE\tENTRIES\tCREATED")
			for _, info := range infos {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
					info.Sequence, info.ID, info.Source, info.Entries, info.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <id|source>",
		Short: "Print a snapshot by ID, or the latest snapshot of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := loadSnapshot(store, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			return writeEntries(cmd.OutOrStdout(), snap.Entries)
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")

	diff := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Show handlers added and removed between two snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			from, err := loadSnapshot(store, args[0])
			if err != nil {
				return err
			}
			to, err := loadSnapshot(store, args[1])
			if err != nil {
				return err
			}

			added, removed := catalog.Diff(from, to)
			w := cmd.OutOrStdout()
			for _, e := range added {
				fmt.Fprintf(w, "+ %s\n", e.Key())
			}
			for _, e := range removed {
				fmt.Fprintf(w, "- %s\n", e.Key())
			}
			return nil
		},
	}

	cmd.AddCommand(list, show, diff)
	return cmd
}

// loadSnapshot resolves ref as a snapshot ID, falling back to the latest
// snapshot of the source named ref.
func loadSnapshot(store catalog.Store, ref string) (*catalog.Snapshot, error) {
	snap, err := store.Load(ref)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return nil, err
	}
	snap, err = store.Latest(ref)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", ref, err)
	}
	return snap, nil
}

func writeEntries(w io.Writer, entries []catalog.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tRELATED\tNAME\tLABEL\tPOSITION")
	for _, e := range entries {
		related := e.Related
		if related == "" {
			related = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.TypeKey, related, e.Name, strings.TrimSpace(e.Label), e.Position)
	}
	return tw.Flush()
}
