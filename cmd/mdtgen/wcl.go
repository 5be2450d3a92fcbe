package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mdt-generator/backend/internal/models"
	"github.com/mdt-generator/backend/internal/note"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/wcl"
	"github.com/spf13/cobra"
)

func (o *options) client() *wcl.Client {
	c := o.cfg.WarcraftLogs
	return wcl.NewClient(wcl.Config{
		APIURL:         c.APIURL,
		TokenURL:       c.TokenURL,
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		Token:          c.Token,
		TokenExpires:   c.TokenExpires,
		Timeout:        c.Timeout,
		MaxPages:       c.MaxPages,
		PageLimit:      c.PageLimit,
		MaxRetries:     c.MaxRetries,
		RetryDelayBase: c.RetryDelayBase,
	})
}

func fightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fights <report-url>",
		Short: "List the fights of a Warcraft Logs report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := wcl.ParseReportURL(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fights, err := opts.client().FetchFights(ctx, ref.Code)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), fights)
			}
			return printFights(cmd.OutOrStdout(), fights)
		},
	}
}

func printFights(w io.Writer, fights []models.Fight) error {
	if len(fights) == 0 {
		_, err := fmt.Fprintln(w, "No fights found.")
		return err
	}
	for _, f := range fights {
		if _, err := fmt.Fprintf(w, "%4d  %-40s %s\n", f.ID, f.Name, parser.FormatMillis(f.Duration())); err != nil {
			return err
		}
	}
	return nil
}

func fetchCmd(opts *options) *cobra.Command {
	var (
		fightID  int
		spellIDs []string
		asNote   bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <report-url>",
		Short: "Fetch the cast listing of one fight",
		Long: `Fetch the cast listing of one fight.

Examples:
  mdtgen fetch "https://www.warcraftlogs.com/reports/aBc123#fight=7"
  mdtgen fetch aBc123 --fight 7 --spell 740 --spell "64843=Hymn" --note`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := wcl.ParseReportURL(args[0])
			if err != nil {
				return err
			}
			if fightID > 0 {
				ref.FightID = fightID
				ref.Last = false
			}
			if !ref.HasFight() {
				return fmt.Errorf("no fight in %q: add #fight=N or --fight", args[0])
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			errW := cmd.ErrOrStderr()
			data, err := opts.client().FetchCastData(ctx, ref, func(page, total int) {
				fmt.Fprintf(errW, "page %d: %d events\n", page, total)
			})
			if err != nil {
				return err
			}

			filters := parseSpellFilters(spellIDs)
			listing := note.FormatCastData(data, note.FormatOptions{
				FilterEnabled: len(filters) > 0,
				Filters:       filters,
			})
			if !asNote {
				_, err = io.WriteString(cmd.OutOrStdout(), listing)
				return err
			}
			return runNote(cmd.OutOrStdout(), opts, listing)
		},
	}

	cmd.Flags().IntVarP(&fightID, "fight", "f", 0, "fight ID (overrides the URL)")
	cmd.Flags().StringArrayVarP(&spellIDs, "spell", "s", nil, "keep only this spell ID, optionally ID=Name")
	cmd.Flags().BoolVarP(&asNote, "note", "n", false, "print the MRT note instead of the listing")

	return cmd
}

// parseSpellFilters turns "740" and "740=Tranq" flags into filters.
func parseSpellFilters(values []string) []models.SpellFilter {
	filters := make([]models.SpellFilter, 0, len(values))
	for _, v := range values {
		id, name, _ := strings.Cut(v, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		filters = append(filters, models.SpellFilter{ID: id, Name: strings.TrimSpace(name)})
	}
	return filters
}
