package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mdt-generator/backend/internal/note"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/viserio"
	"github.com/spf13/cobra"
)

func noteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "note [file]",
		Short: "Group a cast listing into an MRT note",
		Long: `Group a cast listing into an MRT note.

Examples:
  mdtgen note listing.txt
  mdtgen note -p Druid=Leafy -p Priest=Hymnal < listing.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return runNote(cmd.OutOrStdout(), opts, text)
		},
	}
}

func viserioCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "viserio [file]",
		Short: "Encode an MRT note as a Viserio planner string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return runViserio(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, text)
		},
	}
}

func convertCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Detect the input format and run the next conversion",
		Long: `Detect the input format and run the next conversion: a cast listing
becomes an MRT note, an MRT note becomes a Viserio string.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			grammar, err := parser.Resolve(format, text)
			if err != nil {
				return err
			}
			if grammar.Name() == parser.GrammarCastListing {
				return runNote(cmd.OutOrStdout(), opts, text)
			}
			return runViserio(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, text)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input grammar (cast_listing or mrt_note); detected when empty")
	return cmd
}

func decodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a Viserio planner string into JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			players, err := viserio.Decode(strings.TrimSpace(text))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), players)
		},
	}
}

func runNote(w io.Writer, opts *options, listing string) error {
	mrt, err := note.ConvertToNote(listing, opts.resolver(), opts.window)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return writeJSON(w, map[string]string{"note": mrt})
	}
	_, err = io.WriteString(w, mrt)
	return err
}

func runViserio(w, errW io.Writer, opts *options, text string) error {
	result, err := viserio.NewEncoder(opts.ruleset, nil).Convert(text)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return writeJSON(w, result)
	}

	for _, s := range result.Skipped {
		fmt.Fprintf(errW, "skipped %s {spell:%s} at %s: %s\n", s.Entry.PlayerName, s.Entry.SpellID, s.Entry.Time, s.Reason)
	}
	_, err = fmt.Fprintln(w, result.Data)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
