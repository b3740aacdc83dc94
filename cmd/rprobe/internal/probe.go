package internal

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newProbeCmd(load loader) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print the R home and library directories",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cfg, logger, err := load(c)
			if err != nil {
				return err
			}
			prober, err := newProber(cfg, logger)
			if err != nil {
				return err
			}
			paths, err := prober.Probe(c.Context())
			if err != nil {
				return fmt.Errorf("problem locating local R install: %w", err)
			}
			out := c.OutOrStdout()
			if !asJSON {
				_, err = fmt.Fprintf(out, "%s\n%s\n", paths.Home, paths.LibraryDir)
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Home       string `json:"home"`
				LibraryDir string `json:"library_dir"`
			}{paths.Home, paths.LibraryDir})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
