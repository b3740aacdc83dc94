package internal

import (
	"fmt"

	"github.com/goplus/librsys/rhome"
	"github.com/spf13/cobra"
)

func newHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Print the R home a binding would use at run time",
		Long: `Home prints $R_HOME when it is set, otherwise the default embedded at
link time, followed by where the value came from.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			home, src := rhome.Resolve(rhome.Default())
			if src == rhome.SourceNone {
				return rhome.ErrNoHome
			}
			_, err := fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", home, src)
			return err
		},
	}
}
