package main

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"periscope/internal/browse"
	"periscope/internal/config"
	"periscope/internal/render"
	"periscope/internal/scan"
)

// options carries the flags that are not part of the persisted config.
type options struct {
	cfgFile string
	formats map[string]*bool
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "periscope"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	opts := &options{formats: map[string]*bool{}}

	root := &cobra.Command{
		Use:   "periscope",
		Short: "Scan platform descriptions and report the peripherals they expose",
		Long: `periscope walks <dir>/platforms for *.repl description files, resolves their
"using" includes, assigns every platform a category and reports the
peripherals each platform exposes across its include closure.

Select one or more output formats; with none, this help is printed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var selected []string
			for _, name := range render.Order {
				if *opts.formats[name] {
					selected = append(selected, name)
				}
			}
			if len(selected) == 0 {
				return cmd.Help()
			}
			res, err := load(cmd, v, opts)
			if err != nil {
				return err
			}
			for _, name := range selected {
				if err := render.Formats[name].Render(cmd.OutOrStdout(), res.Registry); err != nil {
					return err
				}
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("dir", "d", ".", "directory to scan")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.StringVarP(&opts.cfgFile, "config", "c", "", "config file (default: ./.periscope.yaml)")
	_ = v.BindPFlag("dir", pf.Lookup("dir"))
	_ = v.BindPFlag("verbose", pf.Lookup("verbose"))

	opts.formats["json"] = root.Flags().BoolP("json", "J", false, "emit the JSON document")
	opts.formats["yaml"] = root.Flags().BoolP("yaml", "Y", false, "emit the YAML document")
	opts.formats["html"] = root.Flags().BoolP("html", "H", false, "emit the HTML report fragment")

	root.AddCommand(&cobra.Command{
		Use:   "browse",
		Short: "Browse platforms and their peripherals by kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := load(cmd, v, opts)
			if err != nil {
				return err
			}
			return browse.Run(res.Registry)
		},
	})

	return root
}

// load resolves the configuration and performs a full scan.
func load(cmd *cobra.Command, v *viper.Viper, opts *options) (*scan.Result, error) {
	cfg, err := config.Load(v, opts.cfgFile)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	logger.Debug("scanning", "dir", cfg.Dir, "platforms", cfg.PlatformsRoot(), "sources", cfg.SourcesRoot())
	return scan.Run(cmd.Context(), cfg, logger)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		newLogger(os.Stderr, false).Fatal(err)
	}
}
