package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nla/cdxserver/cdx"
	"github.com/nla/cdxserver/record"
	"github.com/nla/cdxserver/store"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "list known collections",
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := store.Open(cfg.DataDir, cfg.Access.DefaultAllow, cfg.Access.ExperimentalAccessControl)
		ExitIfErr(os.Stderr, err)
		defer ds.Close()

		names, err := ds.ListCollections()
		ExitIfErr(os.Stderr, err)
		PrintCollectionsTable(names)
	},
}

var (
	ingestCmdFile   string
	ingestCmdDelete bool
	ingestCmdSkip   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [collection]",
	Short: "load CDX lines into a collection from a file or stdin",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := store.Open(cfg.DataDir, cfg.Access.DefaultAllow, cfg.Access.ExperimentalAccessControl)
		ExitIfErr(os.Stderr, err)
		defer ds.Close()

		idx, err := ds.Index(args[0], true)
		ExitIfErr(os.Stderr, err)

		in := os.Stdin
		if ingestCmdFile != "" {
			f, err := loadFileIfPath(ingestCmdFile)
			ExitIfErr(os.Stderr, err)
			defer f.Close()
			in = f
		}

		err = withSpinner("ingesting "+args[0], func() error {
			batch, err := idx.BeginUpdate()
			if err != nil {
				return err
			}
			defer batch.Rollback()

			onCapture := func(c *record.Capture) error {
				if ingestCmdDelete {
					return batch.DeleteCapture(c)
				}
				return batch.PutCapture(c)
			}
			onAlias := func(a *record.Alias) error {
				if ingestCmdDelete {
					return batch.DeleteAlias(a.AliasSurt)
				}
				return batch.PutAlias(a.AliasSurt, a.TargetSurt)
			}
			if err := cdx.ParseStream(in, onCapture, onAlias, ingestCmdSkip); err != nil {
				return err
			}
			return batch.Commit()
		})
		ExitIfErr(os.Stderr, err)
		PrintSuccess("ingested into %s", args[0])
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCmdFile, "file", "f", "", "CDX file to load, defaults to stdin")
	ingestCmd.Flags().BoolVarP(&ingestCmdDelete, "delete", "", false, "delete the given records instead of adding them")
	ingestCmd.Flags().BoolVarP(&ingestCmdSkip, "skip-bad-lines", "", false, "skip malformed lines instead of aborting")
	RootCmd.AddCommand(collectionsCmd)
	RootCmd.AddCommand(ingestCmd)
}
