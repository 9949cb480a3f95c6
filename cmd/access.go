package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nla/cdxserver/store"
)

var accessCmd = &cobra.Command{
	Use:   "access [collection]",
	Short: "list the access rules for a collection",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := store.Open(cfg.DataDir, cfg.Access.DefaultAllow, cfg.Access.ExperimentalAccessControl)
		ExitIfErr(os.Stderr, err)
		defer ds.Close()

		acc, err := ds.Access(args[0], false)
		ExitIfErr(os.Stderr, err)

		rules, err := acc.ListRules()
		ExitIfErr(os.Stderr, err)
		PrintRuleTable(rules)
	},
}

var accessCheckCmd = &cobra.Command{
	Use:   "access-check [collection] [accessPoint] [url]",
	Short: "evaluate the access decision for a URL at a point in time",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ds, err := store.Open(cfg.DataDir, cfg.Access.DefaultAllow, cfg.Access.ExperimentalAccessControl)
		ExitIfErr(os.Stderr, err)
		defer ds.Close()

		acc, err := ds.Access(args[0], false)
		ExitIfErr(os.Stderr, err)

		decision, err := acc.CheckAccess(args[1], args[2], 0, 0)
		ExitIfErr(os.Stderr, err)
		PrintInfo("allowed=" + strconv.FormatBool(decision.Allowed) + " ruleId=" + strconv.FormatUint(decision.RuleID, 10) + " policyId=" + strconv.FormatUint(decision.PolicyID, 10))
	},
}

func init() {
	RootCmd.AddCommand(accessCmd)
	RootCmd.AddCommand(accessCheckCmd)
}
