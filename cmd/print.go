// print gathers all tools for formatting CLI output.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	sp "github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nla/cdxserver/access"
)

var noColor bool
var printPrompt = color.New(color.FgWhite).PrintfFunc()
var spinner = sp.New(sp.CharSets[24], 100*time.Millisecond)

func SetNoColor() {
	color.NoColor = noColor
}

func PrintSuccess(msg string, params ...interface{}) {
	color.Green(msg, params...)
}

func PrintInfo(msg string, params ...interface{}) {
	color.White(msg, params...)
}

func PrintWarning(msg string, params ...interface{}) {
	color.Yellow(msg, params...)
}

func PrintRed(msg string, params ...interface{}) {
	color.Red(msg, params...)
}

func PrintErr(err error, params ...interface{}) {
	color.Red(err.Error(), params...)
}

func PrintNotYetFinished(cmd *cobra.Command) {
	color.Yellow("%s command is not yet implemented", cmd.Name())
}

// PrintCollectionsTable renders a list of collection names.
func PrintCollectionsTable(names []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"collection"})
	table.SetBorders(tablewriter.Border{Left: false, Top: false, Right: false, Bottom: false})
	table.SetCenterSeparator("")
	for _, n := range names {
		table.Append([]string{n})
	}
	table.Render()
}

// PrintRuleTable renders a collection's access rules.
func PrintRuleTable(rules []*access.Rule) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "name", "policy", "pinned", "prefixes"})
	table.SetBorders(tablewriter.Border{Left: false, Top: false, Right: false, Bottom: false})
	table.SetCenterSeparator("")
	for _, r := range rules {
		table.Append([]string{
			fmt.Sprintf("%d", r.ID),
			r.Name,
			fmt.Sprintf("%d", r.PolicyID),
			fmt.Sprintf("%v", r.Pinned),
			strings.Join(r.Prefixes, ", "),
		})
	}
	table.Render()
}

// withSpinner runs fn while displaying a progress spinner, used for
// long-running ingests where stdout otherwise sits silent.
func withSpinner(msg string, fn func() error) error {
	spinner.Suffix = " " + msg
	spinner.Start()
	defer spinner.Stop()
	return fn()
}

func prompt(msg string) string {
	var input string
	printPrompt(msg)
	fmt.Scanln(&input)
	return strings.TrimSpace(input)
}

func InputText(message, defaultText string) string {
	if message == "" {
		message = "enter text:"
	}
	input := prompt(fmt.Sprintf("%s [%s]: ", message, defaultText))

	return input
}
