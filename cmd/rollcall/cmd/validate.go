// File: validate.go
// Title: Validate Command
// Description: Checks record files against the scheduling rules and prints
//              one line per violation. The exit status reflects whether any
//              file had violations or failed to load.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/softusing/rollcall/pkg/log"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check record files against the scheduling rules",
	Long: `Validates the viewing slots of each record file: time format,
slot ordering, duration coverage, overlap with the previous slot,
business window and workday placement.

Examples:
  rollcall validate records_scheduled.csv
  rollcall validate --config run.toml --report-db runs.db out/*.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, finish, err := newPipeline(ctx, "validate")
	if err != nil {
		printError("cannot set up validate run", err)
		return err
	}
	defer finish()

	var failed, total int
	for _, in := range args {
		res, err := p.ValidateFile(ctx, in)
		if err != nil {
			p.Log.ErrorWithErr("file failed", err, log.Fields{"file": in})
			failed++
			continue
		}
		if p.Run != nil {
			p.Run.Files++
			p.Run.Records += res.Records
		}
		for _, v := range res.Violations {
			fmt.Printf("%s: row %d user %s: %s\n", in, v.Position+1, v.UserID, v.Kind)
		}
		total += len(res.Violations)
		fmt.Printf("%s: %d records, %d violations\n", in, res.Records, len(res.Violations))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	if total > 0 {
		return fmt.Errorf("%d violations found", total)
	}
	return nil
}
