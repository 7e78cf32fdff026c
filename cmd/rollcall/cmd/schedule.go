// File: schedule.go
// Title: Schedule Command
// Description: Assigns viewing slots to every record file named on the
//              command line. Each file is processed independently; a file
//              that cannot be read or parsed is reported and the batch
//              moves on to the next one.

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softusing/rollcall/pkg/log"
)

var (
	outSuffix string
	outDir    string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [file...]",
	Short: "Assign viewing slots to record files",
	Long: `Reads each record file, builds per-user viewing chains from the
configured catalog and strategy, and writes the scheduled rows to a new
file next to the input.

Examples:
  rollcall schedule records.csv
  rollcall schedule --config run.toml --out-dir out/ a.csv b.csv
  rollcall schedule --seed 99 --report-db runs.db records.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&outSuffix, "out-suffix", "_scheduled", "suffix appended to the input name for the output file")
	scheduleCmd.Flags().StringVar(&outDir, "out-dir", "", "directory for output files (default: next to the input)")
	rootCmd.AddCommand(scheduleCmd)
}

func outputPath(in string) string {
	ext := filepath.Ext(in)
	base := strings.TrimSuffix(filepath.Base(in), ext)
	dir := filepath.Dir(in)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, base+outSuffix+ext)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, finish, err := newPipeline(ctx, "schedule")
	if err != nil {
		printError("cannot set up schedule run", err)
		return err
	}
	defer finish()

	var failed int
	for _, in := range args {
		out := outputPath(in)
		res, err := p.ScheduleFile(ctx, in, out)
		if err != nil {
			p.Log.ErrorWithErr("file failed", err, log.Fields{"file": in})
			failed++
			continue
		}
		if p.Run != nil {
			p.Run.Files++
			p.Run.Records += res.Records
		}
		fmt.Printf("%s: %d records, %d users, %d aborted, %d shifted -> %s\n",
			in, res.Records, res.Users, res.AbortedUsers, res.ShiftedUsers, out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
