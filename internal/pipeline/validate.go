// File: validate.go
// Title: Check-Path Flow
// Description: Implements the validation flow for one record file: map the
//              rows onto validator records, evaluate the scheduling rules,
//              and report every violation with its row context.

package pipeline

import (
	"context"

	"github.com/softusing/rollcall/internal/csvio"
	"github.com/softusing/rollcall/internal/validate"
	"github.com/softusing/rollcall/pkg/log"
)

// ValidateResult summarizes one checked file.
type ValidateResult struct {
	Records    int
	Violations []validate.Violation
}

// ValidateFile checks one record file against the scheduling rules.
func (p *Pipeline) ValidateFile(ctx context.Context, path string) (*ValidateResult, error) {
	logger := p.Log.WithField("file", path)

	f, err := csvio.Read(path)
	if err != nil {
		return nil, err
	}
	records, err := csvio.ValidationRecords(f)
	if err != nil {
		return nil, err
	}

	validator := validate.New(p.Cal)
	violations := validator.Validate(records)

	for _, violation := range violations {
		logger.Warn("rule violation", log.Fields{
			"user": violation.UserID,
			"row":  violation.Position + 1,
			"kind": string(violation.Kind),
		})
		p.recordFinding(ctx, path, violation.UserID, violation.Position, string(violation.Kind), "")
	}

	if len(violations) == 0 {
		logger.Info("file clean", log.Fields{"records": len(records)})
	} else {
		logger.Info("file has violations", log.Fields{
			"records":    len(records),
			"violations": len(violations),
		})
	}

	return &ValidateResult{Records: len(records), Violations: violations}, nil
}
