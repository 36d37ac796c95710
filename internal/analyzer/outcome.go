package analyzer

import (
	"context"
	"errors"
	"fmt"

	"go-id-inspector/internal/logger"
	"go-id-inspector/pkg/models"
)

// errNoRecord guards against analyzers that return neither a record nor an error
var errNoRecord = errors.New("analyzer returned no record")

// Outcome is the tagged result of running one analyzer: either the
// analyzer's own record, or its fallback record marked as degraded
// along with the error that caused it.
type Outcome struct {
	Name     string
	Record   models.CheckRecord
	Degraded bool
	Err      error
}

// Interrupted reports whether the analyzer was cut short by its context
// rather than failing on the document itself
func (o Outcome) Interrupted() bool {
	return errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded)
}

// Run executes an analyzer and absorbs any failure, including panics,
// into a degraded outcome. It never returns without a record.
func Run(ctx context.Context, a Analyzer, doc *Document) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = degrade(a, fmt.Errorf("analyzer panicked: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return degrade(a, err)
	}

	record, err := a.Analyze(ctx, doc)
	if err != nil {
		return degrade(a, err)
	}
	if record == nil {
		return degrade(a, errNoRecord)
	}
	return Outcome{Name: a.Name(), Record: record}
}

func degrade(a Analyzer, err error) Outcome {
	logger.ForCheck(a.Name()).WithError(err).Warn("Analyzer degraded to fallback result")
	return Outcome{
		Name:     a.Name(),
		Record:   a.Fallback(err),
		Degraded: true,
		Err:      err,
	}
}
