package circuit

import (
	"go.uber.org/zap"

	"github.com/lherron/circmerge/internal/bulk"
)

// BatchResult lists the transfers a batch applied, in order.
type BatchResult struct {
	Applied []Applied
	Summary *bulk.Result
}

// Names returns the final names of the applied transfers.
func (r *BatchResult) Names() []string {
	names := make([]string, 0, len(r.Applied))
	for _, a := range r.Applied {
		names = append(names, a.Request.FinalName())
	}
	return names
}

// BatchOption configures a batch run.
type BatchOption func(*bulk.Operation)

// WithLogger logs each transfer of the batch.
func WithLogger(logger *zap.Logger) BatchOption {
	return func(op *bulk.Operation) {
		op.Logger = logger
	}
}

// Batch applies reqs to dst in order. The first failing request stops the
// batch; transfers before it stay applied and the failure comes back as a
// *BatchError naming the request.
func Batch(src, dst *Document, reqs []Request, opts ...BatchOption) (*BatchResult, error) {
	op := bulk.Operation{}
	for _, opt := range opts {
		opt(&op)
	}

	result := &BatchResult{}
	result.Summary = bulk.Run(op, reqs, Request.String, func(req Request) error {
		applied, err := Apply(src, dst, req)
		if err != nil {
			return err
		}
		result.Applied = append(result.Applied, *applied)
		return nil
	})

	if len(result.Summary.Errors) > 0 {
		failed := result.Summary.Errors[0]
		return result, &BatchError{
			Name:  reqs[failed.Index].Name,
			Index: failed.Index,
			Err:   failed.Error,
		}
	}
	return result, nil
}
