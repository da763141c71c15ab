package agentloop

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// OutcomeKind classifies a dispatch result.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeUnknownCapability OutcomeKind = "unknown_capability"
	OutcomeTimeout           OutcomeKind = "timeout"
	OutcomeCapabilityFailure OutcomeKind = "capability_failure"
)

// Outcome is the normalized result of dispatching one action.
type Outcome struct {
	Kind    OutcomeKind
	Result  string
	Message string
}

// Observation converts an outcome into an observation event for the log.
func (o Outcome) Observation(capability string) Event {
	if o.Kind == OutcomeSuccess {
		return NewObservationEvent(capability, o.Result)
	}
	return NewErrorObservationEvent(capability, fmt.Sprintf("%s: %s", o.Kind, o.Message))
}

// Dispatcher invokes registered capabilities with a bounded timeout. The
// capability runs on the worker pool so a blocking implementation never
// stalls the controller's bookkeeping.
type Dispatcher struct {
	registry CapabilityRegistry
	pool     *WorkerPool
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher over the given registry and pool.
func NewDispatcher(registry CapabilityRegistry, pool *WorkerPool, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{registry: registry, pool: pool, log: log}
}

// Dispatch looks up name, invokes it with arguments under timeout, and
// normalizes success, error, panic, and timeout into an Outcome. Errors are
// captured, never propagated; the loop must keep running.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, arguments map[string]any, timeout time.Duration) Outcome {
	capability, ok := d.registry.Lookup(name)
	if !ok {
		d.log.Warn("unknown capability requested", zap.String("capability", name))
		return Outcome{Kind: OutcomeUnknownCapability, Message: fmt.Sprintf("capability %q is not registered", name)}
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resultCh := d.pool.Submit(callCtx, func(ctx context.Context) (any, error) {
		return invokeCapability(ctx, capability, arguments)
	})

	select {
	case res := <-resultCh:
		if res.Err != nil {
			d.log.Warn("capability failed",
				zap.String("capability", name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(res.Err))
			return Outcome{Kind: OutcomeCapabilityFailure, Message: res.Err.Error()}
		}
		text, _ := res.Value.(string)
		d.log.Debug("capability completed",
			zap.String("capability", name),
			zap.Duration("elapsed", time.Since(start)))
		return Outcome{Kind: OutcomeSuccess, Result: text}
	case <-callCtx.Done():
		// Cancellation is best-effort: the invocation keeps its context
		// cancelled but we stop waiting on it here.
		d.log.Warn("capability timed out",
			zap.String("capability", name),
			zap.Duration("timeout", timeout))
		return Outcome{Kind: OutcomeTimeout, Message: fmt.Sprintf("capability %q exceeded %s", name, timeout)}
	}
}

// invokeCapability runs one capability call, converting a panic into an
// error so a misbehaving handler cannot take down the run.
func invokeCapability(ctx context.Context, capability Capability, arguments map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capability panicked: %v", r)
		}
	}()
	return capability.Invoke(ctx, arguments)
}
