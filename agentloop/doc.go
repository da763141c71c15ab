// Package agentloop implements the autonomous task-execution loop.
//
// Given a natural-language goal, the loop repeatedly asks a language-model
// backend to choose one action from a registered capability set, executes
// that action with a bounded timeout, records the observation, and feeds it
// back until the model selects the idle sentinel, a budget is exhausted, or
// an operator cancels the run.
//
// # Architecture
//
// The package is organized around these core concepts:
//
//   - EventLog: append-only, time-ordered record of a run (message, plan,
//     action, observation, summary).
//   - ChecklistSynchronizer: keeps a durable checklist file in sync with the
//     latest plan without discarding completion marks.
//   - Compactor: collapses older events into a single summary on a cadence
//     to bound prompt size.
//   - Dispatcher: looks up capabilities by name and normalizes success,
//     error, and timeout into observations.
//   - Controller: the state machine tying the above together, with
//     iteration/time budgets and cooperative cancellation.
//
// # Quick Start
//
//	backend, _ := llm.NewGollmBackend("openai")
//	pool := agentloop.NewWorkerPool(8)
//	ctrl := agentloop.NewController(agentloop.DefaultConfig(), backend, registry, mem, pool, logger)
//
//	report, err := ctrl.Start(ctx, "Write a summary of the quarterly numbers")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Render())
package agentloop
