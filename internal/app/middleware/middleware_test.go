package middleware_test

import (
	"context"
	"errors"
	"testing"

	"stayflow/internal/app/commands"
	"stayflow/internal/app/middleware"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	"stayflow/internal/infra/storage/memory"
)

type echoResult struct {
	Value string `json:"value"`
}

type echoCommand struct {
	requestID string
}

func (c echoCommand) Key() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string {
	if c.requestID == "" {
		return ""
	}
	return "test.echo:" + c.requestID
}

func (c echoCommand) ResultPrototype() any { return echoResult{} }

type countingBus struct {
	calls   int
	result  any
	err     error
	lastCtx context.Context
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	b.lastCtx = ctx
	return b.result, b.err
}

func (b *countingBus) Ask(ctx context.Context, q queries.Query) (any, error) {
	b.calls++
	b.lastCtx = ctx
	return b.result, b.err
}

func TestIdempotencyReplaysCachedResult(t *testing.T) {
	store := memory.NewIdempotencyStore()
	inner := &countingBus{result: echoResult{Value: "first"}}
	bus := middleware.ChainCommands(inner, middleware.Idempotency(store, nil))

	cmd := echoCommand{requestID: "r1"}
	first, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	inner.result = echoResult{Value: "second"}
	replay, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("handler ran %d times, want 1", inner.calls)
	}
	if replay != first {
		t.Errorf("replay %+v, want cached %+v", replay, first)
	}
}

func TestIdempotencyReplaysCachedError(t *testing.T) {
	store := memory.NewIdempotencyStore()
	inner := &countingBus{err: errors.New("boom")}
	bus := middleware.ChainCommands(inner, middleware.Idempotency(store, nil))

	cmd := echoCommand{requestID: "r2"}
	if _, err := bus.Dispatch(context.Background(), cmd); err == nil {
		t.Fatal("first dispatch should fail")
	}

	inner.err = nil
	inner.result = echoResult{Value: "late"}
	_, err := bus.Dispatch(context.Background(), cmd)
	if err == nil || err.Error() != "boom" {
		t.Errorf("replay error %v, want boom", err)
	}
	if inner.calls != 1 {
		t.Errorf("handler ran %d times, want 1", inner.calls)
	}
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	store := memory.NewIdempotencyStore()
	inner := &countingBus{result: echoResult{Value: "v"}}
	bus := middleware.ChainCommands(inner, middleware.Idempotency(store, nil))

	cmd := echoCommand{}
	for i := 0; i < 2; i++ {
		if _, err := bus.Dispatch(context.Background(), cmd); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("handler ran %d times, want 2 without a request id", inner.calls)
	}
}

type trackingUnit struct {
	uow.UnitOfWork
	committed  bool
	rolledBack bool
}

func (u *trackingUnit) Commit(ctx context.Context) error {
	u.committed = true
	return nil
}

func (u *trackingUnit) Rollback(ctx context.Context) error {
	u.rolledBack = true
	return nil
}

type trackingFactory struct {
	unit *trackingUnit
}

func (f trackingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	unit := &trackingUnit{}
	inner := &countingBus{result: echoResult{Value: "v"}}
	bus := middleware.ChainCommands(inner, middleware.Transaction(trackingFactory{unit: unit}, nil))

	if _, err := bus.Dispatch(context.Background(), echoCommand{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !unit.committed || unit.rolledBack {
		t.Errorf("committed=%v rolledBack=%v, want commit only", unit.committed, unit.rolledBack)
	}
	if got, ok := uow.FromContext(inner.lastCtx); !ok || got != uow.UnitOfWork(unit) {
		t.Error("handler context must carry the open unit of work")
	}
}

func TestTransactionRollsBackOnHandlerError(t *testing.T) {
	unit := &trackingUnit{}
	inner := &countingBus{err: errors.New("boom")}
	bus := middleware.ChainCommands(inner, middleware.Transaction(trackingFactory{unit: unit}, nil))

	if _, err := bus.Dispatch(context.Background(), echoCommand{}); err == nil {
		t.Fatal("dispatch should fail")
	}
	if unit.committed || !unit.rolledBack {
		t.Errorf("committed=%v rolledBack=%v, want rollback only", unit.committed, unit.rolledBack)
	}
}

type gateFunc func(ctx context.Context, message any) error

func (f gateFunc) Validate(ctx context.Context, message any) error  { return f(ctx, message) }
func (f gateFunc) Authorize(ctx context.Context, message any) error { return f(ctx, message) }

func TestValidationShortCircuits(t *testing.T) {
	inner := &countingBus{}
	reject := gateFunc(func(ctx context.Context, message any) error { return errors.New("bad command") })
	bus := middleware.ChainCommands(inner, middleware.Validation(reject))

	if _, err := bus.Dispatch(context.Background(), echoCommand{}); err == nil {
		t.Fatal("rejected command must not reach the handler")
	}
	if inner.calls != 0 {
		t.Errorf("handler ran %d times, want 0", inner.calls)
	}

	accept := gateFunc(func(ctx context.Context, message any) error { return nil })
	bus = middleware.ChainCommands(inner, middleware.Validation(accept))
	if _, err := bus.Dispatch(context.Background(), echoCommand{}); err != nil {
		t.Fatalf("accepted command: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("handler ran %d times, want 1", inner.calls)
	}
}

type echoQuery struct{}

func (echoQuery) Key() string { return "test.echo_query" }

func TestAuthorizationGuardsBothBuses(t *testing.T) {
	inner := &countingBus{}
	deny := gateFunc(func(ctx context.Context, message any) error { return errors.New("forbidden") })

	cmdBus := middleware.ChainCommands(inner, middleware.Authorization(deny))
	if _, err := cmdBus.Dispatch(context.Background(), echoCommand{}); err == nil {
		t.Error("denied command must fail")
	}

	queryBus := middleware.ChainQueries(inner, middleware.QueryAuthorization(deny))
	if _, err := queryBus.Ask(context.Background(), echoQuery{}); err == nil {
		t.Error("denied query must fail")
	}
	if inner.calls != 0 {
		t.Errorf("handlers ran %d times, want 0", inner.calls)
	}
}

func TestOutboxFlushRunsAfterHandler(t *testing.T) {
	box := memory.NewOutbox()
	inner := &countingBus{result: echoResult{Value: "v"}}
	bus := middleware.ChainCommands(inner, middleware.OutboxFlush(box))

	if _, err := bus.Dispatch(context.Background(), echoCommand{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("handler ran %d times, want 1", inner.calls)
	}
}

func TestChainCommandsOrder(t *testing.T) {
	var order []string
	step := func(name string) middleware.CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return dispatchFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	inner := &countingBus{}
	bus := middleware.ChainCommands(inner, step("outer"), step("inner"))
	if _, err := bus.Dispatch(context.Background(), echoCommand{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order %v, want [outer inner]", order)
	}
}

type dispatchFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f dispatchFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}
