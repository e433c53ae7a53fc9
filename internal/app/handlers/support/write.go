package support

import (
	"context"

	"stayflow/internal/app/uow"
)

// WriteUnit wraps a unit of work that may be owned by the transaction
// middleware (present in context) or managed locally by the handler.
type WriteUnit struct {
	Unit      uow.UnitOfWork
	Ctx       context.Context
	managed   bool
	committed bool
}

// BeginWriteUnit reuses the context's unit of work when the transaction
// middleware supplied one, otherwise starts and manages its own.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (*WriteUnit, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &WriteUnit{Unit: unit, Ctx: ctx}, nil
	}
	if factory == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	return &WriteUnit{Unit: unit, Ctx: execCtx, managed: true}, nil
}

// Commit finalizes a locally managed unit; it is a no-op when the middleware
// owns the transaction boundary.
func (w *WriteUnit) Commit() error {
	if !w.managed {
		return nil
	}
	if err := w.Unit.Commit(w.Ctx); err != nil {
		return err
	}
	w.committed = true
	return nil
}

// Close rolls back a locally managed unit that was never committed.
func (w *WriteUnit) Close() {
	if w.managed && !w.committed {
		_ = w.Unit.Rollback(w.Ctx)
	}
}
