// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes a unit of work inside a MongoDB transaction when the
// deployment supports one (replica set or sharded cluster). On a standalone
// server the work runs without a transaction; callers must keep their
// writes safe under that mode (conditional updates, unique indexes).
type Runner struct {
	Client *mongo.Client
	Log    *zap.Logger
}

// New returns a Runner for client.
func New(client *mongo.Client, logger *zap.Logger) *Runner {
	return &Runner{Client: client, Log: logger}
}

// Run calls fn with a context bound to a transaction session. If the
// server rejects transactions, fn is retried once without one.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil || r.Client == nil {
		return fn(ctx)
	}

	sess, err := r.Client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if r.Log != nil {
			r.Log.Warn("transactions not supported; running without", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err indicates that the server cannot run
// sessions or multi-document transactions.
//
//	20  IllegalOperation (standalone: "Transaction numbers are only allowed on a replica set member or mongos")
//	51  (legacy) illegal operation during transaction
//	263 OperationNotSupportedInTransaction
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	s := strings.ToLower(err.Error())
	has := func(a, b string) bool { return strings.Contains(s, a) && strings.Contains(s, b) }
	return has("transaction", "replica set") ||
		has("session", "not supported") ||
		has("transaction", "session") ||
		has("illegal operation", "transaction")
}
