// internal/app/system/txn/txn.go

// Package txn runs multi-document mutations inside a MongoDB transaction so
// they apply as one atomic unit. On deployments without transaction support
// (standalone mongod, e.g. local dev), it falls back to running the function
// without a transaction.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a session transaction on db's client. The ctx passed
// to fn carries the session; all collection operations made with it join the
// transaction. If the server reports transactions are unsupported, fn is
// re-run once outside a transaction.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("mongo sessions unavailable; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("mongo transactions unavailable; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Transaction-unsupported server error codes: IllegalOperation variants
// raised by standalone mongod.
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err indicates the server cannot run
// transactions (rather than the transaction failing on its own terms).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if asCommandError(err, &cmdErr) && notSupportedCodes[cmdErr.Code] {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set") {
		return true
	}
	if strings.Contains(msg, "session") && (strings.Contains(msg, "not supported") || strings.Contains(msg, "transaction")) {
		return true
	}
	if strings.Contains(msg, "illegal operation") {
		return true
	}
	return false
}

func asCommandError(err error, target *mongo.CommandError) bool {
	if ce, ok := err.(mongo.CommandError); ok {
		*target = ce
		return true
	}
	return false
}
