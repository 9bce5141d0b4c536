package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"homestay/internal/domain/shared/fault"
)

const writeConflictCode = 112

var ErrTransactionConflict = fault.New(fault.Conflict, "mongo: transaction conflict, retry the request")

// conflictOr maps a write conflict between concurrent transactions to
// ErrTransactionConflict and returns other errors unchanged.
func conflictOr(err error) error {
	if err == nil {
		return nil
	}
	if isWriteConflict(err) {
		return fault.Wrap(fault.Conflict, ErrTransactionConflict.Message(), err)
	}
	return err
}

func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(writeConflictCode) || se.HasErrorLabel("TransientTransactionError")
	}
	return false
}
