package service

import (
	"context"
	"fmt"

	"github.com/scrimflow/accounts/pkg/slogx"
)

// PasswordHasher hashes and checks passwords. Compare must return false, not
// fail, for a wrong password or a malformed hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, encodedHash string) bool
}

// TaskRunner runs fire-and-forget work off the request path. Submit must not
// block; it reports whether the task was accepted.
type TaskRunner interface {
	Submit(ctx context.Context, name string, task func(ctx context.Context) error) bool
}

// dispatch hands task to runner. Without a runner the task runs inline. In
// both cases errors and panics are logged and never reach the caller.
func dispatch(ctx context.Context, runner TaskRunner, name string, task func(ctx context.Context) error) {
	logger := slogx.FromContext(ctx)

	if runner == nil {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return task(slogx.Detach(ctx))
		}()
		if err != nil {
			logger.Error("background task failed", "task", name, "error", err)
		}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("background task submission panicked", "task", name, "panic", r)
		}
	}()
	if !runner.Submit(ctx, name, task) {
		logger.Warn("background task not accepted", "task", name)
	}
}
