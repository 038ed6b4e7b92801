package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/config"
	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/operation"
)

type retryMiddleware struct {
	policy    *config.RetryPolicyConfiguration
	loggers   logs.Loggers
	retryIf   func(err error) bool
	delayType retry.DelayTypeFunc
}

func (m *retryMiddleware) Execute(ctx context.Context, op operation.Operation, f *foundry.Foundry, input any, next foundry.Next) (output any, err error) {
	if !m.policy.Enabled {
		return next(ctx, input)
	}
	err = commonerrors.ConvertContextError(
		retry.Do(
			func() error {
				out, attemptErr := next(ctx, input)
				if attemptErr == nil {
					output = out
				}
				return attemptErr
			},
			retry.OnRetry(func(n uint, err error) {
				m.loggers.LogError("operation `", op.Name(), "` failed (attempt #", fmt.Sprintf("%v", n+1), "); retrying: ", err.Error())
			}),
			retry.Delay(m.policy.RetryWaitMin),
			retry.MaxDelay(m.policy.RetryWaitMax),
			retry.MaxJitter(25*time.Millisecond),
			retry.DelayType(m.delayType),
			retry.Attempts(uint(m.policy.RetryMax)),
			retry.RetryIf(m.retryIf),
			retry.LastErrorOnly(true),
			retry.Context(ctx),
		),
	)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// RetryOption tweaks the retry middleware.
type RetryOption func(*retryMiddleware)

// WithRetryIf overrides the predicate deciding whether a failure is worth
// retrying. Cancellations and timeouts are never retried, whatever the
// predicate says.
func WithRetryIf(retryIf func(err error) bool) RetryOption {
	return func(m *retryMiddleware) {
		if retryIf != nil {
			m.retryIf = retryIf
		}
	}
}

// Retry returns middleware retrying failed operations according to the
// supplied policy. A nil or disabled policy makes it a passthrough.
func Retry(policy *config.RetryPolicyConfiguration, loggers logs.Loggers, opts ...RetryOption) (foundry.Middleware, error) {
	if policy == nil {
		policy = config.DefaultNoRetryPolicyConfiguration()
	}
	if err := policy.Validate(); err != nil {
		return nil, commonerrors.WrapError(commonerrors.ErrInvalid, err, "invalid retry policy configuration")
	}
	if loggers == nil {
		loggers = logs.NewNoopLogger()
	}
	var delayType retry.DelayTypeFunc
	switch {
	case policy.LinearBackOffEnabled:
		delayType = retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)
	case policy.BackOffEnabled:
		delayType = retry.BackOffDelay
	default:
		delayType = retry.FixedDelay
	}
	m := &retryMiddleware{
		policy:    policy,
		loggers:   loggers,
		delayType: delayType,
		retryIf: func(err error) bool {
			return true
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	userRetryIf := m.retryIf
	m.retryIf = func(err error) bool {
		if commonerrors.Any(err, commonerrors.ErrCancelled, commonerrors.ErrTimeout, commonerrors.ErrClosed) {
			return false
		}
		return userRetryIf(err)
	}
	return m, nil
}
