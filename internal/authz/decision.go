package authz

import "log/slog"

// Decision is a structured record of one authorization outcome. Predicates
// stay pure; callers that want observability build a Decision and pass it to
// LogDecision after evaluating.
type Decision struct {
	ActorID  int64
	Role     Role
	Resource string
	Rule     string
	Allowed  bool
}

// LogDecision emits the decision through the supplied logger. Denials log at
// warn so they stand out in request logs; a nil logger is a no-op.
func LogDecision(logger *slog.Logger, d Decision) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.Int64("actor_id", d.ActorID),
		slog.String("role", string(d.Role)),
		slog.String("resource", d.Resource),
		slog.String("rule", d.Rule),
		slog.Bool("allowed", d.Allowed),
	}
	if d.Allowed {
		logger.Debug("authz decision", attrs...)
		return
	}
	logger.Warn("authz denied", attrs...)
}
