package metrics

import (
	"time"

	obserrors "github.com/vv-events/dashboard/internal/observability/errors"
	"github.com/vv-events/dashboard/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultCached   = "cached"
	ResultDegraded = "degraded"
	ResultDenied   = "denied"
	ResultStale    = "stale"
	ResultInvalid  = "invalid"
)

// SessionCheckMetric captures one identity check.
type SessionCheckMetric struct {
	Result   string
	Attempts int
	Duration time.Duration
	Err      error
}

// EmitSessionCheck emits `session.check` and `session.check.duration`.
func EmitSessionCheck(sink statsd.Sink, in SessionCheckMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("session.check", 1, tags)
	if in.Attempts > 1 {
		sink.Count("session.check.retries", int64(in.Attempts-1), CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("session.check.duration", in.Duration, CloneTags(tags))
	}
}

// VerificationMetric captures one ticket verification.
type VerificationMetric struct {
	Valid    bool
	Step     string
	Duration time.Duration
}

// EmitVerification emits `tickets.verify` tagged by outcome and failing step.
func EmitVerification(sink statsd.Sink, in VerificationMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": ResultSuccess}
	if !in.Valid {
		tags["result"] = ResultInvalid
		if in.Step != "" {
			tags["step"] = in.Step
		}
	}

	sink.Count("tickets.verify", 1, tags)
	if in.Duration > 0 {
		sink.Timing("tickets.verify.duration", in.Duration, CloneTags(tags))
	}
}

// EmitSessionEntries reports how many sessions the manager tracks in memory.
func EmitSessionEntries(sink statsd.Sink, n int) {
	if sink == nil {
		return
	}
	sink.Gauge("session.entries", float64(n), nil)
}

// EmitLogin counts interactive logins by method and outcome.
func EmitLogin(sink statsd.Sink, method string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"method": method, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(err)
	}
	sink.Count("auth.login", 1, tags)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
