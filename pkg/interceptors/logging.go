package interceptors

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/tendril/pkg/dispatch"
	"github.com/aretw0/tendril/pkg/model"
)

// Logging logs one line when a request enters the pipeline and one when a
// response leaves it. Failures never reach the response side; the
// dispatcher logs those itself.
type Logging struct {
	logger *slog.Logger
}

// NewLogging creates the logging interceptor pair. A nil logger disables
// output.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Logging{logger: logger}
}

// Request returns the request-side interceptor.
func (l *Logging) Request() dispatch.RequestInterceptor {
	return dispatch.RequestInterceptorFunc(func(ctx context.Context, input *dispatch.HandlerInput) error {
		envelope := input.RequestEnvelope()
		attrs := []any{
			"request_type", envelope.RequestType(),
		}
		if envelope.Request != nil {
			attrs = append(attrs, "request_id", envelope.Request.RequestID)
		}
		if name := envelope.IntentName(); name != "" {
			attrs = append(attrs, "intent", name)
		}
		if envelope.Session != nil {
			attrs = append(attrs, "session_id", envelope.Session.SessionID)
		}
		l.logger.Info("request received", attrs...)
		return nil
	})
}

// Response returns the response-side interceptor. It logs and passes the
// response through untouched.
func (l *Logging) Response() dispatch.ResponseInterceptor {
	return dispatch.ResponseInterceptorFunc(func(ctx context.Context, input *dispatch.HandlerInput, resp *model.Response) (*model.Response, error) {
		l.logger.Info("response produced",
			"request_type", input.RequestEnvelope().RequestType(),
			"has_speech", resp.SpeechText() != "",
			"end_session", resp.EndsSession(),
		)
		return resp, nil
	})
}
