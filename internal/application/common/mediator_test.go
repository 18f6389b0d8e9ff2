package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/industry-go/internal/application/common"
)

type pingQuery struct{ Value int }

type pingHandler struct{}

func (pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q := request.(*pingQuery)
	if q.Value < 0 {
		return nil, errors.New("negative")
	}
	return q.Value * 2, nil
}

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Log(level, message string, metadata map[string]interface{}) {
	l.entries = append(l.entries, level+" "+message+" "+metadata["request"].(string))
}

func TestMediator_DispatchesToRegisteredHandler(t *testing.T) {
	// Arrange
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))

	// Act
	resp, err := m.Send(context.Background(), &pingQuery{Value: 21})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, resp)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))

	assert.Error(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))

	_, err := m.Send(context.Background(), &struct{}{})
	assert.Error(t, err)

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))

	var order []string
	trace := func(name string) common.Middleware {
		return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
			order = append(order, name+">")
			resp, err := next(ctx, request)
			order = append(order, "<"+name)
			return resp, err
		}
	}
	m.Use(trace("outer"))
	m.Use(trace("inner"))

	_, err := m.Send(context.Background(), &pingQuery{Value: 1})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "<inner", "<outer"}, order)
}

func TestLoggingMiddleware(t *testing.T) {
	m := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingQuery](m, pingHandler{}))
	m.Use(common.LoggingMiddleware)
	logger := &recordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)

	_, err := m.Send(ctx, &pingQuery{Value: 1})
	require.NoError(t, err)
	_, err = m.Send(ctx, &pingQuery{Value: -1})
	require.Error(t, err)

	assert.Equal(t, []string{
		"DEBUG Request handled pingQuery",
		"WARN Request failed pingQuery",
	}, logger.entries)
}

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		common.LoggerFromContext(context.Background()).Log(common.LevelInfo, "ignored", nil)
	})
}
