package runtime

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-sync/domain"
	"chat-sync/domain/event"
	"chat-sync/errors"
	"chat-sync/mocks"
)

func TestFanout_Delivers_To_Every_Sink_In_Order(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockEventSink(ctrl)
	second := mocks.NewMockEventSink(ctrl)
	fanout := NewFanout(log, time.Second).Add(first, second)

	var order []string
	msg := domain.Message{ID: "m1", Room: "lounge", Role: domain.RoleUser}
	evt := event.MessageMerged{Message: msg}

	// Given both sinks accept the event
	first.EXPECT().Consume(gomock.Any(), evt).Do(
		func(ctx context.Context, e event.DomainEvent) {
			order = append(order, "first")
		}).Return(nil).Times(1)
	second.EXPECT().Consume(gomock.Any(), evt).Do(
		func(ctx context.Context, e event.DomainEvent) {
			order = append(order, "second")
		}).Return(nil).Times(1)

	// When the event is emitted
	fanout.Emit(context.Background(), evt)

	// Then each sink saw it once, in registration order
	req.Equal([]string{"first", "second"}, order)
}

func TestFanout_Failing_Sink_Does_Not_Block_Others(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)
	fanout := NewFanout(log, time.Second).Add(failing, healthy)

	evt := event.RoomActivated{Room: "lounge"}
	delivered := false

	failing.EXPECT().Consume(gomock.Any(), evt).Return(errors.ErrWriteFailed).Times(1)
	healthy.EXPECT().Consume(gomock.Any(), evt).Do(
		func(ctx context.Context, e event.DomainEvent) {
			delivered = true
		}).Return(nil).Times(1)

	fanout.Emit(context.Background(), evt)

	req.True(delivered)
}

func TestFanout_Sink_Context_Carries_Timeout(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockEventSink(ctrl)
	fanout := NewFanout(log, 20*time.Millisecond).Add(sink)

	evt := event.RoomDeactivated{Room: "lounge"}
	sink.EXPECT().Consume(gomock.Any(), evt).Do(
		func(ctx context.Context, e event.DomainEvent) {
			deadline, ok := ctx.Deadline()
			req.True(ok)
			req.WithinDuration(time.Now().Add(20*time.Millisecond), deadline, 10*time.Millisecond)
		}).Return(nil).Times(1)

	fanout.Emit(context.Background(), evt)
}
