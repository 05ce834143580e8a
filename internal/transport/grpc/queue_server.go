package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/notify"
	"smartqueue/backend/internal/service/queue"
)

type QueueServer struct {
	svc      queueService
	notifier notify.Publisher
	log      *slog.Logger
}

type queueService interface {
	Reserve(ctx context.Context, in queue.ReserveInput) (domain.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	ServeNext(ctx context.Context) (domain.Appointment, error)
	PositionOf(id uuid.UUID) (int, error)
	WaitEstimate(date string, hour int) (queue.WaitEstimate, error)
	ListAll() []domain.Appointment
	SetDuration(ctx context.Context, minutes int) error
	SetHours(ctx context.Context, openHour, closeHour int) error
}

func NewQueueServer(svc queueService, notifier notify.Publisher, log *slog.Logger) *QueueServer {
	if log == nil {
		log = slog.Default()
	}
	return &QueueServer{
		svc:      svc,
		notifier: notifier,
		log:      log.With(slog.String("component", "grpc.queue")),
	}
}

func (s *QueueServer) Reserve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "Reserve"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	hour, err := intField(req, "hour")
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	appt, err := s.svc.Reserve(ctx, queue.ReserveInput{
		Name: stringField(req, "name"),
		Date: stringField(req, "date"),
		Hour: hour,
	})
	if err != nil {
		return nil, s.statusFor(log, "reserve", err)
	}
	return appointmentStruct(appt)
}

func (s *QueueServer) Cancel(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	log := s.log.With(slog.String("rpc", "Cancel"))

	id, err := parseID(req)
	if err != nil {
		log.Info("cancel for unknown id", slog.String("appointment_id", req.GetValue()))
		return nil, status.Error(codes.NotFound, "No matching appointment found.")
	}
	if err := s.svc.Cancel(ctx, id); err != nil {
		return nil, s.statusFor(log, "cancel", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *QueueServer) ServeNext(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "ServeNext"))

	appt, err := s.svc.ServeNext(ctx)
	if err != nil {
		return nil, s.statusFor(log, "serve", err)
	}
	if s.notifier != nil {
		notify.AnnounceTurn(ctx, s.notifier, appt.ID, appt.CustomerName)
	}
	log.Info("served",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("staff", StaffSubject(ctx)),
	)
	return appointmentStruct(appt)
}

func (s *QueueServer) PositionOf(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int32Value, error) {
	log := s.log.With(slog.String("rpc", "PositionOf"))

	id, err := parseID(req)
	if err != nil {
		return nil, status.Error(codes.NotFound, "No matching appointment found.")
	}
	pos, err := s.svc.PositionOf(id)
	if err != nil {
		return nil, s.statusFor(log, "position", err)
	}
	return wrapperspb.Int32(int32(pos)), nil
}

func (s *QueueServer) WaitEstimate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "WaitEstimate"))

	hour, err := intField(req, "hour")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	est, err := s.svc.WaitEstimate(stringField(req, "date"), hour)
	if err != nil {
		return nil, s.statusFor(log, "wait estimate", err)
	}
	return structpb.NewStruct(map[string]any{
		"ahead":   est.Ahead,
		"minutes": est.Minutes,
	})
}

func (s *QueueServer) ListAll(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	log := s.log.With(slog.String("rpc", "ListAll"))

	all := s.svc.ListAll()
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(all))}
	for _, appt := range all {
		st, err := appointmentStruct(appt)
		if err != nil {
			log.Error("encode appointment failed", slog.Any("err", err))
			return nil, status.Error(codes.Internal, "internal error")
		}
		out.Values = append(out.Values, structpb.NewStructValue(st))
	}
	return out, nil
}

func (s *QueueServer) SetDuration(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	log := s.log.With(slog.String("rpc", "SetDuration"))

	if err := s.svc.SetDuration(ctx, int(req.GetValue())); err != nil {
		return nil, s.statusFor(log, "set duration", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *QueueServer) SetHours(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	log := s.log.With(slog.String("rpc", "SetHours"))

	openHour, err := intField(req, "open_hour")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	closeHour, err := intField(req, "close_hour")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.svc.SetHours(ctx, openHour, closeHour); err != nil {
		return nil, s.statusFor(log, "set hours", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *QueueServer) statusFor(log *slog.Logger, op string, err error) error {
	if reason, ok := queue.ReasonOf(err); ok {
		log.Info(op+" rejected", slog.String("reason", string(reason)))
		if reason == queue.ReasonSlotTaken || reason == queue.ReasonDuplicateCustomer {
			return status.Error(codes.FailedPrecondition, err.Error())
		}
		return status.Error(codes.InvalidArgument, err.Error())
	}
	switch {
	case errors.Is(err, queue.ErrNotFound):
		return status.Error(codes.NotFound, "No matching appointment found.")
	case errors.Is(err, queue.ErrQueueEmpty):
		return status.Error(codes.FailedPrecondition, "No customers in the queue.")
	case errors.Is(err, queue.ErrInvalidHours), errors.Is(err, queue.ErrInvalidDuration):
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, queue.ErrStoreUnavailable):
		log.Error(op+" failed", slog.Any("err", err))
		return status.Error(codes.Unavailable, "storage unavailable, try again")
	default:
		log.Error(op+" failed", slog.Any("err", err))
		return status.Error(codes.Internal, "internal error")
	}
}

func appointmentStruct(a domain.Appointment) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":             a.ID.String(),
		"name":           a.CustomerName,
		"date":           a.Date.String(),
		"hour":           a.Hour,
		"formatted_time": a.FormattedTime(),
		"created_at":     a.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func parseID(v *wrapperspb.StringValue) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(v.GetValue()))
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int(n.NumberValue), nil
}
