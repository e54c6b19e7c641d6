package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"book-my-session/core/constants"
	appErrors "book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/modules/notification/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type BookingPayload struct {
	BookingID uuid.UUID `json:"booking_id"`
}

// NewBookingConfirmationTask uses the booking id as task id, so enqueueing the
// same booking twice is rejected by the broker.
func NewBookingConfirmationTask(bookingID uuid.UUID, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(BookingPayload{BookingID: bookingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskBookingConfirmation, payload,
		asynq.TaskID(bookingID.String()),
		asynq.Queue(constants.QueueNotifications),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(24*time.Hour),
	), nil
}

func NewSweepTask() *asynq.Task {
	return asynq.NewTask(constants.TaskBookingSweep, nil, asynq.Queue(constants.QueueNotifications), asynq.MaxRetry(0))
}

type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector finds and removes tasks that still hold a booking's task id.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

// Enqueuer hands committed bookings to the worker.
type Enqueuer struct {
	client    TaskEnqueuer
	inspector TaskInspector
	maxRetry  int
}

func NewEnqueuer(client TaskEnqueuer, maxRetry int) *Enqueuer {
	return &Enqueuer{client: client, maxRetry: maxRetry}
}

// WithInspector lets Requeue replace finished tasks.
func (e *Enqueuer) WithInspector(inspector TaskInspector) *Enqueuer {
	e.inspector = inspector
	return e
}

func (e *Enqueuer) enqueue(ctx context.Context, bookingID uuid.UUID) error {
	task, err := NewBookingConfirmationTask(bookingID, e.maxRetry)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	logger.Info("Enqueuer:Enqueue:Queued", "booking_id", bookingID, "task_id", info.ID, "queue", info.Queue)
	return nil
}

func alreadyQueued(err error) bool {
	return errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask)
}

func (e *Enqueuer) BookingCommitted(ctx context.Context, bookingID uuid.UUID) error {
	err := e.enqueue(ctx, bookingID)
	if err == nil || alreadyQueued(err) {
		return nil
	}
	return fmt.Errorf("enqueue booking confirmation: %w", err)
}

// Requeue enqueues a booking whose marker is still empty. A task that was
// archived after its last retry, or completed, keeps the booking's task id until
// its retention ends; it is deleted and replaced so the booking is dispatched again.
func (e *Enqueuer) Requeue(ctx context.Context, bookingID uuid.UUID) error {
	err := e.enqueue(ctx, bookingID)
	if err == nil {
		return nil
	}
	if !alreadyQueued(err) {
		return fmt.Errorf("enqueue booking confirmation: %w", err)
	}
	if e.inspector == nil {
		logger.Debug("Enqueuer:Requeue:AlreadyQueued", "booking_id", bookingID)
		return nil
	}

	taskID := bookingID.String()
	info, err := e.inspector.GetTaskInfo(constants.QueueNotifications, taskID)
	switch {
	case errors.Is(err, asynq.ErrTaskNotFound):
		// removed between the two calls
	case err != nil:
		return fmt.Errorf("inspect booking confirmation: %w", err)
	case info.State == asynq.TaskStateArchived || info.State == asynq.TaskStateCompleted:
		if err := e.inspector.DeleteTask(constants.QueueNotifications, taskID); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return fmt.Errorf("delete finished booking confirmation: %w", err)
		}
		logger.Info("Enqueuer:Requeue:Replaced", "booking_id", bookingID, "previous_state", info.State.String())
	default:
		logger.Debug("Enqueuer:Requeue:AlreadyQueued", "booking_id", bookingID, "state", info.State.String())
		return nil
	}

	if err := e.enqueue(ctx, bookingID); err != nil && !alreadyQueued(err) {
		return fmt.Errorf("enqueue booking confirmation: %w", err)
	}
	return nil
}

// InlineNotifier dispatches in the caller's goroutine. Used when the worker is disabled.
type InlineNotifier struct {
	dispatcher service.Dispatcher
}

func NewInlineNotifier(dispatcher service.Dispatcher) *InlineNotifier {
	return &InlineNotifier{dispatcher: dispatcher}
}

func (n *InlineNotifier) BookingCommitted(ctx context.Context, bookingID uuid.UUID) error {
	if appErr := n.dispatcher.Dispatch(ctx, bookingID); appErr != nil {
		return appErr
	}
	return nil
}

type Handler struct {
	dispatcher service.Dispatcher
}

func NewHandler(dispatcher service.Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

func (h *Handler) HandleBookingConfirmation(ctx context.Context, t *asynq.Task) error {
	var payload BookingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode booking payload: %v: %w", err, asynq.SkipRetry)
	}

	appErr := h.dispatcher.Dispatch(ctx, payload.BookingID)
	if appErr == nil {
		return nil
	}
	switch appErr.Code {
	case appErrors.ErrNotFound, appErrors.ErrIntegrity:
		return fmt.Errorf("%v: %w", appErr, asynq.SkipRetry)
	default:
		return appErr
	}
}

type UndispatchedLister interface {
	ListUndispatched(ctx context.Context, createdBefore time.Time, limit int) ([]uuid.UUID, error)
}

// Sweeper re-enqueues committed bookings whose confirmations never ran, for
// example when the process stopped between commit and enqueue.
type Sweeper struct {
	bookings UndispatchedLister
	enqueuer *Enqueuer
	grace time.Duration
	limit int
	now   func() time.Time
}

func NewSweeper(bookings UndispatchedLister, enqueuer *Enqueuer, grace time.Duration) *Sweeper {
	return &Sweeper{
		bookings: bookings,
		enqueuer: enqueuer,
		grace:    grace,
		limit:    100,
		now:      time.Now,
	}
}

func (s *Sweeper) HandleSweep(ctx context.Context, _ *asynq.Task) error {
	ids, err := s.bookings.ListUndispatched(ctx, s.now().Add(-s.grace), s.limit)
	if err != nil {
		return fmt.Errorf("list undispatched bookings: %w", err)
	}
	for _, id := range ids {
		if err := s.enqueuer.Requeue(ctx, id); err != nil {
			logger.Warn("Sweeper:HandleSweep:Enqueue:Error", "error", err, "booking_id", id)
		}
	}
	if len(ids) > 0 {
		logger.Info("Sweeper:HandleSweep:Requeued", "count", len(ids))
	}
	return nil
}

func NewServeMux(handler *Handler, sweeper *Sweeper) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(constants.TaskBookingConfirmation, handler.HandleBookingConfirmation)
	if sweeper != nil {
		mux.HandleFunc(constants.TaskBookingSweep, sweeper.HandleSweep)
	}
	return mux
}
