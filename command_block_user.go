package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type BlockUserMessage struct {
	TargetID   string `json:"targetId"`
	Actor      ActorRef
	OnResponse func(resp *BlockUserResponse)
}

func (e BlockUserMessage) Type() string { return "user.block" }

type BlockUserResponse struct {
	User *User
}

type BlockUserHandler struct {
	repo RepositoryManager
}

func NewBlockUserHandler(repo RepositoryManager) *BlockUserHandler {
	return &BlockUserHandler{repo: repo}
}

func (h *BlockUserHandler) Execute(ctx context.Context, event BlockUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user block",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *BlockUserHandler) execute(ctx context.Context, event BlockUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	id, err := uuid.Parse(event.TargetID)
	if err != nil {
		return ErrUserNotFound
	}

	user, err := h.repo.Users().GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user for block")
	}

	// Blocking an already blocked user is a silent success, the state
	// machine treats same-status transitions as no-ops.
	user, err = h.repo.Users().Block(ctx, event.Actor, user, WithTransitionReason("blocked via API"))
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to block user")
	}

	if event.OnResponse != nil {
		event.OnResponse(&BlockUserResponse{User: user})
	}

	return nil
}
