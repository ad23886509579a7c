package rsvp

import (
	"context"

	"github.com/sharath018/invitation-rsvp-backend/internal/changefeed"
	"go.uber.org/zap"
)

// Store writes responses and announces each committed change on the change
// feed. A failed publish is logged; the write still stands.
type Store struct {
	repo Repository
	pub  changefeed.Publisher
	log  *zap.Logger
}

func NewStore(repo Repository, pub changefeed.Publisher, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{repo: repo, pub: pub, log: log}
}

func (s *Store) CreateResponse(ctx context.Context, r *Response) error {
	if err := s.repo.Create(ctx, r); err != nil {
		return err
	}
	s.publish(ctx, changefeed.OpInsert, r.InvitationID, r.ID, r)
	return nil
}

func (s *Store) UpdateResponse(ctx context.Context, r *Response) error {
	if err := s.repo.Update(ctx, r); err != nil {
		return err
	}
	s.publish(ctx, changefeed.OpUpdate, r.InvitationID, r.ID, r)
	return nil
}

func (s *Store) DeleteResponse(ctx context.Context, invitationID, id string) error {
	if err := s.repo.Delete(ctx, invitationID, id); err != nil {
		return err
	}
	s.publish(ctx, changefeed.OpDelete, invitationID, id, nil)
	return nil
}

func (s *Store) GetResponse(ctx context.Context, invitationID, id string) (*Response, error) {
	return s.repo.GetByID(ctx, invitationID, id)
}

// ListResponses returns all responses of an invitation in arrival order
func (s *Store) ListResponses(ctx context.Context, invitationID string) ([]Response, error) {
	return s.repo.ListByInvitation(ctx, invitationID)
}

func (s *Store) publish(ctx context.Context, op changefeed.Op, invitationID, id string, record any) {
	if s.pub == nil {
		return
	}
	ev, err := changefeed.NewEvent(op, changefeed.CollectionResponses, invitationID, id, record)
	if err == nil {
		err = s.pub.Publish(ctx, ev)
	}
	if err != nil {
		s.log.Warn("change event not published",
			zap.String("op", string(op)),
			zap.String("invitation_id", invitationID),
			zap.String("response_id", id),
			zap.Error(err))
	}
}
