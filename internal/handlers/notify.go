package handlers

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/irisvest/backend/internal/models"
	"github.com/irisvest/backend/internal/repositories"
)

// notifier is the piece of fan-out shared by the content handlers: resolving
// the actor, resolving who owns a post, dropping the actor from the
// recipients.
type notifier struct {
	users         repositories.UserRepository
	companies     repositories.CompanyRepository
	notifications repositories.NotificationRepository
}

// postOwners resolves who should hear about activity on a post: the author,
// or every member when the post belongs to a company.
func (n notifier) postOwners(ctx context.Context, post *models.Post) []primitive.ObjectID {
	if !post.IsCompany {
		return []primitive.ObjectID{post.UserID}
	}
	company, err := n.companies.FindByID(ctx, post.UserID)
	if err != nil {
		log.Printf("resolve company %s members: %v", post.UserID.Hex(), err)
		return nil
	}
	return company.MemberIDs
}

// notify fans an event out, dropping the actor from the recipients. Fan-out
// failures are logged and never fail the request that triggered them.
func (n notifier) notify(ctx context.Context, actorID primitive.ObjectID, typ models.NotificationType, recipients []primitive.ObjectID, data models.NotificationData) {
	kept := recipients[:0:0]
	for _, id := range recipients {
		if id != actorID {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return
	}
	actor, err := n.users.FindByID(ctx, actorID)
	if err != nil {
		log.Printf("notification actor %s: %v", actorID.Hex(), err)
		return
	}
	if _, err := n.notifications.Create(ctx, actor, typ, kept, data); err != nil {
		log.Printf("notification %s from %s: %v", typ, actorID.Hex(), err)
	}
}

func parseObjectIDs(raw []string) ([]primitive.ObjectID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, len(raw))
	for i, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
