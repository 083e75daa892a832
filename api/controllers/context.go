package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/nazmulhossain/shopdesk-backend/api/middleware"
	"github.com/nazmulhossain/shopdesk-backend/pkg/outbox"
)

func actorFromContext(ctx context.Context) *outbox.ActorRef {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: middleware.RoleFromContext(ctx)}
}

func actorIDFromContext(ctx context.Context) *uuid.UUID {
	actor := actorFromContext(ctx)
	if actor == nil {
		return nil
	}
	id := actor.UserID
	return &id
}

// brandAllowed reports whether the caller's token grants access to the brand.
// Tokens without a brand list are unrestricted.
func brandAllowed(ctx context.Context, brand string) bool {
	allowed := middleware.BrandsFromContext(ctx)
	if len(allowed) == 0 {
		return true
	}
	for _, b := range allowed {
		if b == brand {
			return true
		}
	}
	return false
}
