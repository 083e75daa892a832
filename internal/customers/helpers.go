package customers

import (
	"github.com/google/uuid"

	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

func parseID(raw string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer id")
	}
	return parsed, nil
}
