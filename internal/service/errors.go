package service

import (
	"errors"

	"github.com/sakif/phrasebook/internal/apperror"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
