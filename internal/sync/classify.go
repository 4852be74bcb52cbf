package sync

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pablopelardas/dulceysalado-sync/internal/entities"
)

// ClassifyError maps a raw failure into the error taxonomy recorded on the
// session. The classification is advisory, for operator dashboards; it is
// never used to alter control flow. The function is pure: the same error
// always yields the same kind.
func ClassifyError(err error) entities.ErrorKind {
	if err == nil {
		return entities.ErrorKindUnknown
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entities.ErrorKindDuplicate
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate"):
		return entities.ErrorKindDuplicate
	case strings.Contains(msg, "foreign") || strings.Contains(msg, "constraint"):
		return entities.ErrorKindConstraint
	case strings.Contains(msg, "validation"):
		return entities.ErrorKindValidation
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return entities.ErrorKindTimeout
	default:
		return entities.ErrorKindUnknown
	}
}
