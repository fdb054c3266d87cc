package repository

import (
	"context"

	"github.com/trackops/riskregistry/internal/domain/models"
)

// ControlRepository persists the control library and the risk/control pairings.
type ControlRepository interface {
	// CreateEntry inserts a control library entry.
	CreateEntry(ctx context.Context, entry *models.ControlLibrary) error

	// UpdateEntry persists changes to a library entry.
	UpdateEntry(ctx context.Context, entry *models.ControlLibrary) error

	// DeleteEntry removes a library entry. Callers must check references first.
	DeleteEntry(ctx context.Context, id string) error

	// FindEntryByID retrieves a library entry.
	FindEntryByID(ctx context.Context, id string) (*models.ControlLibrary, error)

	// ListEntries returns all library entries ordered by code.
	ListEntries(ctx context.Context) ([]models.ControlLibrary, error)

	// EntryCodeExists reports whether a library entry already uses the code.
	EntryCodeExists(ctx context.Context, code string) (bool, error)

	// CountAttachmentsByControl returns how many pairings reference the entry.
	CountAttachmentsByControl(ctx context.Context, controlID string) (int64, error)

	// AttachmentExists reports whether the control is already attached to the risk.
	AttachmentExists(ctx context.Context, riskID string, controlID string) (bool, error)

	// CreateAttachment inserts a risk/control pairing.
	CreateAttachment(ctx context.Context, attachment *models.RiskControl) error

	// UpdateAttachment persists changes to a pairing.
	UpdateAttachment(ctx context.Context, attachment *models.RiskControl) error

	// DeleteAttachment removes a pairing.
	DeleteAttachment(ctx context.Context, id string) error

	// DeleteAttachmentsByRisk removes every pairing of a risk; used when the
	// risk itself is deleted.
	DeleteAttachmentsByRisk(ctx context.Context, riskID string) error

	// FindAttachmentByID retrieves a pairing.
	FindAttachmentByID(ctx context.Context, id string) (*models.RiskControl, error)

	// ListAttachmentsByRisk returns all pairings of a risk; the scoring engine
	// averages their recorded effectiveness scores.
	ListAttachmentsByRisk(ctx context.Context, riskID string) ([]models.RiskControl, error)
}
