package ports

import (
	"context"

	"github.com/mikey/smart-unsubscribe/internal/core"
)

// MessageSource defines the interface for dataset collaborators that
// supply message metadata to the engine
type MessageSource interface {
	// FetchMessages materializes the dataset for one analysis run
	FetchMessages(ctx context.Context) ([]core.MessageRecord, error)
}
