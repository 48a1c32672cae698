package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/ledger"
)

// Nop never stores anything. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (ledger.Summary, bool) { return ledger.Summary{}, false }
func (Nop) Set(context.Context, uuid.UUID, string, ledger.Summary) {}
func (Nop) Invalidate(context.Context, uuid.UUID) {}
