package service

import (
	"context"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/port"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

// recordAudit queues an audit entry for the caller's action. Audit writes
// are best-effort and never block or fail the triggering operation, so the
// entry is captured now and written on the task runner.
func recordAudit(tasks port.TaskRunner, store *scoped.Store, ctx context.Context, action, entity, entityID, detail string) {
	orgID := tenantctx.OrganizationID(ctx)
	if orgID == 0 {
		return
	}
	entry := &domain.AuditEntry{
		UserID:   tenantctx.UserID(ctx),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	tasks.Submit("audit_append", func(taskCtx context.Context) error {
		return store.WithoutScope().AppendAudit(taskCtx, orgID, entry)
	})
}
