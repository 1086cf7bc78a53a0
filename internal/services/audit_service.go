package services

import (
	"context"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
)

type AuditService struct {
	trail *audit.Trail
}

func NewAuditService(trail *audit.Trail) *AuditService {
	return &AuditService{trail: trail}
}

// ListAuditLogs is the admin history view; filter by target for one entity.
func (s *AuditService) ListAuditLogs(ctx context.Context, limit int, f audit.Filter) ([]docs.AuditLogEntry, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	entries, err := s.trail.List(ctx, limit, f)
	if err != nil {
		return nil, apperr.Store("list audit logs", err)
	}
	return entries, nil
}
