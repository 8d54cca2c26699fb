package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"reportdesk/backend/internal/audit/domain"
	auditrepo "reportdesk/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context (e.g. gRPC peer).
type IPExtractor func(context.Context) string

// Logger records security events to the audit repository and, when a log
// provider is configured, mirrors them as OTel log records. Record is
// best-effort: failures are logged and do not affect the caller.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	otel        otellog.Logger
}

// NewLogger returns a Logger that persists to repo. ipExtractor may be nil;
// then IP is recorded as "unknown". provider may be nil to disable the OTel
// mirror.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, provider *sdklog.LoggerProvider) *Logger {
	l := &Logger{repo: repo, ipExtractor: ipExtractor}
	if provider != nil {
		l.otel = provider.Logger("reportdesk.audit")
	}
	return l
}

// Record writes one audit entry. Best-effort: errors are logged and not
// returned.
func (l *Logger) Record(ctx context.Context, accountID, action, detail string) {
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Action:    action,
		Detail:    detail,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}
	if l.repo != nil {
		if err := l.repo.Create(ctx, entry); err != nil {
			log.Printf("audit: failed to record %s for %s: %v", action, accountID, err)
		}
	}
	l.emit(ctx, entry)
}

func (l *Logger) emit(ctx context.Context, entry *domain.AuditLog) {
	if l.otel == nil {
		return
	}
	rec := otellog.Record{}
	rec.SetTimestamp(entry.CreatedAt)
	rec.SetBody(otellog.StringValue(entry.Action))
	if entry.AccountID != "" {
		rec.AddAttributes(otellog.String("account_id", entry.AccountID))
	}
	if entry.Detail != "" {
		rec.AddAttributes(otellog.String("detail", entry.Detail))
	}
	if entry.IP != "" {
		rec.AddAttributes(otellog.String("ip", entry.IP))
	}
	l.otel.Emit(ctx, rec)
}
