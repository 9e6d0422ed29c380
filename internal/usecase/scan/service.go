package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stocktake-scan-service/internal/barcode"
	"stocktake-scan-service/internal/broadcast"
	domainCatalog "stocktake-scan-service/internal/domain/catalog"
	domainScan "stocktake-scan-service/internal/domain/scan"
	domainSession "stocktake-scan-service/internal/domain/session"
	"stocktake-scan-service/internal/logger"
	appErrors "stocktake-scan-service/pkg/errors"
	"stocktake-scan-service/pkg/utils"
)

// Service implements scan ingestion use cases
type Service struct {
	scanRepo    domainScan.Repository
	sessionRepo domainSession.Repository
	catalogRepo domainCatalog.Repository
	broadcaster broadcast.Broadcaster
}

// NewService creates a new scan ingestion service
func NewService(
	scanRepo domainScan.Repository,
	sessionRepo domainSession.Repository,
	catalogRepo domainCatalog.Repository,
	broadcaster broadcast.Broadcaster,
) *Service {
	return &Service{
		scanRepo:    scanRepo,
		sessionRepo: sessionRepo,
		catalogRepo: catalogRepo,
		broadcaster: broadcaster,
	}
}

// Submit validates, classifies, resolves and persists one scan, then
// hands the persisted event to the broadcaster. Exactly one event row is
// written per accepted call: resolution failures are recorded with status
// error rather than rejecting the request, so the audit trail keeps every
// raw read attempt.
func (s *Service) Submit(ctx context.Context, req *SubmitScanRequest, userID uuid.UUID) (*SubmitResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid scan payload", err)
	}

	sess, err := s.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		// In-flight scans against a session that just ended are let
		// through by the client; new ones land here and are rejected.
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Session has ended; start a new session to continue scanning", domainScan.ErrSessionEnded)
	}

	event := &domainScan.Event{
		SessionID: sess.ID,
		Barcode:   barcode.Normalize(req.Barcode),
		Kind:      barcode.Classify(req.Barcode),
		ScannedAt: time.Now(),
		UserID:    userID,
		DeviceID:  req.DeviceID,
	}

	s.resolve(ctx, event)

	if err := s.scanRepo.Create(ctx, event); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to persist scan", err)
	}

	// Fan out only after the row is committed. Broadcast is best-effort:
	// a delivery failure never rolls back or fails the request.
	s.broadcaster.Broadcast(broadcast.FromEvent(event))

	logger.Info("Scan recorded",
		zap.String("scan_id", event.ID.String()),
		zap.String("session_id", sess.ID.String()),
		zap.String("barcode", event.Barcode),
		zap.String("kind", string(event.Kind)),
		zap.String("status", string(event.Status)),
		zap.String("event", "scan_recorded"),
	)

	return &SubmitResult{
		ScanID:       event.ID,
		Status:       string(event.Status),
		Kind:         string(event.Kind),
		ResolvedName: event.ResolvedName,
		Message:      resultMessage(event),
	}, nil
}

// resolveSession locates the session the scan belongs to, preferring the
// explicit session id and falling back to the device's active session.
func (s *Service) resolveSession(ctx context.Context, req *SubmitScanRequest) (*domainSession.Session, error) {
	if req.SessionID != nil {
		sess, err := s.sessionRepo.GetByID(ctx, *req.SessionID)
		if errors.Is(err, domainSession.ErrSessionNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Session not found", err)
		}
		if err != nil {
			return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to load session", err)
		}
		return sess, nil
	}

	sess, err := s.sessionRepo.GetActiveByDevice(ctx, req.DeviceID)
	switch {
	case err == nil, errors.Is(err, domainSession.ErrInvariantBroken):
		return sess, nil
	case errors.Is(err, domainSession.ErrSessionNotFound):
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "No active session for device", domainScan.ErrNoSession)
	default:
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to query active session", err)
	}
}

// resolve looks the classified code up in the reference catalog and fills
// in the event's resolution fields. Lookup failures mark the event as an
// error but never abort ingestion.
func (s *Service) resolve(ctx context.Context, event *domainScan.Event) {
	switch event.Kind {
	case domainScan.KindMaterial:
		material, err := s.catalogRepo.GetMaterialByCode(ctx, event.Barcode)
		if errors.Is(err, domainCatalog.ErrMaterialNotFound) {
			s.markUnresolved(event, fmt.Sprintf("No material matches code %s", event.Barcode))
			return
		}
		if err != nil {
			s.markUnresolved(event, "Material lookup failed")
			logger.Error("Material lookup failed",
				zap.Error(err),
				zap.String("barcode", event.Barcode),
			)
			return
		}
		event.MaterialID = &material.ID
		event.ResolvedName = &material.Name
		event.Status = domainScan.StatusSuccess

	case domainScan.KindSupplier:
		supplier, err := s.catalogRepo.GetSupplierByCode(ctx, event.Barcode)
		if errors.Is(err, domainCatalog.ErrSupplierNotFound) {
			s.markUnresolved(event, fmt.Sprintf("No supplier matches code %s", event.Barcode))
			return
		}
		if err != nil {
			s.markUnresolved(event, "Supplier lookup failed")
			logger.Error("Supplier lookup failed",
				zap.Error(err),
				zap.String("barcode", event.Barcode),
			)
			return
		}
		event.SupplierID = &supplier.ID
		event.ResolvedName = &supplier.Name
		event.Status = domainScan.StatusSuccess

	default:
		s.markUnresolved(event, fmt.Sprintf("Unrecognized barcode format: %q", event.Barcode))
	}
}

func (s *Service) markUnresolved(event *domainScan.Event, message string) {
	event.Status = domainScan.StatusError
	event.ErrorMessage = &message
}

func resultMessage(event *domainScan.Event) string {
	if event.Status == domainScan.StatusSuccess && event.ResolvedName != nil {
		return fmt.Sprintf("Scanned %s", *event.ResolvedName)
	}
	if event.ErrorMessage != nil {
		return *event.ErrorMessage
	}
	return "Scan recorded"
}

// Recent returns the newest persisted scans for dashboards backfilling
// history before they attach to the live stream.
func (s *Service) Recent(ctx context.Context, limit int) ([]ScanEventResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	events, err := s.scanRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to list recent scans", err)
	}

	return toResponses(events), nil
}

// ListBySession returns every scan recorded against a session, oldest first.
func (s *Service) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]ScanEventResponse, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, domainSession.ErrSessionNotFound) {
			return nil, appErrors.NewAppError(appErrors.CodeNotFound, "Session not found", err)
		}
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to load session", err)
	}

	events, err := s.scanRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeServer, "Failed to list session scans", err)
	}

	return toResponses(events), nil
}

func toResponses(events []*domainScan.Event) []ScanEventResponse {
	responses := make([]ScanEventResponse, len(events))
	for i, e := range events {
		responses[i] = *ToScanEventResponse(e)
	}
	return responses
}
