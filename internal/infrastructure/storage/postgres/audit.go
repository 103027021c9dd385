package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/partheepan17/POSGrocery-sub002/internal/core/id"
	"github.com/partheepan17/POSGrocery-sub002/internal/core/reqctx"
	"github.com/partheepan17/POSGrocery-sub002/internal/domain/returns"
)

// AuditAction represents the type of audited operation.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditEntry represents a single audit log entry. The full committed
// payload is stored so a dispute can be settled from the audit row alone.
type AuditEntry struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          string          `db:"entity_id"`
	Action            AuditAction     `db:"action"`
	UserID            string          `db:"user_id"`
	Terminal          string          `db:"terminal"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService records committed returns in the audit log.
// Implements returns.Auditor; writes happen inside the commit transaction
// so the audit row rolls back with everything else.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	compressThreshold int // bytes
}

// Compile-time check that AuditService implements returns.Auditor.
var _ returns.Auditor = (*AuditService)(nil)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// ReturnCommitted records a committed return.
func (s *AuditService) ReturnCommitted(ctx context.Context, r *returns.Return) error {
	changes, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal return: %w", err)
	}

	entry := AuditEntry{
		ID:         id.New(),
		EntityType: "return",
		EntityID:   returns.ReceiptID(r.ID),
		Action:     AuditActionCreate,
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}

	if req := reqctx.Get(ctx); req != nil {
		entry.UserID = req.UserID
		entry.Terminal = req.Terminal
	}

	// Compress large payloads
	entry.CompressionAlgo = CompressionNone
	if len(entry.Changes) > s.compressThreshold {
		entry.ChangesCompressed = s.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO audit_log (
			id, entity_type, entity_id, action, user_id, terminal,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action,
		entry.UserID, entry.Terminal,
		entry.Changes, entry.ChangesCompressed, entry.CompressionAlgo,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
