package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

const auditCollection = "security_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

type auditDoc struct {
	Type       string            `bson:"type"`
	IdentityID string            `bson:"identity_id,omitempty"`
	Email      string            `bson:"email,omitempty"`
	OccurredAt time.Time         `bson:"occurred_at"`
	Metadata   map[string]string `bson:"metadata,omitempty"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

// EnsureIndexes creates the per-identity timeline index.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identity_id", Value: 1}, {Key: "occurred_at", Value: -1}},
		Options: options.Index().SetName("identity_timeline"),
	})
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

// InsertEvent persists one event. Secrets are never part of the document.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	doc := auditDoc{
		Type:       string(event.Type),
		IdentityID: event.IdentityID,
		Email:      event.Email,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByIdentity(ctx context.Context, identityID string, limit int) ([]domain.AuthEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"identity_id": identityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	out := make([]domain.AuthEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.AuthEvent{
			Type:       domain.AuthEventType(d.Type),
			IdentityID: d.IdentityID,
			Email:      d.Email,
			OccurredAt: d.OccurredAt,
			Metadata:   d.Metadata,
		})
	}
	return out, nil
}
