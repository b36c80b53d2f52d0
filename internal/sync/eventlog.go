package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types appended by the attempt store. The log is an audit trail for
// score disputes ("when was module 3 submitted, with what result").
const (
	TypeModuleSubmitted  = "ModuleSubmitted"
	TypeAttemptFinalized = "AttemptFinalized"
)

type Event struct {
	Seq       int64
	Type      string
	Key       string // natural key: attempt ID
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Append writes one event. Best-effort from the caller's point of view:
// attempt persistence must not fail because the audit row did.
func (r *EventRepo) Append(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}
