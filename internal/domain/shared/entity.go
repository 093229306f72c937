package shared

import "time"

// BaseEntity carries the storage key and timestamps. ID stays zero until
// the first insert.
type BaseEntity struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps both timestamps with the current time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{CreatedAt: now, UpdatedAt: now}
}

// IsPersisted reports whether storage has assigned the key
func (e *BaseEntity) IsPersisted() bool {
	return e.ID > 0
}
