package journal

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/citynh/desktop/internal/bootstrap"
)

// LaunchRecord is one bootstrap attempt as stored. Timestamps are Unix
// milliseconds, zero when unset.
type LaunchRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	StartedAt  int64  `gorm:"index"`
	FinishedAt int64
	ReadyAt    int64
	Executable string `gorm:"size:1024"`
	ScriptPath string `gorm:"size:1024"`
	Fallback   bool
	LogPath    string `gorm:"size:1024"`
	PID        int
	Outcome    string `gorm:"size:32;index"`
	Error      LongText
}

func (LaunchRecord) TableName() string { return "launch_records" }

// Launch is the read model handed to the frontend.
type Launch struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	ReadyAt    time.Time `json:"readyAt"`
	ScriptPath string    `json:"scriptPath"`
	Fallback   bool      `json:"fallback"`
	LogPath    string    `json:"logPath"`
	PID        int       `json:"pid"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
}

func (r *LaunchRecord) toLaunch() Launch {
	return Launch{
		ID:         r.ID,
		StartedAt:  fromTimestamp(r.StartedAt),
		FinishedAt: fromTimestamp(r.FinishedAt),
		ReadyAt:    fromTimestamp(r.ReadyAt),
		ScriptPath: r.ScriptPath,
		Fallback:   r.Fallback,
		LogPath:    r.LogPath,
		PID:        r.PID,
		Outcome:    r.Outcome,
		Error:      r.Error.String(),
	}
}

func recordFromResult(res bootstrap.Result) *LaunchRecord {
	rec := &LaunchRecord{
		ID:         res.ID,
		StartedAt:  toTimestamp(res.StartedAt),
		FinishedAt: toTimestamp(res.FinishedAt),
		Executable: res.Executable,
		ScriptPath: res.ScriptPath,
		Fallback:   res.Fallback,
		LogPath:    res.LogPath,
		PID:        res.PID,
		Outcome:    string(res.Outcome),
	}
	if res.Err != nil {
		rec.Error = LongText(res.Err.Error())
	}
	return rec
}

// Record implements bootstrap.Recorder. Failures are logged and dropped.
func (d *DB) Record(res bootstrap.Result) {
	if err := d.Insert(res); err != nil {
		log.Printf("[Journal] Failed to record launch %s: %v", res.ID, err)
	}
}

// Insert stores res. Results without an ID (duplicate attempts) are skipped.
func (d *DB) Insert(res bootstrap.Result) error {
	if res.ID == "" {
		return nil
	}
	if err := d.gorm.Create(recordFromResult(res)).Error; err != nil {
		return fmt.Errorf("insert launch: %w", err)
	}
	return nil
}

// MarkReady stamps the time the backend first answered its health check.
// Only the first call for a launch has an effect.
func (d *DB) MarkReady(id string, at time.Time) error {
	tx := d.gorm.Model(&LaunchRecord{}).
		Where("id = ? AND ready_at = 0", id).
		Update("ready_at", toTimestamp(at))
	if tx.Error != nil {
		return fmt.Errorf("mark launch %s ready: %w", id, tx.Error)
	}
	return nil
}

// Get returns a single launch.
func (d *DB) Get(id string) (Launch, error) {
	var rec LaunchRecord
	if err := d.gorm.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Launch{}, fmt.Errorf("launch %s: %w", id, ErrNotFound)
		}
		return Launch{}, fmt.Errorf("get launch %s: %w", id, err)
	}
	return rec.toLaunch(), nil
}

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("not found")

// Recent returns up to limit launches, newest first.
func (d *DB) Recent(limit int) ([]Launch, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []LaunchRecord
	if err := d.gorm.Order("started_at DESC, id DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list launches: %w", err)
	}
	launches := make([]Launch, 0, len(recs))
	for i := range recs {
		launches = append(launches, recs[i].toLaunch())
	}
	return launches, nil
}

// Prune deletes everything but the newest keep launches and returns how
// many rows went away.
func (d *DB) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	var stale []string
	err := d.gorm.Model(&LaunchRecord{}).
		Order("started_at DESC, id DESC").
		Limit(1 << 30).
		Offset(keep).
		Pluck("id", &stale).Error
	if err != nil {
		return 0, fmt.Errorf("find stale launches: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx := d.gorm.Where("id IN ?", stale).Delete(&LaunchRecord{})
	if tx.Error != nil {
		return 0, fmt.Errorf("delete stale launches: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}
