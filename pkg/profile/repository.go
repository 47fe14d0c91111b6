package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("trial profile not found")

const insertBatchSize = 200

// Record is the persisted form of an Entry. Trial and profile are stored as
// JSON documents; the row exists only to survive restarts.
type Record struct {
	TrialID string         `gorm:"primaryKey;size:32"`
	Status  string         `gorm:"size:48;index"`
	Phase   string         `gorm:"size:48"`
	Trial   datatypes.JSON `gorm:"type:jsonb"`
	Profile datatypes.JSON `gorm:"type:jsonb"`
	BuiltAt time.Time      `gorm:"index"`
}

func (Record) TableName() string {
	return "trial_profiles"
}

func toRecord(e Entry, builtAt time.Time) (Record, error) {
	trial, err := json.Marshal(e.Trial)
	if err != nil {
		return Record{}, fmt.Errorf("encode trial %s: %w", e.Profile.TrialID, err)
	}
	profile, err := json.Marshal(e.Profile)
	if err != nil {
		return Record{}, fmt.Errorf("encode profile %s: %w", e.Profile.TrialID, err)
	}
	return Record{
		TrialID: e.Profile.TrialID,
		Status:  e.Trial.Status,
		Phase:   e.Trial.Phase,
		Trial:   datatypes.JSON(trial),
		Profile: datatypes.JSON(profile),
		BuiltAt: builtAt,
	}, nil
}

func (r Record) entry() (Entry, error) {
	var e Entry
	if err := json.Unmarshal(r.Trial, &e.Trial); err != nil {
		return Entry{}, fmt.Errorf("decode trial %s: %w", r.TrialID, err)
	}
	if err := json.Unmarshal(r.Profile, &e.Profile); err != nil {
		return Entry{}, fmt.Errorf("decode profile %s: %w", r.TrialID, err)
	}
	return e, nil
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Record{})
}

// ReplaceAll swaps the stored profile set for the catalog in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, catalog *Catalog) error {
	builtAt := time.Now().UTC()
	records := make([]Record, 0, catalog.Len())
	for _, e := range catalog.Entries() {
		rec, err := toRecord(e, builtAt)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
}

// Load reads every stored profile back into a catalog.
func (r *Repository) Load(ctx context.Context) (*Catalog, error) {
	var records []Record
	if err := r.db.WithContext(ctx).Order("trial_id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		e, err := rec.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return NewCatalog(entries), nil
}

func (r *Repository) Get(ctx context.Context, trialID string) (Entry, error) {
	var rec Record
	result := r.db.WithContext(ctx).Where("trial_id = ?", trialID).First(&rec)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return Entry{}, ErrNotFound
	}
	if result.Error != nil {
		return Entry{}, result.Error
	}
	return rec.entry()
}
