package service

import (
	"context"
	"time"

	"go-writer-app/internal/data"
)

// recordWindowDays bounds the productivity view to the recent past.
const recordWindowDays = 90

// RecordService manages writing-productivity log entries.
type RecordService struct {
	records *data.RecordRepository
}

// NewRecordService creates a RecordService.
func NewRecordService(records *data.RecordRepository) *RecordService {
	return &RecordService{records: records}
}

// CreateRecord logs a writing session for a user. A zero RecDate is
// filled with the current time.
func (s *RecordService) CreateRecord(ctx context.Context, rec *data.Record) (*data.Record, error) {
	fields := map[string]string{}
	if rec.UserID == 0 {
		fields["UserID"] = "failed 'required' validation"
	}
	if rec.Words < 0 {
		fields["Words"] = "failed 'min' validation"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if rec.RecDate.IsZero() {
		rec.RecDate = time.Now().UTC()
	}
	if err := s.records.CreateRecord(ctx, rec); err != nil {
		return nil, &StorageError{Op: "create record", Err: err}
	}
	return rec, nil
}

// RecentRecords returns a user's log entries from the last ninety days,
// most recent first.
func (s *RecordService) RecentRecords(ctx context.Context, userID int64) ([]*data.Record, error) {
	since := time.Now().UTC().AddDate(0, 0, -recordWindowDays)
	return s.records.RecordsForUser(ctx, userID, since)
}

// TotalWords sums the word counts of a slice of records.
func TotalWords(recs []*data.Record) int {
	total := 0
	for _, rec := range recs {
		total += rec.Words
	}
	return total
}
