package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/photoqc/photoqc-go/pkg/models"
)

const reportsBucket = "qc_reports"

// BoltHistory implements HistoryRepository on a bbolt file.
type BoltHistory struct {
	db *bbolt.DB
}

// NewBoltHistory opens (or creates) the history database at path.
func NewBoltHistory(path string) (*BoltHistory, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(reportsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating reports bucket: %w", err)
	}

	return &BoltHistory{db: db}, nil
}

// SaveReport stores a report, assigning a fresh UUID when it has none.
func (b *BoltHistory) SaveReport(report *models.QCReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(reportsBucket))
		data, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		return bucket.Put([]byte(report.ID), data)
	})
}

// GetReport retrieves a report by ID.
func (b *BoltHistory) GetReport(id string) (*models.QCReport, error) {
	var report *models.QCReport
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(reportsBucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		report = &models.QCReport{}
		return json.Unmarshal(data, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns every stored report, oldest first.
func (b *BoltHistory) ListReports() ([]*models.QCReport, error) {
	return b.list(func(*models.QCReport) bool { return true })
}

// ListReportsByDirectory returns the reports for one QC directory,
// oldest first.
func (b *BoltHistory) ListReportsByDirectory(directory string) ([]*models.QCReport, error) {
	return b.list(func(r *models.QCReport) bool { return r.Directory == directory })
}

func (b *BoltHistory) list(keep func(*models.QCReport) bool) ([]*models.QCReport, error) {
	var reports []*models.QCReport
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(reportsBucket)).ForEach(func(_, data []byte) error {
			report := &models.QCReport{}
			if err := json.Unmarshal(data, report); err != nil {
				return fmt.Errorf("unmarshaling report: %w", err)
			}
			if keep(report) {
				reports = append(reports, report)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.Before(reports[j].Timestamp)
	})
	return reports, nil
}

// Close closes the underlying database file.
func (b *BoltHistory) Close() error {
	return b.db.Close()
}
