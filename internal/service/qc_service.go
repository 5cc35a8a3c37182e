package service

import (
	"context"
	"errors"
	"time"

	"github.com/photoqc/photoqc-go/internal/analyzer"
	apperrors "github.com/photoqc/photoqc-go/internal/errors"
	"github.com/photoqc/photoqc-go/internal/locator"
	"github.com/photoqc/photoqc-go/internal/observer"
	"github.com/photoqc/photoqc-go/internal/repository"
	"github.com/photoqc/photoqc-go/internal/storage"
	"github.com/photoqc/photoqc-go/pkg/models"
)

// QCService runs quality control passes over QC folders and remote
// images and records the resulting reports.
type QCService interface {
	// RunQC analyzes the representative image of one QC directory with
	// the default profile.
	RunQC(ctx context.Context, directory string) (*models.QCReport, error)

	// RunQCWithOptions analyzes one QC directory with a configured
	// profile.
	RunQCWithOptions(ctx context.Context, directory string, options analyzer.AnalysisOptions) (*models.QCReport, error)

	// RunBatch analyzes several QC directories concurrently. Results
	// come back in input order; per-directory failures do not abort the
	// batch.
	RunBatch(ctx context.Context, directories []string, options analyzer.AnalysisOptions) []BatchResult

	// AnalyzeRemote fetches an image over HTTP and analyzes it without
	// touching the local QC folders or history.
	AnalyzeRemote(ctx context.Context, imageURL string, options analyzer.AnalysisOptions) (*models.AnalysisResult, error)

	// GetReport retrieves a stored report by ID.
	GetReport(id string) (*models.QCReport, error)

	// History lists the stored reports for a directory, or every report
	// when directory is empty.
	History(directory string) ([]*models.QCReport, error)

	// Close releases the batch worker pool.
	Close() error
}

// BatchResult pairs one batch directory with its outcome.
type BatchResult struct {
	Directory string           `json:"directory"`
	Report    *models.QCReport `json:"report,omitempty"`
	Err       error            `json:"-"`
	Error     string           `json:"error,omitempty"`
}

// qcService implements QCService.
type qcService struct {
	analyzer  analyzer.ImageAnalyzer
	history   repository.HistoryRepository
	fetcher   storage.ImageFetcher
	publisher observer.Subject
	pool      *analyzer.WorkerPool
	priority  []locator.Format
}

// NewQCService creates a QC service. The history repository and fetcher
// may be nil, disabling persistence and remote analysis respectively.
func NewQCService(
	imageAnalyzer analyzer.ImageAnalyzer,
	history repository.HistoryRepository,
	fetcher storage.ImageFetcher,
	publisher observer.Subject,
	priority []locator.Format,
) QCService {
	pool := analyzer.NewWorkerPool(0)
	pool.Start()

	if publisher == nil {
		publisher = observer.NewEventPublisher()
	}

	return &qcService{
		analyzer:  imageAnalyzer,
		history:   history,
		fetcher:   fetcher,
		publisher: publisher,
		pool:      pool,
		priority:  priority,
	}
}

// RunQC analyzes one QC directory with the default profile.
func (s *qcService) RunQC(ctx context.Context, directory string) (*models.QCReport, error) {
	return s.RunQCWithOptions(ctx, directory, analyzer.DefaultOptions())
}

// RunQCWithOptions locates the representative image, analyzes it and
// persists the report.
func (s *qcService) RunQCWithOptions(ctx context.Context, directory string, options analyzer.AnalysisOptions) (*models.QCReport, error) {
	start := time.Now()
	s.notify(ctx, observer.QCEvent{
		EventType: observer.QCStarted,
		Timestamp: start,
		Directory: directory,
	})

	imageRepo := repository.NewLocalImageRepository(directory, s.priority)

	img, path, err := imageRepo.LoadImage()
	if err != nil {
		mapped := s.mapLocatorError(directory, err)
		s.notifyFailure(ctx, directory, path, mapped)
		return nil, mapped
	}
	s.notify(ctx, observer.QCEvent{
		EventType: observer.ImageLocated,
		Timestamp: time.Now(),
		Directory: directory,
		ImagePath: path,
		Success:   true,
	})

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("QC run cancelled", err)
	}

	result := s.analyzer.AnalyzeWithOptions(img, options)

	report := &models.QCReport{
		Directory:      directory,
		ImagePath:      path,
		AnalysisResult: result,
	}
	if meta, err := imageRepo.GetImageMetadata(path); err == nil {
		report.Metadata = meta
	}

	if s.history != nil {
		if err := s.history.SaveReport(report); err != nil {
			return nil, apperrors.NewStorageError("failed to save QC report", err)
		}
		s.notify(ctx, observer.QCEvent{
			EventType: observer.ReportSaved,
			Timestamp: time.Now(),
			Directory: directory,
			ImagePath: path,
			Success:   true,
			Metadata:  map[string]interface{}{"report_id": report.ID},
		})
	}

	s.notify(ctx, observer.QCEvent{
		EventType:      observer.QCCompleted,
		Timestamp:      time.Now(),
		Directory:      directory,
		ImagePath:      path,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"is_valid": result.Quality.IsValid},
	})
	return report, nil
}

// RunBatch fans the directories out over the worker pool.
func (s *qcService) RunBatch(ctx context.Context, directories []string, options analyzer.AnalysisOptions) []BatchResult {
	results := make([]BatchResult, len(directories))

	for i, directory := range directories {
		i, directory := i, directory
		s.pool.Submit(func() {
			report, err := s.RunQCWithOptions(ctx, directory, options)
			results[i] = BatchResult{Directory: directory, Report: report, Err: err}
			if err != nil {
				results[i].Error = err.Error()
			}
		})
	}
	s.pool.Wait()

	return results
}

// AnalyzeRemote fetches and analyzes an image by URL.
func (s *qcService) AnalyzeRemote(ctx context.Context, imageURL string, options analyzer.AnalysisOptions) (*models.AnalysisResult, error) {
	if s.fetcher == nil {
		return nil, apperrors.NewInternalError("remote analysis is not configured", nil)
	}
	if imageURL == "" {
		return nil, apperrors.NewValidationError("image URL must not be empty", nil)
	}

	img, err := s.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image fetch timed out", err)
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}

	result := s.analyzer.AnalyzeWithOptions(img, options)
	return &result, nil
}

// GetReport retrieves a stored report by ID.
func (s *qcService) GetReport(id string) (*models.QCReport, error) {
	if s.history == nil {
		return nil, apperrors.NewInternalError("history is not configured", nil)
	}
	report, err := s.history.GetReport(id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperrors.NewNotFoundError("report not found", err)
		}
		return nil, apperrors.NewStorageError("failed to load report", err)
	}
	return report, nil
}

// History lists stored reports, optionally filtered by directory.
func (s *qcService) History(directory string) ([]*models.QCReport, error) {
	if s.history == nil {
		return nil, apperrors.NewInternalError("history is not configured", nil)
	}
	var (
		reports []*models.QCReport
		err     error
	)
	if directory == "" {
		reports, err = s.history.ListReports()
	} else {
		reports, err = s.history.ListReportsByDirectory(directory)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list reports", err)
	}
	return reports, nil
}

// Close shuts down the batch worker pool.
func (s *qcService) Close() error {
	s.pool.Close()
	return nil
}

// mapLocatorError translates locator failures into typed service
// errors; decode failures become processing errors.
func (s *qcService) mapLocatorError(directory string, err error) error {
	var dirErr *locator.DirectoryNotFoundError
	if errors.As(err, &dirErr) {
		return apperrors.NewNotFoundError("QC directory not found", err)
	}
	var noImgErr *locator.NoImageFoundError
	if errors.As(err, &noImgErr) {
		return apperrors.NewNotFoundError("no usable QC image found", err)
	}
	return apperrors.NewProcessingError("failed to load QC image", err)
}

func (s *qcService) notify(ctx context.Context, event observer.QCEvent) {
	s.publisher.NotifyObservers(ctx, event)
}

func (s *qcService) notifyFailure(ctx context.Context, directory, path string, err error) {
	eventType := observer.QCFailed
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		eventType = observer.ImageNotFound
	}
	s.notify(ctx, observer.QCEvent{
		EventType:    eventType,
		Timestamp:    time.Now(),
		Directory:    directory,
		ImagePath:    path,
		ErrorMessage: err.Error(),
	})
}
