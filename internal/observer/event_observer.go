package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// QCEvent describes one step of a QC run.
type QCEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Directory      string                 `json:"directory,omitempty"`
	ImagePath      string                 `json:"image_path,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType names the QC pipeline stages.
type EventType string

const (
	// QCStarted when a QC run begins for a directory
	QCStarted EventType = "qc_started"
	// QCCompleted when a QC run finishes successfully
	QCCompleted EventType = "qc_completed"
	// QCFailed when a QC run fails
	QCFailed EventType = "qc_failed"
	// ImageLocated when the target image is resolved in a QC folder
	ImageLocated EventType = "image_located"
	// ImageNotFound when no usable image exists in a QC folder
	ImageNotFound EventType = "image_not_found"
	// ReportSaved when a QC report is persisted to history
	ReportSaved EventType = "report_saved"
)

// Observer receives QC events.
type Observer interface {
	OnEvent(ctx context.Context, event QCEvent)
	GetObserverName() string
}

// Subject publishes QC events to subscribers.
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event QCEvent)
}

// LoggingObserver logs QC events.
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a logging observer.
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent logs the event at a level matching its type.
func (o *LoggingObserver) OnEvent(ctx context.Context, event QCEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"success":    event.Success,
	}
	if event.Directory != "" {
		fields["directory"] = event.Directory
	}
	if event.ImagePath != "" {
		fields["image_path"] = event.ImagePath
	}
	if event.ProcessingTime > 0 {
		fields["processing_time"] = event.ProcessingTime
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case QCStarted:
		o.logger.WithFields(fields).Info("QC run started")
	case QCCompleted:
		o.logger.WithFields(fields).Info("QC run completed")
	case QCFailed:
		o.logger.WithFields(fields).Error("QC run failed")
	case ImageLocated:
		o.logger.WithFields(fields).Debug("QC image located")
	case ImageNotFound:
		o.logger.WithFields(fields).Warn("No usable QC image found")
	case ReportSaved:
		o.logger.WithFields(fields).Debug("QC report saved")
	default:
		o.logger.WithFields(fields).Info("QC event occurred")
	}
}

// GetObserverName returns the observer name.
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver aggregates run counters for the stats endpoint.
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalRuns           int64
	successfulRuns      int64
	failedRuns          int64
	imagesNotFound      int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent updates the counters.
func (o *MetricsObserver) OnEvent(ctx context.Context, event QCEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case QCStarted:
		o.totalRuns++
	case QCCompleted:
		o.successfulRuns++
		o.totalProcessingTime += event.ProcessingTime
	case QCFailed:
		o.failedRuns++
	case ImageNotFound:
		o.imagesNotFound++
	}
}

// GetObserverName returns the observer name.
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a snapshot of the counters.
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulRuns > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulRuns)
	}

	return map[string]interface{}{
		"total_runs":            o.totalRuns,
		"successful_runs":       o.successfulRuns,
		"failed_runs":           o.failedRuns,
		"images_not_found":      o.imagesNotFound,
		"total_processing_time": o.totalProcessingTime.String(),
		"avg_processing_time":   avgProcessingTime.String(),
	}
}

// EventPublisher implements Subject.
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates an empty publisher.
func NewEventPublisher() Subject {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer.
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer by name.
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every subscriber. Observers run
// synchronously so that counters are current when the caller returns.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event QCEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
