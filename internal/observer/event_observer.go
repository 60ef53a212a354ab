package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineEvent represents a stage transition of an upload or avatar request
type PipelineEvent struct {
	EventType    EventType              `json:"event_type"`
	Timestamp    time.Time              `json:"timestamp"`
	Style        string                 `json:"style,omitempty"`
	Key          string                 `json:"key,omitempty"`
	Elapsed      time.Duration          `json:"elapsed"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the pipeline stage an event reports
type EventType string

const (
	// PhotoUploaded when a photo has been written to the blob store
	PhotoUploaded EventType = "photo_uploaded"
	// GenerationStarted when a valid generate request enters the pipeline
	GenerationStarted EventType = "generation_started"
	// PhotoDescribed when the vision step returned (possibly empty) text
	PhotoDescribed EventType = "photo_described"
	// ImageGenerated when the generator returned a reference
	ImageGenerated EventType = "image_generated"
	// AvatarRehosted when the generated image is stored durably
	AvatarRehosted EventType = "avatar_rehosted"
	// GenerationFailed when any pipeline step fails
	GenerationFailed EventType = "generation_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PipelineEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PipelineEvent)
}

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles pipeline events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"elapsed":    event.Elapsed,
		"success":    event.Success,
	}
	if event.Style != "" {
		fields["style"] = event.Style
	}
	if event.Key != "" {
		fields["key"] = event.Key
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case PhotoUploaded:
		entry.Info("Photo uploaded")
	case GenerationStarted:
		entry.Info("Avatar generation started")
	case PhotoDescribed:
		entry.Debug("Photo described")
	case ImageGenerated:
		entry.Debug("Image generated")
	case AvatarRehosted:
		entry.Info("Avatar generation completed")
	case GenerationFailed:
		entry.Error("Avatar generation failed")
	default:
		entry.Info("Pipeline event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver keeps pipeline counters for the health endpoint
type MetricsObserver struct {
	mu                    sync.RWMutex
	uploads               int64
	generations           int64
	successfulGenerations int64
	failedGenerations     int64
	emptyDescriptions     int64
	totalGenerationTime   time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles pipeline events by updating counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case PhotoUploaded:
		o.uploads++
	case GenerationStarted:
		o.generations++
	case PhotoDescribed:
		if empty, ok := event.Metadata["empty_description"].(bool); ok && empty {
			o.emptyDescriptions++
		}
	case AvatarRehosted:
		o.successfulGenerations++
		o.totalGenerationTime += event.Elapsed
	case GenerationFailed:
		o.failedGenerations++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgGenerationTime := time.Duration(0)
	if o.successfulGenerations > 0 {
		avgGenerationTime = o.totalGenerationTime / time.Duration(o.successfulGenerations)
	}

	return map[string]interface{}{
		"uploads":                o.uploads,
		"total_generations":      o.generations,
		"successful_generations": o.successfulGenerations,
		"failed_generations":     o.failedGenerations,
		"empty_descriptions":     o.emptyDescriptions,
		"avg_generation_time_ms": avgGenerationTime.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
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

// NotifyObservers notifies all observers of an event. Observers run on their
// own goroutines and never block the request that emitted the event.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event PipelineEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Observers outlive the request, so they get a context without its deadline
	ctx = context.WithoutCancel(ctx)
	for _, observer := range observers {
		go func(obs Observer) {
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

var _ Subject = (*EventPublisher)(nil)
