package observer

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []PipelineEvent
}

func (o *recordingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) GetObserverName() string { return o.name }

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event PipelineEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string                         { return "panicking" }

func TestMetricsObserver_Counters(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, PipelineEvent{EventType: PhotoUploaded})
	m.OnEvent(ctx, PipelineEvent{EventType: GenerationStarted})
	m.OnEvent(ctx, PipelineEvent{EventType: PhotoDescribed, Metadata: map[string]interface{}{"empty_description": true}})
	m.OnEvent(ctx, PipelineEvent{EventType: AvatarRehosted, Elapsed: 4 * time.Second})
	m.OnEvent(ctx, PipelineEvent{EventType: GenerationStarted})
	m.OnEvent(ctx, PipelineEvent{EventType: GenerationFailed})

	metrics := m.GetMetrics()
	assert.Equal(t, int64(1), metrics["uploads"])
	assert.Equal(t, int64(2), metrics["total_generations"])
	assert.Equal(t, int64(1), metrics["successful_generations"])
	assert.Equal(t, int64(1), metrics["failed_generations"])
	assert.Equal(t, int64(1), metrics["empty_descriptions"])
	assert.Equal(t, int64(4000), metrics["avg_generation_time_ms"])
}

func TestEventPublisher_NotifiesSubscribers(t *testing.T) {
	p := NewEventPublisher()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	p.Subscribe(first)
	p.Subscribe(second)
	p.Subscribe(panickingObserver{})

	p.NotifyObservers(context.Background(), PipelineEvent{EventType: GenerationStarted})

	assert.Eventually(t, func() bool { return first.count() == 1 && second.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, first.events[0].Timestamp.IsZero())

	p.Unsubscribe(second)
	p.NotifyObservers(context.Background(), PipelineEvent{EventType: GenerationFailed})

	assert.Eventually(t, func() bool { return first.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, second.count())
}

func TestEventPublisher_DetachesFromRequestContext(t *testing.T) {
	p := NewEventPublisher()
	obs := &recordingObserver{name: "ctx"}
	var gotErr error
	var mu sync.Mutex
	p.Subscribe(observerFunc(func(ctx context.Context, e PipelineEvent) {
		mu.Lock()
		gotErr = ctx.Err()
		mu.Unlock()
		obs.OnEvent(ctx, e)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.NotifyObservers(ctx, PipelineEvent{EventType: AvatarRehosted})

	assert.Eventually(t, func() bool { return obs.count() == 1 }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, gotErr)
}

type observerFunc func(ctx context.Context, e PipelineEvent)

func (f observerFunc) OnEvent(ctx context.Context, e PipelineEvent) { f(ctx, e) }
func (f observerFunc) GetObserverName() string                      { return "func" }

func TestLoggingObserver_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	NewLoggingObserver(log).OnEvent(context.Background(), PipelineEvent{
		EventType:    GenerationFailed,
		Style:        "anime",
		ErrorMessage: "generation failed upstream",
	})

	out := buf.String()
	assert.Contains(t, out, `"style":"anime"`)
	assert.Contains(t, out, `"error":"generation failed upstream"`)
	assert.Contains(t, out, "Avatar generation failed")
}
