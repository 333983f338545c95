package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Logger is the minimal printf-style logging surface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer receives structured events as the pipeline progresses.
type Observer interface {
	Logger

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns a new Observer with additional context fields.
	WithFields(fields map[string]string) Observer
}

// Event represents a structured pipeline event.
type Event struct {
	Type      EventType
	Stage     string
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventStageStarted indicates a pipeline stage has started.
	EventStageStarted EventType = "stage.started"
	// EventStageSucceeded indicates a stage reached Succeeded.
	EventStageSucceeded EventType = "stage.succeeded"
	// EventStageFailed indicates a stage reached Failed.
	EventStageFailed EventType = "stage.failed"
	// EventStageTimedOut indicates a readiness wait exhausted its budget.
	EventStageTimedOut EventType = "stage.timedout"
	// EventStageSkipped indicates a stage was skipped after a fatal failure.
	EventStageSkipped EventType = "stage.skipped"

	// EventResourceApplying indicates a resource apply attempt.
	EventResourceApplying EventType = "resource.applying"
	// EventResourceApplied indicates a resource was applied successfully.
	EventResourceApplied EventType = "resource.applied"
	// EventResourceExists indicates an apply was skipped because the
	// resource is already present.
	EventResourceExists EventType = "resource.exists"
	// EventResourceRetry indicates a transient apply failure being retried.
	EventResourceRetry EventType = "resource.retry"
	// EventResourceDeleted indicates a resource deletion completed.
	EventResourceDeleted EventType = "resource.deleted"

	// EventReadinessWaiting indicates a readiness poll loop has begun.
	EventReadinessWaiting EventType = "readiness.waiting"
	// EventReadinessProbeError indicates a predicate could not observe
	// state; the loop continues toward its deadline.
	EventReadinessProbeError EventType = "readiness.probe_error"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{contextFields: make(map[string]string)}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}
	log.Print(o.formatEvent(event))
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &ConsoleObserver{contextFields: newFields}
}

func (o *ConsoleObserver) formatEvent(event Event) string {
	var parts []string
	parts = append(parts, string(event.Type))
	if event.Stage != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Stage))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)
	if len(event.Fields) > 0 {
		var fieldParts []string
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}
	return strings.Join(parts, " ")
}

// LogStageStart logs a stage start event.
func LogStageStart(observer Observer, stage string) {
	observer.Event(Event{Type: EventStageStarted, Stage: stage, Message: "starting"})
}

// LogStageResult logs the terminal event for a stage.
func LogStageResult(observer Observer, res StageResult) {
	fields := map[string]string{
		"attempts": fmt.Sprintf("%d", res.Attempts),
		"elapsed":  res.Elapsed.Round(time.Millisecond).String(),
	}

	switch res.Outcome {
	case OutcomeSucceeded:
		observer.Event(Event{Type: EventStageSucceeded, Stage: res.Stage, Message: "succeeded", Fields: fields})
	case OutcomeTimedOut:
		observer.Event(Event{Type: EventStageTimedOut, Stage: res.Stage, Message: fmt.Sprintf("timed out: %v", res.Err), Fields: fields})
	case OutcomeSkipped:
		observer.Event(Event{Type: EventStageSkipped, Stage: res.Stage, Message: "skipped"})
	default:
		observer.Event(Event{Type: EventStageFailed, Stage: res.Stage, Message: fmt.Sprintf("failed: %v", res.Err), Fields: fields})
	}
}
