package beats

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/pkg/message"
	"os"
	"time"
)

// Sends the message (each part of a composite as its own event) to the configured beats server
func (mod *OutModule) Write(ctx context.Context, msg message.Message) (eventsSent int, err error) {
	if mod == nil {
		return
	}

	leaves := message.Flatten(msg)
	if len(leaves) == 0 {
		return
	}

	now := time.Now().UTC()
	events := make([]interface{}, 0, len(leaves))
	for _, leaf := range leaves {
		events = append(events, mod.event(now, leaf))
	}

	eventsSent, err = mod.sink.Send(events)
	if err != nil {
		return
	}
	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog, "Forwarded %d events to beats server\n", eventsSent)
	return
}

func (mod *OutModule) event(timestamp time.Time, msg message.Message) (fields map[string]interface{}) {
	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": timestamp,
		"message":    message.Describe(msg),

		// Common fields
		"host": map[string]interface{}{
			"name":     mod.hostname,
			"hostname": mod.hostname,
		},
		"agent": map[string]interface{}{
			"name":    mod.hostname,
			"program": "f1timing",
			"version": global.ProgVersion,
			"type":    "filebeat",
			"pid":     os.Getpid(),
		},

		// Timing fields
		"timing": map[string]interface{}{
			"source":  mod.source,
			"type":    message.NameOf(msg),
			"type_id": msg.TypeID(),
			"fields":  objectFields(msg),
		},
	}
	if driverMsg, ok := msg.(message.DriverMessage); ok {
		fields["timing"].(map[string]interface{})["driver"] = driverMsg.Driver()
	}
	return
}

// Field map of an object with nested objects expanded
func objectFields(obj message.Object) (fields map[string]interface{}) {
	fields = make(map[string]interface{})
	shape, found := message.Lookup(obj.TypeID())
	if !found {
		return
	}
	for _, field := range shape.Fields {
		value := fieldValue(field.Get(obj))
		if value != nil {
			fields[field.Name] = value
		}
	}
	return
}

func fieldValue(value any) any {
	switch v := value.(type) {
	case message.Object:
		return objectFields(v)
	case []any:
		items := make([]any, 0, len(v))
		for _, item := range v {
			items = append(items, fieldValue(item))
		}
		return items
	case time.Duration:
		return v.Seconds()
	default:
		return v
	}
}
