package eventbus

import (
	"fmt"
	"strings"

	"github.com/amirasaad/finshare/pkg/domain/events"
)

// routingKeyFor maps "Goal.Completed" to "events.goal.completed".
func routingKeyFor(eventType events.EventType) string {
	return nameFor("events", eventType)
}

// queueNameFor returns the durable queue consuming eventType.
func queueNameFor(exchange string, eventType events.EventType) string {
	return exchange + "." + nameFor("queue", eventType)
}

func nameFor(prefix string, eventType events.EventType) string {
	parts := strings.Split(eventType.String(), ".")
	if len(parts) == 2 {
		return fmt.Sprintf(
			"%s.%s.%s",
			prefix,
			strings.ToLower(parts[0]),
			strings.ToLower(parts[1]))
	}
	return fmt.Sprintf("%s.%s", prefix, strings.ToLower(eventType.String()))
}
