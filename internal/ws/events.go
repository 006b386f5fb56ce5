package ws

import (
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventAttendanceRecorded EventType = "attendance.recorded"
	EventUnknownFace        EventType = "attendance.unknown"
	EventFaceEnrolled       EventType = "face.enrolled"
	EventFaceRemoved        EventType = "face.removed"
	EventAlert              EventType = "alert.triggered"
	EventThresholdsUpdated  EventType = "alert.config_updated"
)

type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the write side of the hub that services depend on.
type Publisher interface {
	Publish(eventType EventType, data any)
}

// Topic groups event types by the prefix before the dot.
type Topic string

const (
	TopicAttendance Topic = "attendance"
	TopicFace       Topic = "face"
	TopicAlert      Topic = "alert"
)

func (t EventType) Topic() Topic {
	prefix, _, _ := strings.Cut(string(t), ".")
	return Topic(prefix)
}

// Topics is a client subscription. An empty set receives every event.
type Topics map[Topic]bool

func (ts Topics) Has(t EventType) bool {
	return len(ts) == 0 || ts[t.Topic()]
}

// ParseTopics reads a comma separated subscription such as "attendance,alert".
func ParseTopics(raw string) (Topics, error) {
	ts := Topics{}
	for _, part := range strings.Split(raw, ",") {
		topic := Topic(strings.ToLower(strings.TrimSpace(part)))
		switch topic {
		case "":
		case TopicAttendance, TopicFace, TopicAlert:
			ts[topic] = true
		default:
			return nil, fmt.Errorf("unknown topic %q", strings.TrimSpace(part))
		}
	}
	return ts, nil
}
