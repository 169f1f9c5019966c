package dto

import "github.com/DanishNadar/ttp-tracker/internal/enum"

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id        string                 `json:"id"`
	MessageId string                 `json:"messageId"`
	EventType enum.TrackingEventType `json:"eventType"`
	Data      interface{}            `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	Timestamp   string `json:"timestamp"`
}

type TrackingEventData struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	TargetURL string `json:"targetUrl,omitempty"`
}
