package newsletter

import "encoding/json"

// Template identifies which newsletter layout to render.
type Template string

const (
	TemplateAnnouncement Template = "announcement"
	TemplateEvent        Template = "event"
)

// Payload is the structured newsletter content carried in a message body.
type Payload struct {
	Template      Template `json:"template"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	HighlightText string   `json:"highlight_text"`
	CTAText       string   `json:"cta_text"`
	CTAURL        string   `json:"cta_url"`
	EventDate     string   `json:"event_date"`
	EventTime     string   `json:"event_time"`
	EventLocation string   `json:"event_location"`
	FlyerImages   []string `json:"flyer_images"`
}

// ParsePayload decodes the JSON newsletter payload from a message body.
// A message that is not valid JSON is treated as plain text: the subject
// becomes the title, the raw message the content, and fallback picks the
// template (announcement when empty or unknown).
func ParsePayload(subject, message string, fallback Template) Payload {
	var p Payload
	if err := json.Unmarshal([]byte(message), &p); err != nil {
		p = Payload{
			Template: fallback,
			Title:    subject,
			Content:  message,
		}
	}
	if p.Template != TemplateEvent {
		p.Template = TemplateAnnouncement
	}
	if p.Title == "" {
		p.Title = subject
	}
	return p
}
