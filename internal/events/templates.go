package events

import (
	"fmt"
	"strconv"
	"strings"
)

// MessageTemplateEngine provides dynamic message generation for events.
type MessageTemplateEngine struct {
	templates map[EventReason]string
}

// NewMessageTemplateEngine creates a new message template engine with default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	engine := &MessageTemplateEngine{
		templates: make(map[EventReason]string),
	}
	engine.loadDefaultTemplates()
	return engine
}

// loadDefaultTemplates initializes the default message templates for all event reasons.
func (e *MessageTemplateEngine) loadDefaultTemplates() {
	// Test lifecycle templates
	e.templates[ReasonTestStarted] = "Test {{.Test}} started on worker {{.Worker}}"
	e.templates[ReasonTestFinished] = "Test {{.Test}} finished on worker {{.Worker}}{{if .Result}} ({{.Result}}){{end}}{{if .Duration}} in {{.Duration}}{{end}}"
	e.templates[ReasonContextRetired] = "Test context of worker {{.Worker}} retired"

	// Driver templates
	e.templates[ReasonDriverCreated] = "Driver {{.Session}} created for {{.Device}} with scope {{.Scope}}{{if .Duration}} in {{.Duration}}{{end}}"
	e.templates[ReasonDriverReused] = "Driver {{.Session}} reused for {{.Device}} with scope {{.Scope}}"
	e.templates[ReasonDriverUnavailable] = "Driver for {{.Device}} unavailable{{if .Error}}: {{.Error}}{{end}}"
	e.templates[ReasonDriverReleased] = "Released {{.Count}} driver(s) at {{.Scope}} scope"
	e.templates[ReasonDriverReleaseFailed] = "Releasing drivers at {{.Scope}} scope failed{{if .Error}}: {{.Error}}{{end}}"

	// Shared store templates
	e.templates[ReasonSuiteCleared] = "Suite {{.Suite}} cleared, {{.Count}} driver(s) released{{if .Error}} with errors: {{.Error}}{{end}}"
	e.templates[ReasonRunCleared] = "Run cleared, {{.Count}} driver(s) released{{if .Error}} with errors: {{.Error}}{{end}}"

	// Variant templates
	e.templates[ReasonVariantResolved] = "Resolved {{.Capability}} to {{.Candidate}} on {{.Device}}"
	e.templates[ReasonVariantUnmatched] = "No variant of {{.Capability}} matches {{.Device}}{{if .Error}}: {{.Error}}{{end}}"
}

// Render generates a message for the given event reason and data.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	template, exists := e.templates[reason]
	if !exists {
		// Fallback for unknown event reasons
		return fmt.Sprintf("Event: %s for worker %s test %s", string(reason), data.Worker, data.Test)
	}

	return e.renderTemplate(template, data)
}

// SetTemplate allows customizing the message template for a specific event reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, template string) {
	e.templates[reason] = template
}

// GetTemplate returns the template for a specific event reason.
func (e *MessageTemplateEngine) GetTemplate(reason EventReason) (string, bool) {
	template, exists := e.templates[reason]
	return template, exists
}

// renderTemplate performs simple template rendering with EventData.
// This is a simplified template system that supports basic variable substitution.
func (e *MessageTemplateEngine) renderTemplate(template string, data EventData) string {
	result := template

	// Replace basic variables
	result = strings.ReplaceAll(result, "{{.Worker}}", data.Worker)
	result = strings.ReplaceAll(result, "{{.Test}}", data.Test)
	result = strings.ReplaceAll(result, "{{.Suite}}", data.Suite)
	result = strings.ReplaceAll(result, "{{.Device}}", data.Device)
	result = strings.ReplaceAll(result, "{{.Scope}}", data.Scope)
	result = strings.ReplaceAll(result, "{{.Session}}", data.Session)
	result = strings.ReplaceAll(result, "{{.Capability}}", data.Capability)
	result = strings.ReplaceAll(result, "{{.Candidate}}", data.Candidate)
	result = strings.ReplaceAll(result, "{{.Result}}", data.Result)
	result = strings.ReplaceAll(result, "{{.Count}}", strconv.Itoa(data.Count))

	// Handle duration formatting
	if strings.Contains(result, "{{.Duration}}") {
		if data.Duration > 0 {
			result = strings.ReplaceAll(result, "{{.Duration}}", data.Duration.String())
		} else {
			result = strings.ReplaceAll(result, "{{.Duration}}", "")
		}
	}

	// Conditionals first so an empty Error inside a block is dropped with it
	result = e.renderConditionals(result, data)
	result = strings.ReplaceAll(result, "{{.Error}}", data.Error)

	return result
}

// renderConditionals handles simple conditional rendering in templates.
// Supports: {{if .FieldName}}content{{end}}
func (e *MessageTemplateEngine) renderConditionals(template string, data EventData) string {
	result := template

	// Handle {{if .Error}}...{{end}}
	result = e.renderConditional(result, "{{if .Error}}", "{{end}}", data.Error != "")

	// Handle {{if .Duration}}...{{end}}
	result = e.renderConditional(result, "{{if .Duration}}", "{{end}}", data.Duration > 0)

	// Handle {{if .Result}}...{{end}}
	result = e.renderConditional(result, "{{if .Result}}", "{{end}}", data.Result != "")

	return result
}

// renderConditional handles a single conditional block.
func (e *MessageTemplateEngine) renderConditional(template, startMarker, endMarker string, condition bool) string {
	startIndex := strings.Index(template, startMarker)
	if startIndex == -1 {
		return template
	}

	endIndex := strings.Index(template[startIndex:], endMarker)
	if endIndex == -1 {
		return template
	}

	endIndex += startIndex // Convert to absolute index

	if condition {
		// Keep the content between markers, remove the markers
		before := template[:startIndex]
		content := template[startIndex+len(startMarker) : endIndex]
		after := template[endIndex+len(endMarker):]
		return before + content + after
	} else {
		// Remove the entire conditional block
		before := template[:startIndex]
		after := template[endIndex+len(endMarker):]
		return before + after
	}
}
