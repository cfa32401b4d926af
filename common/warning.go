// Package common holds types shared by both conversion directions.
package common

import (
	"fmt"

	"go.uber.org/zap"
)

// Warning codes. Values are stable and may be matched by callers.
const (
	CodePartMissing             = "OXPT_PART_MISSING"
	CodePartInvalid             = "OXPT_PART_INVALID"
	CodeUnsupportedRunChild     = "OXPT_HTML_UNSUPPORTED_RUN_CHILD"
	CodeUnsupportedElement      = "OXPT_HTML_UNSUPPORTED_ELEMENT"
	CodeUnsupportedTable        = "OXPT_HTML_UNSUPPORTED_TABLE"
	CodeRelationshipMissing     = "OXPT_RELATIONSHIP_MISSING"
	CodeImageMissing            = "OXPT_IMAGE_MISSING"
	CodeNoteMissing             = "OXPT_NOTE_MISSING"
	CodeNumberingMissing        = "OXPT_NUMBERING_MISSING"
	CodeNumberingUnsupported    = "OXPT_NUMBERING_UNSUPPORTED_FORMAT"
	CodeListLangUnsupported     = "OXPT_LIST_LANG_UNSUPPORTED"
	CodeHeaderFooterFallback    = "OXPT_HEADER_FOOTER_FALLBACK"
	CodeWMLUnsupportedElement   = "OXPT_WML_UNSUPPORTED_ELEMENT"
	CodeWMLImageInvalid         = "OXPT_WML_IMAGE_INVALID"
	CodeWMLTemplatePartReplaced = "OXPT_WML_TEMPLATE_PART_REPLACED"
)

// Warning describes recoverable problem found during conversion. Warnings
// never abort conversion, they are returned together with the result.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Part    string `json:"part,omitempty" yaml:"part,omitempty"`
}

func (w Warning) String() string {
	if w.Part == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Code, w.Message, w.Part)
}

// Warnings accumulates warnings for a single conversion call.
// NOTE: not to be used concurrently.
type Warnings struct {
	list []Warning
	log  *zap.Logger
}

// NewWarnings creates accumulator which also reports every warning to the log
// at debug level.
func NewWarnings(log *zap.Logger) *Warnings {
	if log == nil {
		log = zap.NewNop()
	}
	return &Warnings{log: log}
}

// Add records a warning. Nil accumulator drops warnings.
func (ws *Warnings) Add(code, part, format string, args ...any) {
	if ws == nil {
		return
	}
	w := Warning{Code: code, Part: part, Message: fmt.Sprintf(format, args...)}
	ws.log.Debug("Conversion warning", zap.String("code", w.Code), zap.String("part", w.Part), zap.String("message", w.Message))
	ws.list = append(ws.list, w)
}

// List returns accumulated warnings in order of appearance.
func (ws *Warnings) List() []Warning {
	if ws == nil || len(ws.list) == 0 {
		return []Warning{}
	}
	out := make([]Warning, len(ws.list))
	copy(out, ws.list)
	return out
}

// Count returns number of warnings with the given code.
func (ws *Warnings) Count(code string) int {
	n := 0
	if ws == nil {
		return n
	}
	for _, w := range ws.list {
		if w.Code == code {
			n++
		}
	}
	return n
}
