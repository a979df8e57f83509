package job

import (
	"strings"

	"yaomexi/internal/pkg/errors"
)

// Validation limits for submissions. Scripted scripts shorter than
// MinScriptLen are rejected outright; template and voice ids have a floor
// so obvious typos fail fast.
const (
	MinScriptLen   = 50
	MinTemplateLen = 3
	MinVoiceLen    = 3
)

// ScriptedPayload describes a scripted short-form video job.
type ScriptedPayload struct {
	Template string `json:"template"`
	Script   string `json:"script"`
	Voice    string `json:"voice"`
}

// Validate checks the scripted payload against the submission rules.
func (p *ScriptedPayload) Validate() error {
	if p == nil {
		return errors.Validation("scripted payload is missing")
	}
	if len(strings.TrimSpace(p.Template)) < MinTemplateLen {
		return errors.ValidationField("template", "template id must be at least 3 characters")
	}
	if len(p.Script) < MinScriptLen {
		return errors.Validationf("script must be at least %d characters", MinScriptLen).
			WithField("field", "script")
	}
	if len(strings.TrimSpace(p.Voice)) < MinVoiceLen {
		return errors.ValidationField("voice", "voice id must be at least 3 characters")
	}
	return nil
}

// Clip is one entry of a timeline job: a previously uploaded raw clip and
// how long it plays for.
type Clip struct {
	UploadID string  `json:"upload_id"`
	Duration float64 `json:"duration"`
}

// TimelinePayload describes a timeline job built from uploaded clips.
type TimelinePayload struct {
	Clips []Clip `json:"clips"`
}

// Validate checks the timeline payload against the submission rules.
// Upload resolution is the submission service's concern; this only checks
// shape.
func (p *TimelinePayload) Validate() error {
	if p == nil {
		return errors.Validation("timeline payload is missing")
	}
	if len(p.Clips) == 0 {
		return errors.ValidationField("clips", "timeline needs at least one clip")
	}
	for i, c := range p.Clips {
		if strings.TrimSpace(c.UploadID) == "" {
			return errors.Validationf("clip %d is missing its upload_id", i).
				WithField("field", "clips")
		}
		if c.Duration <= 0 {
			return errors.Validationf("clip %d duration must be positive", i).
				WithField("field", "clips")
		}
	}
	return nil
}
