package model

// IntentRecord is one entry of the intent catalog: a tag, the example
// utterances it was trained on, and the canned replies for it.
type IntentRecord struct {
	Tag       string   `json:"tag" yaml:"tag" validate:"required"`
	Patterns  []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Responses []string `json:"responses" yaml:"responses" validate:"required,min=1,dive,required"`
}
