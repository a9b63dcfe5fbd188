package core

// WorkerDefinition is the opaque configuration of one delegable worker: the
// engine receives it unchanged and decides how to run the worker. This layer
// never interprets the prompt text.
type WorkerDefinition struct {
	Description         string   `yaml:"description" json:"description"`
	Prompt              string   `yaml:"prompt" json:"prompt"`
	AllowedCapabilities []string `yaml:"allowed_capabilities,omitempty" json:"allowed_capabilities,omitempty"`
	Model               string   `yaml:"model,omitempty" json:"model,omitempty"`
}
