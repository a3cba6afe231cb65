package selector

import (
	"fmt"

	"github.com/albertocavalcante/go-tfm/moniker"
)

// MatchAllPattern is the framework pattern that matches every framework.
const MatchAllPattern = "."

// Config describes a policy as it comes from user configuration.
type Config struct {
	Kind Kind
	// Pattern is the framework pattern for Regex. For All, a pattern other
	// than "" or MatchAllPattern turns the policy into Regex.
	Pattern string
	// Application holds the application project's frameworks for App.
	Application []moniker.Moniker
}

// New builds the policy described by cfg.
func New(cfg Config, opts ...Option) (Policy, error) {
	switch cfg.Kind {
	case All:
		if cfg.Pattern == "" || cfg.Pattern == MatchAllPattern {
			return AllPolicy(opts...), nil
		}
		return RegexPolicy(cfg.Pattern, opts...)
	case Regex:
		return RegexPolicy(cfg.Pattern, opts...)
	case Max:
		return MaxPolicy(opts...), nil
	case MaxNoWindows:
		return MaxNoWindowsPolicy(opts...), nil
	case App:
		if len(cfg.Application) == 0 {
			return nil, fmt.Errorf("app framework selector requires application frameworks")
		}
		return AppPolicy(cfg.Application, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported framework selector %s", cfg.Kind)
	}
}
