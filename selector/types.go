// Package selector decides which target frameworks of a project to act on.
//
// A Policy maps a project's declared monikers to the subset a caller should
// build or test. Five policies exist:
//
//   - All: every declared framework, in declaration order.
//   - Max: the single greatest framework under moniker.Compare.
//   - MaxNoWindows: like Max, after dropping Windows-only frameworks.
//   - Regex: frameworks whose raw string matches a pattern.
//   - App: for every framework of the application project, the closest
//     framework of the project being evaluated (see Match).
//
// Policies are immutable once constructed and safe for concurrent use.
package selector

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/albertocavalcante/go-tfm/moniker"
)

// Kind names a policy. The zero value is All.
type Kind int

const (
	All Kind = iota
	Max
	App
	Regex
	MaxNoWindows
)

var kindNames = map[Kind]string{
	All:          "All",
	Max:          "Max",
	App:          "App",
	Regex:        "Regex",
	MaxNoWindows: "MaxNoWindows",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses a policy name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return All, fmt.Errorf("unsupported framework selector %q (want %s)", s, KindList())
}

// Kinds returns every policy kind in declaration order.
func Kinds() []Kind {
	return []Kind{All, Max, App, Regex, MaxNoWindows}
}

// KindList names every kind for messages: "All, Max, App, Regex or MaxNoWindows".
func KindList() string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// Project is the input to a Policy: a project's display name and its declared
// frameworks in declaration order.
type Project struct {
	Name       string
	Frameworks []moniker.Moniker
}

// Policy selects frameworks for a project.
type Policy interface {
	// Select returns the frameworks to act on. The result may be empty.
	Select(p Project) ([]moniker.Moniker, error)
	// Kind reports which policy this is.
	Kind() Kind
}

// Option configures a policy.
type Option func(*policyConfig)

type policyConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger that receives informational notes such as
// skipped frameworks. If not set, notes are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *policyConfig) {
		c.logger = l
	}
}

func newPolicyConfig(opts []Option) policyConfig {
	var c policyConfig
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}
