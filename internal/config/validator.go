package config

import (
	"fmt"
	"mailroom-simulator/internal/domain"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "simulation.floors")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func ValidLogFormats() []string {
	return []string{"text", "json"}
}

func ValidMailSources() []string {
	return []string{"generator", "sqlite", "postgres"}
}

func ValidReportBackends() []string {
	return []string{"sqlite", "postgres", "redis"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	sim := c.Simulation
	if sim.MaxTicks < 0 {
		add("simulation.max_ticks", sim.MaxTicks, "must be >= 0 (0 = unbounded)")
	}
	if sim.Floors < sim.MailroomFloor {
		add("simulation.floors", sim.Floors, fmt.Sprintf("must be >= mailroom_floor (%d)", sim.MailroomFloor))
	}
	if sim.LoadLimit < 1 {
		add("simulation.load_limit", sim.LoadLimit, "must be >= 1")
	}
	if sim.MaxDeliveriesPerLoad < sim.LoadLimit {
		add("simulation.max_deliveries_per_load", sim.MaxDeliveriesPerLoad,
			fmt.Sprintf("must be >= load_limit (%d)", sim.LoadLimit))
	}
	if sim.ScorePenalty <= 0 {
		add("simulation.score_penalty", sim.ScorePenalty, "must be > 0")
	}

	if len(c.Robots.Types) == 0 {
		add("robots.types", c.Robots.Types, "must list at least one robot")
	}
	for i, token := range c.Robots.Types {
		if _, err := domain.ParseRobotType(token); err != nil {
			add(fmt.Sprintf("robots.types[%d]", i), token, "must be one of Standard, Big, Careful, Weak")
		}
	}
	for name, s := range c.Robots.Settings {
		field := "robots.settings." + name
		if _, err := domain.ParseRobotType(name); err != nil {
			add(field, name, "unknown robot type")
			continue
		}
		if s.Capacity < 1 {
			add(field+".capacity", s.Capacity, "must be >= 1")
		}
		if s.WeightLimit < 0 {
			add(field+".weight_limit", s.WeightLimit, "must be >= 0 (0 = no limit)")
		}
		if s.MoveTicks < 1 {
			add(field+".move_ticks", s.MoveTicks, "must be >= 1")
		}
	}

	m := c.Mail
	if !slices.Contains(ValidMailSources(), m.Source) {
		add("mail.source", m.Source, fmt.Sprintf("must be one of %v", ValidMailSources()))
	}
	if m.Source == "generator" {
		if m.Count < 0 {
			add("mail.count", m.Count, "must be >= 0")
		}
		if m.LastArrivalTick < 1 {
			add("mail.last_arrival_tick", m.LastArrivalTick, "must be >= 1")
		}
		if m.PriorityRatio < 0 || m.PriorityRatio > 1 {
			add("mail.priority_ratio", m.PriorityRatio, "must be within [0, 1]")
		}
		if m.PriorityRatio > 0 && len(m.PriorityLevels) == 0 {
			add("mail.priority_levels", m.PriorityLevels, "must not be empty when priority_ratio > 0")
		}
		if m.FragileRatio < 0 || m.FragileRatio > 1 {
			add("mail.fragile_ratio", m.FragileRatio, "must be within [0, 1]")
		}
		if m.MinWeight < 0 || m.MaxWeight < m.MinWeight {
			add("mail.max_weight", m.MaxWeight, fmt.Sprintf("must be >= min_weight (%d) and min_weight >= 0", m.MinWeight))
		}
	}

	for i, b := range c.Report.Backends {
		if !slices.Contains(ValidReportBackends(), b) {
			add(fmt.Sprintf("report.backends[%d]", i), b, fmt.Sprintf("must be one of %v", ValidReportBackends()))
		}
	}
	if (m.Source == "postgres" || slices.Contains(c.Report.Backends, "postgres")) && strings.TrimSpace(c.Report.DatabaseURL) == "" {
		add("report.database_url", c.Report.DatabaseURL, "is required when postgres is used")
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		add("logging.level", c.Logging.Level, fmt.Sprintf("must be one of %v", ValidLogLevels()))
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		add("logging.format", c.Logging.Format, fmt.Sprintf("must be one of %v", ValidLogFormats()))
	}

	return errs
}
