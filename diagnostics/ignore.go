// Copyright 2024 The packcore Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

package diagnostics

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// IgnoreConfig short-circuits individual checks: a global rule-name list
// applies everywhere, a per-field map narrows to one (table, column,
// rule) triple, and a file-prefix list skips whole paths (spec.md §4.6:
// "A global ignore list and per-field ignore map short-circuit each
// check"). Loaded from YAML, matching the schema store's own
// human-editable text-config convention (spec.md §6).
type IgnoreConfig struct {
	GlobalRules []string                       `yaml:"global_rules,omitempty"`
	Fields      map[string]map[string][]string `yaml:"fields,omitempty"` // table -> field -> rules
	Files       []string                       `yaml:"files,omitempty"`  // path prefixes

	globalSet map[string]bool
}

// LoadIgnoreConfig parses an IgnoreConfig from YAML bytes.
func LoadIgnoreConfig(data []byte) (IgnoreConfig, error) {
	var cfg IgnoreConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return IgnoreConfig{}, err
	}
	cfg.index()
	return cfg, nil
}

func (c *IgnoreConfig) index() {
	c.globalSet = make(map[string]bool, len(c.GlobalRules))
	for _, r := range c.GlobalRules {
		c.globalSet[r] = true
	}
}

// RuleIgnored reports whether rule is suppressed for (table, field).
// field may be empty for table-level or file-level rules.
func (c IgnoreConfig) RuleIgnored(rule, table, field string) bool {
	if c.globalSet[rule] {
		return true
	}
	if c.globalSet == nil {
		for _, r := range c.GlobalRules {
			if r == rule {
				return true
			}
		}
	}
	if field == "" {
		return false
	}
	byField, ok := c.Fields[table]
	if !ok {
		return false
	}
	for _, r := range byField[field] {
		if r == rule {
			return true
		}
	}
	return false
}

// FileIgnored reports whether path (or a containing folder) is listed
// in Files.
func (c IgnoreConfig) FileIgnored(path string) bool {
	for _, prefix := range c.Files {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
