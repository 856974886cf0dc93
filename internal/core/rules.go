package core

import (
	"fmt"
	"regexp"

	"portacraft/internal/types"
)

// Rule is one conditional clause selecting inclusion of a library or argument.
// A nil OS and nil Features constraint matches every platform (absence of a
// dimension is a wildcard).
type Rule struct {
	Action   string
	OS       *OSRule
	Features map[string]bool
}

// OSRule constrains a rule on the host platform. Version is a regular
// expression matched against the OS version string.
type OSRule struct {
	Name    string
	Arch    string
	Version string
}

// EvaluateRules evaluates a rule list left-to-right against the platform and
// the enabled feature set. The last matching rule's action wins; rules that do
// not match are skipped. An empty list, or a list where no rule matches,
// evaluates to disallow. This deliberately preserves the observed upstream
// behavior for empty lists.
func EvaluateRules(rules []Rule, platform types.PlatformInfo, features map[string]bool) bool {
	allowed := false
	for _, rule := range rules {
		if !rule.matches(platform, features) {
			continue
		}
		allowed = rule.Action == "allow"
	}
	return allowed
}

func (r Rule) matches(platform types.PlatformInfo, features map[string]bool) bool {
	if r.OS != nil && !r.OS.matches(platform) {
		return false
	}
	for name, expected := range r.Features {
		if features[name] != expected {
			return false
		}
	}
	return true
}

func (o OSRule) matches(platform types.PlatformInfo) bool {
	if o.Name != "" && o.Name != platform.OS {
		return false
	}
	if o.Arch != "" && o.Arch != platform.Arch {
		return false
	}
	if o.Version != "" {
		matched, err := regexp.MatchString(o.Version, platform.OSVersion)
		if err != nil || !matched {
			return false
		}
	}
	return true
}

// DecodeRules decodes a raw rule list with path-tagged schema errors.
func DecodeRules(value any, path string) ([]Rule, error) {
	rawRules, err := asList(value, path)
	if err != nil {
		return nil, err
	}
	rules := make([]Rule, 0, len(rawRules))
	for i, rawRule := range rawRules {
		rulePath := fmt.Sprintf("%s/%d", path, i)
		ruleObj, err := asObject(rawRule, rulePath)
		if err != nil {
			return nil, err
		}
		action, err := asString(ruleObj["action"], rulePath+"/action")
		if err != nil {
			return nil, err
		}
		if action != "allow" && action != "disallow" {
			return nil, SchemaError(rulePath+"/action", "'allow' or 'disallow'")
		}
		rule := Rule{Action: action}
		if rawOS, ok := ruleObj["os"]; ok && rawOS != nil {
			osObj, err := asObject(rawOS, rulePath+"/os")
			if err != nil {
				return nil, err
			}
			osRule := OSRule{}
			if osRule.Name, _, err = optString(osObj, "name", rulePath+"/os"); err != nil {
				return nil, err
			}
			if osRule.Arch, _, err = optString(osObj, "arch", rulePath+"/os"); err != nil {
				return nil, err
			}
			if osRule.Version, _, err = optString(osObj, "version", rulePath+"/os"); err != nil {
				return nil, err
			}
			rule.OS = &osRule
		}
		if rawFeatures, ok := ruleObj["features"]; ok && rawFeatures != nil {
			featObj, err := asObject(rawFeatures, rulePath+"/features")
			if err != nil {
				return nil, err
			}
			rule.Features = make(map[string]bool, len(featObj))
			for name, rawExpected := range featObj {
				expected, err := asBool(rawExpected, fmt.Sprintf("%s/features/%s", rulePath, name))
				if err != nil {
					return nil, err
				}
				rule.Features[name] = expected
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
