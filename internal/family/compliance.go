package family

import (
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

const scheduledActionsField = "scheduledActionsForRule"

var compliancePlatforms = map[string]string{
	"#microsoft.graph.androidCompliancePolicy":            "Android",
	"#microsoft.graph.androidDeviceOwnerCompliancePolicy": "Android Enterprise",
	"#microsoft.graph.androidWorkProfileCompliancePolicy": "Android Work Profile",
	"#microsoft.graph.aospDeviceOwnerCompliancePolicy":    "Android AOSP",
	"#microsoft.graph.iosCompliancePolicy":                "iOS",
	"#microsoft.graph.macOSCompliancePolicy":              "macOS",
	"#microsoft.graph.windows10CompliancePolicy":          "Windows",
	"#microsoft.graph.windows10MobileCompliancePolicy":    "Windows Mobile",
	"#microsoft.graph.windows81CompliancePolicy":          "Windows 8.1",
	"#microsoft.graph.windowsPhone81CompliancePolicy":     "Windows Phone",
}

// Compliance are device compliance policies, one @odata.type per platform.
func Compliance() *Family {
	ep := graph.Endpoint{Version: graph.Beta, Path: "deviceManagement/deviceCompliancePolicies"}
	endpoints := make(map[string]graph.Endpoint, len(compliancePlatforms))
	for t := range compliancePlatforms {
		endpoints[t] = ep
	}

	return &Family{
		Name:            "compliance",
		Category:        "CompliancePolicies",
		TemplateDir:     "Compliance",
		NameField:       DefaultNameField,
		TypeField:       "@odata.type",
		Endpoints:       endpoints,
		ReadOnly:        readOnly("assignments", "deviceStatuses", "userStatuses", "deviceStatusOverview", "userStatusOverview", "deviceSettingStateSummaries"),
		CompareIgnore:   []string{scheduledActionsField},
		ProvenanceField: "description",
		Prepare:         prepareCompliance,
		Platform:        platformByType("@odata.type", compliancePlatforms),
	}
}

func prepareCompliance(payload template.Attributes, op Operation) {
	if op == OpUpdate {
		delete(payload, scheduledActionsField)
		return
	}
	payload[scheduledActionsField] = normalizeScheduledActions(payload.Slice(scheduledActionsField))
}

// normalizeScheduledActions strips server ids from the rule list and falls back to a
// single immediate block action, which the service requires on create.
func normalizeScheduledActions(rules []any) []any {
	var out []any
	for _, raw := range rules {
		rule, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		delete(rule, "id")

		var configs []any
		for _, rawCfg := range sliceOf(rule["scheduledActionConfigurations"]) {
			cfg, ok := rawCfg.(map[string]any)
			if !ok {
				continue
			}
			delete(cfg, "id")
			configs = append(configs, cfg)
		}
		if len(configs) == 0 {
			configs = []any{defaultBlockAction()}
		}
		rule["scheduledActionConfigurations"] = configs
		if _, ok := rule["ruleName"]; !ok {
			rule["ruleName"] = "PasswordRequired"
		}
		out = append(out, rule)
	}

	if len(out) == 0 {
		out = []any{map[string]any{
			"ruleName":                      "PasswordRequired",
			"scheduledActionConfigurations": []any{defaultBlockAction()},
		}}
	}
	return out
}

func defaultBlockAction() map[string]any {
	return map[string]any{
		"actionType":                "block",
		"gracePeriodHours":          0,
		"notificationTemplateId":    "",
		"notificationMessageCCList": []any{},
	}
}

func sliceOf(v any) []any {
	s, _ := v.([]any)
	return s
}
