package family

import (
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

const winGetAppType = "#microsoft.graph.winGetApp"

var mobileAppPlatforms = map[string]string{
	winGetAppType:                                "Windows",
	"#microsoft.graph.officeSuiteApp":            "Windows",
	"#microsoft.graph.windowsMicrosoftEdgeApp":   "Windows",
	"#microsoft.graph.windowsWebApp":             "Windows",
	"#microsoft.graph.iosStoreApp":               "iOS",
	"#microsoft.graph.iosVppApp":                 "iOS",
	"#microsoft.graph.androidManagedStoreApp":    "Android",
	"#microsoft.graph.androidStoreApp":           "Android",
	"#microsoft.graph.macOSMicrosoftEdgeApp":     "macOS",
	"#microsoft.graph.macOSOfficeSuiteApp":       "macOS",
	"#microsoft.graph.macOSMicrosoftDefenderApp": "macOS",
	"#microsoft.graph.webApp":                    "Web",
}

// MobileApps are catalog entries for store and package-manager apps. A template carrying
// a packageIdentifier is matched on it rather than on its display name.
func MobileApps() *Family {
	ep := graph.Endpoint{Version: graph.Beta, Path: "deviceAppManagement/mobileApps"}
	endpoints := make(map[string]graph.Endpoint, len(mobileAppPlatforms))
	for t := range mobileAppPlatforms {
		endpoints[t] = ep
	}

	return &Family{
		Name:        "mobileapps",
		Category:    "MobileApps",
		TemplateDir: "MobileApps",
		NameField:   DefaultNameField,
		TypeField:   "@odata.type",
		Endpoints:   endpoints,
		ReadOnly: readOnly(
			"uploadState",
			"publishingState",
			"isAssigned",
			"dependentAppCount",
			"supersedingAppCount",
			"supersededAppCount",
			"assignments",
			"categories",
			"relationships",
		),
		ProvenanceField: "notes",
		SecondaryKey:    "packageIdentifier",
		Prepare:         prepareMobileApp,
		Platform:        platformByType("@odata.type", mobileAppPlatforms),
	}
}

func prepareMobileApp(payload template.Attributes, _ Operation) {
	if payload.String("@odata.type") != winGetAppType {
		return
	}
	experience := payload.Map("installExperience")
	if experience == nil {
		experience = map[string]any{}
	}
	if s, _ := experience["runAsAccount"].(string); s == "" {
		experience["runAsAccount"] = "user"
	}
	payload["installExperience"] = experience
}
