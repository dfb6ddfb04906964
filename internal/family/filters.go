package family

import (
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

var filterPlatforms = []string{
	"android",
	"androidForWork",
	"iOS",
	"macOS",
	"windowsPhone81",
	"windows81AndLater",
	"windows10AndLater",
	"androidWorkProfile",
	"androidAOSP",
	"androidMobileApplicationManagement",
	"iOSMobileApplicationManagement",
	"windowsMobileApplicationManagement",
}

// Filters are assignment filters, one endpoint for every platform.
func Filters() *Family {
	ep := graph.Endpoint{Version: graph.Beta, Path: "deviceManagement/assignmentFilters"}
	endpoints := make(map[string]graph.Endpoint, len(filterPlatforms))
	for _, p := range filterPlatforms {
		endpoints[p] = ep
	}

	return &Family{
		Name:            "filters",
		Category:        "Filters",
		TemplateDir:     "Filters",
		NameField:       DefaultNameField,
		TypeField:       "platform",
		Endpoints:       endpoints,
		ReadOnly:        readOnly("payloads", "roleScopeTags"),
		ProvenanceField: "description",
		Platform: func(attrs template.Attributes) string {
			return attrs.String("platform")
		},
	}
}
