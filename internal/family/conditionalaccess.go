package family

import (
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

// DisabledState is the state conditional access policies are created and force-updated with.
const DisabledState = "disabled"

// ConditionalAccess policies are created disabled so that an operator reviews them
// before they can lock anyone out. Once created, the state belongs to the operator: it
// is ignored by the equality check and only rewritten by a forced update. Policies carry
// no description, so ownership is tracked through the name.
func ConditionalAccess() *Family {
	return &Family{
		Name:        "conditionalaccess",
		Category:    "ConditionalAccess",
		TemplateDir: "ConditionalAccess",
		NameField:   DefaultNameField,
		Endpoints: map[string]graph.Endpoint{
			"": {Version: graph.V1, Path: "identity/conditionalAccess/policies"},
		},
		ReadOnly:      readOnly("templateId", "partialEnablementStrategy", "deletedDateTime"),
		CompareIgnore: []string{"state"},
		CreateOnly:    []string{"state"},
		Prepare:       prepareConditionalAccess,
	}
}

func prepareConditionalAccess(payload template.Attributes, _ Operation) {
	payload["state"] = DisabledState
}
