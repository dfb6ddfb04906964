package family

import (
	"strings"
	"unicode"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

const maxMailNickname = 64

// Groups are security groups, assigned or dynamic.
func Groups() *Family {
	return &Family{
		Name:        "groups",
		Category:    "Groups",
		TemplateDir: "Groups",
		NameField:   DefaultNameField,
		Endpoints: map[string]graph.Endpoint{
			"": {Version: graph.V1, Path: "groups"},
		},
		ReadOnly: readOnly(
			"deletedDateTime",
			"renewedDateTime",
			"securityIdentifier",
			"mail",
			"proxyAddresses",
			"onPremises*",
			"expirationDateTime",
		),
		ProvenanceField: "description",
		Prepare:         prepareGroup,
	}
}

func prepareGroup(payload template.Attributes, _ Operation) {
	payload["securityEnabled"] = true
	payload["mailEnabled"] = false
	if payload.String("mailNickname") == "" {
		payload["mailNickname"] = MailNickname(payload.String(DefaultNameField))
	}
	if isDynamicGroup(payload) {
		payload["membershipRuleProcessingState"] = "On"
	}
}

func isDynamicGroup(payload template.Attributes) bool {
	for _, t := range payload.Slice("groupTypes") {
		if s, ok := t.(string); ok && strings.EqualFold(s, "DynamicMembership") {
			return true
		}
	}
	return payload.String("membershipRule") != ""
}

// MailNickname derives a mail alias from a display name: ASCII letters and digits only,
// at most 64 characters.
func MailNickname(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
		if b.Len() == maxMailNickname {
			break
		}
	}
	if b.Len() == 0 {
		return "group"
	}
	return b.String()
}
