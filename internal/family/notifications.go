package family

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

const localizedMessagesField = "localizedNotificationMessages"

// NotificationTemplates are compliance notification message templates. Their localized
// messages are a sub-collection created after the template itself, so updates replace
// the whole template.
func NotificationTemplates() *Family {
	return &Family{
		Name:        "notifications",
		Category:    "NotificationTemplates",
		TemplateDir: "Notifications",
		NameField:   DefaultNameField,
		Endpoints: map[string]graph.Endpoint{
			"": {Version: graph.Beta, Path: "deviceManagement/notificationMessageTemplates"},
		},
		ReadOnly:        readOnly(localizedMessagesField),
		ProvenanceField: "description",
		Strategy:        Replace,
		AfterCreate:     createLocalizedMessages,
	}
}

func createLocalizedMessages(ctx context.Context, client graph.Client, ep graph.Endpoint, id string, tpl template.Attributes) error {
	messages := tpl.Slice(localizedMessagesField)
	child := ep.Child(id, localizedMessagesField)
	for i, raw := range messages {
		msg, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%s[%d] is not an object", localizedMessagesField, i)
		}
		body, err := template.Attributes(msg).Clone()
		if err != nil {
			return err
		}
		body.Strip(commonReadOnly...)
		if _, err := client.Create(ctx, child, body); err != nil {
			return fmt.Errorf("create localized message %d: %w", i, err)
		}
	}
	return nil
}
