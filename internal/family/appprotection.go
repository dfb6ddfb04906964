package family

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

const (
	iosAppProtectionType     = "#microsoft.graph.iosManagedAppProtection"
	androidAppProtectionType = "#microsoft.graph.androidManagedAppProtection"
	targetAppsField          = "apps"
)

// AppProtection are managed app protection policies for iOS and Android.
func AppProtection() *Family {
	return &Family{
		Name:        "appprotection",
		Category:    "AppProtection",
		TemplateDir: "AppProtection",
		NameField:   DefaultNameField,
		TypeField:   "@odata.type",
		Endpoints: map[string]graph.Endpoint{
			iosAppProtectionType:     {Version: graph.Beta, Path: "deviceAppManagement/iosManagedAppProtections"},
			androidAppProtectionType: {Version: graph.Beta, Path: "deviceAppManagement/androidManagedAppProtections"},
		},
		ReadOnly:        readOnly(targetAppsField, "assignments", "deploymentSummary", "isAssigned", "deployedAppCount"),
		ProvenanceField: "description",
		AfterCreate:     targetApps,
		Platform: platformByType("@odata.type", map[string]string{
			iosAppProtectionType:     "iOS",
			androidAppProtectionType: "Android",
		}),
	}
}

func targetApps(ctx context.Context, client graph.Client, ep graph.Endpoint, id string, tpl template.Attributes) error {
	apps := tpl.Slice(targetAppsField)
	if len(apps) == 0 {
		return nil
	}
	body, err := template.Attributes{targetAppsField: apps}.Clone()
	if err != nil {
		return err
	}
	for _, raw := range body.Slice(targetAppsField) {
		if app, ok := raw.(map[string]any); ok {
			delete(app, "id")
			delete(app, "version")
		}
	}
	if _, err := client.Create(ctx, ep.Child(id, "targetApps"), body); err != nil {
		return fmt.Errorf("assign target apps: %w", err)
	}
	return nil
}
