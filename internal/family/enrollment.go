package family

import (
	"github.com/alexisbeaulieu97/hydrate/internal/graph"
	"github.com/alexisbeaulieu97/hydrate/internal/template"
)

// Enrollment covers Autopilot deployment profiles and the enrollment status page.
func Enrollment() *Family {
	autopilot := graph.Endpoint{Version: graph.Beta, Path: "deviceManagement/windowsAutopilotDeploymentProfiles"}
	configurations := graph.Endpoint{Version: graph.Beta, Path: "deviceManagement/deviceEnrollmentConfigurations"}

	return &Family{
		Name:        "enrollment",
		Category:    "EnrollmentProfiles",
		TemplateDir: "Enrollment",
		NameField:   DefaultNameField,
		TypeField:   "@odata.type",
		Endpoints: map[string]graph.Endpoint{
			"#microsoft.graph.azureADWindowsAutopilotDeploymentProfile":         autopilot,
			"#microsoft.graph.activeDirectoryWindowsAutopilotDeploymentProfile": autopilot,
			"#microsoft.graph.windows10EnrollmentCompletionPageConfiguration":   configurations,
		},
		ReadOnly: readOnly(
			"assignments",
			"assignedDevices",
			"priority",
			"managementServiceAppId",
		),
		ProvenanceField: "description",
		Platform: func(template.Attributes) string {
			return "Windows"
		},
	}
}
