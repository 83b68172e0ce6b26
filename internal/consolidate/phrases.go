// internal/consolidate/phrases.go
package consolidate

import (
	"fmt"
	"strings"

	"github.com/user/barka/internal/types"
)

// phrase is one status-line mapping for a function call.
type phrase struct {
	message string
	status  types.StatusType
}

// functionPhrases maps known tool names to the progress line shown while the
// agent works. Unmapped names fall back to genericPhrase.
var functionPhrases = map[string]phrase{
	"transfer_to_agent":      {"Routing to specialist...", types.StatusTransferring},
	"get_projects":           {"Gathering project data...", types.StatusGathering},
	"get_project":            {"Gathering project data...", types.StatusGathering},
	"get_tasks":              {"Gathering task data...", types.StatusGathering},
	"get_task":               {"Gathering task data...", types.StatusGathering},
	"get_team_members":       {"Gathering team information...", types.StatusGathering},
	"get_clients":            {"Gathering client records...", types.StatusGathering},
	"get_client":             {"Gathering client records...", types.StatusGathering},
	"get_documents":          {"Gathering documents...", types.StatusGathering},
	"search_documents":       {"Analyzing documents...", types.StatusAnalyzing},
	"analyze_requirements":   {"Analyzing requirements...", types.StatusAnalyzing},
	"check_availability":     {"Checking availability...", types.StatusAnalyzing},
	"create_project":         {"Setting up the project...", types.StatusProcessing},
	"create_task":            {"Creating tasks...", types.StatusProcessing},
	"update_project":         {"Updating the project...", types.StatusProcessing},
	"schedule_meeting":       {"Scheduling the meeting...", types.StatusProcessing},
	"generate_status_report": {"Preparing the report...", types.StatusProcessing},
}

var genericPhrase = phrase{"Processing request...", types.StatusProcessing}

// agentPhrases maps transfer targets to a user-facing hand-off line.
var agentPhrases = map[string]string{
	"project_manager_agent": "Consulting the project manager...",
	"discovery_agent":       "Starting discovery...",
	"documentation_agent":   "Pulling up documentation...",
	"client_agent":          "Reviewing client details...",
	"scheduling_agent":      "Checking the calendar...",
}

// adminAgentPhrases is the admin-oriented variant of agentPhrases; it names
// the agent instead of describing the task.
var adminAgentPhrases = map[string]string{
	"project_manager_agent": "Transferring to project_manager_agent...",
	"discovery_agent":       "Transferring to discovery_agent...",
	"documentation_agent":   "Transferring to documentation_agent...",
	"client_agent":          "Transferring to client_agent...",
	"scheduling_agent":      "Transferring to scheduling_agent...",
}

// functionPhrase returns the status line for a function call by name.
func functionPhrase(name string) phrase {
	if p, ok := functionPhrases[name]; ok {
		return p
	}
	return genericPhrase
}

// transferPhrase returns the status line for an agent hand-off, using the
// admin phrasing table when adminMode is set.
func transferPhrase(target string, adminMode bool) string {
	table := agentPhrases
	if adminMode {
		table = adminAgentPhrases
	}
	if msg, ok := table[target]; ok {
		return msg
	}
	return fmt.Sprintf("Connecting to %s...", humanizeAgentName(target))
}

// humanizeAgentName turns "project_manager_agent" into "project manager".
func humanizeAgentName(name string) string {
	name = strings.TrimSuffix(name, "_agent")
	return strings.ReplaceAll(name, "_", " ")
}
