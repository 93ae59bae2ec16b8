package campaign

import "time"

// Brief is the input configuration a campaign is scored and synthesized
// against. Immutable for the duration of one generation call.
type Brief struct {
	Goal             string   `json:"goal"`
	Offer            string   `json:"offer"`
	Audiences        []string `json:"audiences"`
	Competitors      []string `json:"competitors"`
	Channels         []string `json:"channels"`
	BudgetBand       string   `json:"budget_band"`
	VoiceConstraints string   `json:"voice_constraints,omitempty"`
}

// Campaign ties a brief to a workspace.
type Campaign struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Brief       Brief     `json:"brief"`
	CreatedAt   time.Time `json:"created_at"`
}
