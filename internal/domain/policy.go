package domain

// Action is an operation subject to the access policy.
type Action string

const (
	ActionView                Action = "view"
	ActionCreate              Action = "create"
	ActionUpdate              Action = "update"
	ActionDelete              Action = "delete"
	ActionToggleParticipation Action = "toggle_participation"
)
