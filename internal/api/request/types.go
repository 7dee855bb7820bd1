package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PushTokenRequest is the request body for registering a device token
type PushTokenRequest struct {
	Token string `json:"token"`
}

// Enigma action names accepted by the gameplay endpoint
const (
	ActionGetStatus    = "getStatus"
	ActionPurchaseHint = "purchaseHint"
	ActionValidateCode = "validateCode"
)

// EnigmaActionRequest is the request body for the gameplay endpoint.
// Phase and Enigma address the enigma the action applies to; Code is
// only read for validateCode.
type EnigmaActionRequest struct {
	Action string `json:"action"`
	Phase  int    `json:"phase"`
	Enigma string `json:"enigma"`
	Code   string `json:"code,omitempty"`
}

// CreateEventRequest is the request body for creating an event
type CreateEventRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// SetEventStatusRequest is the request body for changing an event's status
type SetEventStatusRequest struct {
	Status string `json:"status"`
}

// AddPhaseRequest is the request body for adding a phase to an event
type AddPhaseRequest struct {
	Order int `json:"order"`
}

// AddEnigmaRequest is the request body for adding an enigma to a phase
type AddEnigmaRequest struct {
	ID       string `json:"id,omitempty"`
	Code     string `json:"code"`
	HintType string `json:"hint_type,omitempty"`
	HintData string `json:"hint_data,omitempty"`
}
