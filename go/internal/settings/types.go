package settings

// UpsertSettingRequest writes one configuration entry. When Encrypted is
// set the value is sealed before it reaches storage.
type UpsertSettingRequest struct {
	Category    string `json:"category"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Encrypted   bool   `json:"encrypted"`
	Description string `json:"description,omitempty"`
}
