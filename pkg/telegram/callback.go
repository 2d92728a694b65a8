package telegram

import "strings"

// ParseCallbackData splits "<action>:<payload>" callback data.
// Data without a separator yields the whole string as action.
func ParseCallbackData(data string) (action, payload string) {
	action, payload, _ = strings.Cut(strings.TrimSpace(data), ":")
	return action, payload
}
