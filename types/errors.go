package types

import "fmt"

// FlowError provides structured error information for user-facing failures
type FlowError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewFlowError creates a new structured error
func NewFlowError(code string, message string, details map[string]interface{}) *FlowError {
	return &FlowError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
