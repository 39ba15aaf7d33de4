package types

import "fmt"

// CustomError is raised by middleware before a handler runs. Type is a dotted
// error class such as "auth.missing_token".
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
