package proxmox

import (
	"fmt"
	"strings"
)

// APIError is a non-2xx answer from the Proxmox API.
type APIError struct {
	Method string
	Path   string
	Status int
	Reason string // status line; Proxmox puts the error message here
	Body   string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" || msg == `{"data":null}` {
		msg = e.Reason
	}
	return fmt.Sprintf("proxmox API %s %s returned %d: %s", e.Method, e.Path, e.Status, msg)
}
