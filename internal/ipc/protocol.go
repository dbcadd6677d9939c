// Package ipc provides the local control channel of a running bridge:
// JSON messages over a per-user unix socket, length-prefix framed.
package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/waybridge/internal/display"
	"github.com/bnema/waybridge/internal/surface"
	"github.com/bnema/waybridge/internal/xwm"
)

// Message types carried on the control socket.
const (
	TypeStatus        = "status"
	TypeSurfaces      = "surfaces"
	TypeOutputs       = "outputs"
	TypeResetOverride = "reset-override"
	TypeError         = "error"
)

// Message is the envelope for every request and response.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StatusResponse summarizes a running bridge session.
type StatusResponse struct {
	Mode        string    `json:"mode"`
	Scale       float64   `json:"scale"`
	ScaleX      float64   `json:"scale_x"`
	ScaleY      float64   `json:"scale_y"`
	OutputScale float64   `json:"output_scale"`
	Surfaces    int       `json:"surfaces"`
	Windows     int       `json:"windows"`
	Outputs     int       `json:"outputs"`
	StartedAt   time.Time `json:"started_at"`
}

// SurfacesResponse lists per-surface scale state.
type SurfacesResponse struct {
	Surfaces []surface.Snapshot `json:"surfaces"`
	Windows  []xwm.Snapshot     `json:"windows,omitempty"`
}

// OutputsResponse lists host outputs with their guest-facing geometry.
type OutputsResponse struct {
	Outputs []display.Advertised `json:"outputs"`
}

// ResetOverrideRequest asks the session to drop one surface's override.
type ResetOverrideRequest struct {
	SurfaceID uint32 `json:"surface_id"`
}

// ResetOverrideResponse reports whether the surface existed.
type ResetOverrideResponse struct {
	Reset bool `json:"reset"`
}

// ErrorResponse carries a server-side failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newMessage(typ string, payload any) (Message, error) {
	msg := Message{Type: typ}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// NewStatusMessage creates a status query.
func NewStatusMessage() Message {
	return Message{Type: TypeStatus}
}

// NewSurfacesMessage creates a surface listing query.
func NewSurfacesMessage() Message {
	return Message{Type: TypeSurfaces}
}

// NewOutputsMessage creates an output listing query.
func NewOutputsMessage() Message {
	return Message{Type: TypeOutputs}
}

// NewResetOverrideMessage creates an override reset command.
func NewResetOverrideMessage(surfaceID uint32) (Message, error) {
	return newMessage(TypeResetOverride, ResetOverrideRequest{SurfaceID: surfaceID})
}

// NewErrorMessage creates an error response.
func NewErrorMessage(errMsg string) Message {
	msg, err := newMessage(TypeError, ErrorResponse{Error: errMsg})
	if err != nil {
		// An ErrorResponse always marshals; keep the envelope if not.
		return Message{Type: TypeError}
	}
	return msg
}

// NewStatusResponseMessage wraps a status response.
func NewStatusResponseMessage(resp *StatusResponse) (Message, error) {
	return newMessage(TypeStatus, resp)
}

// NewSurfacesResponseMessage wraps a surface listing.
func NewSurfacesResponseMessage(resp *SurfacesResponse) (Message, error) {
	return newMessage(TypeSurfaces, resp)
}

// NewOutputsResponseMessage wraps an output listing.
func NewOutputsResponseMessage(resp *OutputsResponse) (Message, error) {
	return newMessage(TypeOutputs, resp)
}

// NewResetOverrideResponseMessage wraps an override reset result.
func NewResetOverrideResponseMessage(resp *ResetOverrideResponse) (Message, error) {
	return newMessage(TypeResetOverride, resp)
}

func decodePayload(msg Message, wantType string, out any) error {
	if msg.Type == TypeError {
		var e ErrorResponse
		if err := json.Unmarshal(msg.Payload, &e); err == nil && e.Error != "" {
			return fmt.Errorf("server error: %s", e.Error)
		}
		return fmt.Errorf("server error")
	}
	if msg.Type != wantType {
		return fmt.Errorf("unexpected response type: %s", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", msg.Type, err)
	}
	return nil
}

// GetStatusResponse extracts a status payload.
func GetStatusResponse(msg Message) (*StatusResponse, error) {
	var resp StatusResponse
	if err := decodePayload(msg, TypeStatus, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSurfacesResponse extracts a surface listing payload.
func GetSurfacesResponse(msg Message) (*SurfacesResponse, error) {
	var resp SurfacesResponse
	if err := decodePayload(msg, TypeSurfaces, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOutputsResponse extracts an output listing payload.
func GetOutputsResponse(msg Message) (*OutputsResponse, error) {
	var resp OutputsResponse
	if err := decodePayload(msg, TypeOutputs, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetResetOverrideRequest extracts an override reset command.
func GetResetOverrideRequest(msg Message) (*ResetOverrideRequest, error) {
	var req ResetOverrideRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reset-override payload: %w", err)
	}
	return &req, nil
}

// GetResetOverrideResponse extracts an override reset result.
func GetResetOverrideResponse(msg Message) (*ResetOverrideResponse, error) {
	var resp ResetOverrideResponse
	if err := decodePayload(msg, TypeResetOverride, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
