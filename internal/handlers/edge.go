package handlers

import (
	"context"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/modbus"
	"github.com/gammahazard/edge-protocol-demo/internal/telemetry"
)

// Vote runs a 2oo3 vote over three sensor readings.
func Vote(_ context.Context, req *VoteRequest) (*VoteResponse, error) {
	result, err := telemetry.VoteReadings(req.Body.Readings)
	if err != nil {
		return nil, huma.Error400BadRequest(telemetry.ErrReadingCount.Error())
	}

	return &VoteResponse{Body: result}, nil
}

// ParseFrame decodes a Modbus RTU frame.
func ParseFrame(_ context.Context, req *ParseFrameRequest) (*ParseFrameResponse, error) {
	frame, err := modbus.ParseFrame(req.Body.Frame)
	if err != nil {
		return nil, huma.Error400BadRequest("parse error: " + err.Error())
	}

	resp := &ParseFrameResponse{}
	resp.Body.DeviceID = frame.DeviceID
	resp.Body.FunctionCode = frame.FunctionCode
	resp.Body.Function = string(frame.Function)
	resp.Body.CRC = fmt.Sprintf("0x%04X", frame.CRC)
	resp.Body.CRCValid = frame.CRCValid
	resp.Body.Data = make([]int, len(frame.Data))

	for i, b := range frame.Data {
		resp.Body.Data[i] = int(b)
	}

	return resp, nil
}
