package api

import "github.com/samcharles93/xclbin/pkg/axlf"

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type HeaderResponse struct {
	Object        string          `json:"object"`
	Length        uint64          `json:"length"`
	TimeStamp     uint64          `json:"timestamp"`
	Version       string          `json:"version"`
	Mode          axlf.Mode       `json:"mode"`
	ActionMask    axlf.ActionMask `json:"action_mask"`
	InterfaceUUID string          `json:"interface_uuid"`
	XclbinUUID    string          `json:"xclbin_uuid"`
	PlatformVBNV  string          `json:"platform_vbnv"`
	DebugBin      string          `json:"debug_bin,omitempty"`
	NumSections   uint32          `json:"num_sections"`
}

type SectionSummary struct {
	Index  int              `json:"index"`
	Kind   axlf.SectionKind `json:"kind"`
	Name   string           `json:"name,omitempty"`
	Offset uint64           `json:"offset"`
	Size   uint64           `json:"size"`
}

type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

type ValidateResponse struct {
	Object   string   `json:"object"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems"`
}

type VersionResponse struct {
	Object    string `json:"object"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}
